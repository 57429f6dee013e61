package agent

import (
	"fmt"
	"strings"
)

// buildSystemPrompt names the target framework, styling convention and the
// JSON shape the vendor must answer with.
func buildSystemPrompt(framework string) string {
	return fmt.Sprintf(`You are an expert full-stack developer specializing in modern web applications.

Rules:
- Use %s as the primary framework
- Write high quality TypeScript
- Use Tailwind CSS for styling
- Build modular, reusable components
- Include appropriate state management
- Produce a modern, responsive interface

Return the code as JSON with this structure:
{
  "files": {
    "package.json": "file content",
    "src/App.tsx": "file content"
  },
  "description": "description of the generated application",
  "features": ["feature1", "feature2"]
}`, framework)
}

func buildUserPrompt(req CodeGenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a complete web application based on this prompt: %q", req.Prompt)
	if len(req.Features) > 0 {
		fmt.Fprintf(&b, "\n\nRequired features: %s", strings.Join(req.Features, ", "))
	}
	if req.Template != "" {
		fmt.Fprintf(&b, "\n\nUse the template: %s", req.Template)
	}
	return b.String()
}
