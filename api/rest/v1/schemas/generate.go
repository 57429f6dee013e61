package schemas

// GenerateRequest is the body for POST /generate.
type GenerateRequest struct {
	Prompt    string   `json:"prompt" binding:"required"`
	Framework string   `json:"framework" binding:"omitempty,oneof=nextjs vite svelte astro"`
	Template  string   `json:"template"`
	Features  []string `json:"features"`
}

// GeneratedProject is the client-facing slice of a generation result.
type GeneratedProject struct {
	Files       map[string]string `json:"files"`
	Description string            `json:"description"`
	Features    []string          `json:"features"`
}

type GenerateResponse struct {
	Success   bool             `json:"success"`
	Project   GeneratedProject `json:"project"`
	Timestamp string           `json:"timestamp"`
}

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Context string `json:"context"`
}

type ChatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}
