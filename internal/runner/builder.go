package runner

import "context"

// BuildResult is the outcome of one build invocation. It is transient and
// only survives folded into a Project record.
type BuildResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	URL     string `json:"url,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// Builder turns a project's file set into a serving endpoint. A failed build
// must not leave processes or reserved ports behind. Stop tears down
// whatever Build started for the given project id.
type Builder interface {
	Build(ctx context.Context, p *Project) BuildResult
	Stop(projectID string) error
}
