package agent

import (
	"context"
	"errors"
)

// CodeGenerationRequest describes one application to synthesize. Its JSON
// serialization is canonical and is hashed into the cache fingerprint.
type CodeGenerationRequest struct {
	Prompt    string   `json:"prompt" binding:"required"`
	Framework string   `json:"framework" binding:"omitempty,oneof=nextjs vite svelte astro"`
	Template  string   `json:"template,omitempty"`
	Features  []string `json:"features,omitempty"`
	UserID    string   `json:"userId,omitempty"`
}

// GenerationResult is the normalized output shape shared by all providers.
// FallbackUsed/FallbackReason record whether the canned result was
// substituted for unparseable vendor output; they are not part of the wire
// format.
type GenerationResult struct {
	ID          string            `json:"id"`
	Files       map[string]string `json:"files"`
	Description string            `json:"description"`
	Features    []string          `json:"features"`
	Framework   string            `json:"framework"`
	Timestamp   string            `json:"timestamp"`

	FallbackUsed   bool   `json:"-"`
	FallbackReason string `json:"-"`
}

// Provider wraps one LLM vendor's code-generation API behind a uniform
// interface. Available is a pure credential check and performs no I/O.
type Provider interface {
	Name() string
	Available() bool
	GenerateCode(ctx context.Context, req CodeGenerationRequest) (*GenerationResult, error)
	Chat(ctx context.Context, message, contextHint string) (string, error)
}

// ErrNoProviderAvailable is returned when no configured provider reports
// itself usable for a request.
var ErrNoProviderAvailable = errors.New("no available code generation provider")

const defaultFramework = "nextjs"

// normalized returns the request with defaults applied so that equivalent
// requests share a fingerprint.
func (r CodeGenerationRequest) normalized() CodeGenerationRequest {
	if r.Framework == "" {
		r.Framework = defaultFramework
	}
	return r
}
