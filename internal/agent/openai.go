package agent

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates code through the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		apiKey: apiKey,
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

func (p *OpenAIProvider) GenerateCode(ctx context.Context, req CodeGenerationRequest) (*GenerationResult, error) {
	req = req.normalized()
	text, err := p.complete(ctx, buildSystemPrompt(req.Framework), buildUserPrompt(req))
	if err != nil {
		return nil, err
	}

	payload, outcome := parseGeneration(text)
	if outcome.FallbackUsed {
		slog.Warn("openai response fell back to canned result", "reason", outcome.Reason)
	}
	return newResult(req, payload, outcome), nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, message, contextHint string) (string, error) {
	system := "You are a helpful assistant for an AI application builder."
	if contextHint != "" {
		system += " Context: " + contextHint
	}
	return p.complete(ctx, system, message)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
