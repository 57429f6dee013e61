// Package agent orchestrates code generation across LLM providers: a
// concurrency gate, a per-provider Redis cache, provider preference order,
// and a formatting pass over every generated file.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/webforge-ai/webforge/internal/agent/enhance"
	"github.com/webforge-ai/webforge/internal/cache"
	"github.com/webforge-ai/webforge/internal/limiter"
)

const cacheKeyPrefix = "codegen"

// Agent tries providers in preference order, consulting the generation cache
// before each vendor call and caching enhanced results afterwards.
type Agent struct {
	providers []Provider
	cache     cache.Store
	limiter   *limiter.Limiter
	cacheTTL  time.Duration
	timeout   time.Duration
}

func New(providers []Provider, store cache.Store, lim *limiter.Limiter, cacheTTL, timeout time.Duration) *Agent {
	return &Agent{
		providers: providers,
		cache:     store,
		limiter:   lim,
		cacheTTL:  cacheTTL,
		timeout:   timeout,
	}
}

// GenerateCode produces a GenerationResult for the request, or
// ErrNoProviderAvailable when no provider is usable. A failure of one
// provider moves on to the next; the same provider is never retried for the
// same request.
func (a *Agent) GenerateCode(ctx context.Context, req CodeGenerationRequest) (*GenerationResult, error) {
	if err := a.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer a.limiter.Release()

	req = req.normalized()
	fp, err := fingerprint(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, p := range a.providers {
		if !p.Available() {
			continue
		}

		// Cache entries are namespaced per provider: the same request can
		// legitimately produce different output from different models.
		key := fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, p.Name(), fp)
		if cached, ok := a.lookup(ctx, key); ok {
			slog.Debug("generation cache hit", "provider", p.Name(), "key", key)
			return cached, nil
		}

		genCtx, cancel := context.WithTimeout(ctx, a.timeout)
		result, err := p.GenerateCode(genCtx, req)
		cancel()
		if err != nil {
			slog.Warn("provider failed, trying next", "provider", p.Name(), "error", err)
			lastErr = err
			continue
		}

		for filePath, content := range result.Files {
			result.Files[filePath] = enhance.Enhance(content, enhance.LanguageForPath(filePath))
		}
		a.store(ctx, key, result)
		return result, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all providers failed: %w", lastErr)
	}
	return nil, ErrNoProviderAvailable
}

// Chat answers a free-form message with the first usable provider, falling
// back to a fixed reply when none is configured.
func (a *Agent) Chat(ctx context.Context, message, contextHint string) (string, error) {
	for _, p := range a.providers {
		if !p.Available() {
			continue
		}
		chatCtx, cancel := context.WithTimeout(ctx, a.timeout)
		reply, err := p.Chat(chatCtx, message, contextHint)
		cancel()
		if err != nil {
			slog.Warn("chat provider failed, trying next", "provider", p.Name(), "error", err)
			continue
		}
		return reply, nil
	}
	return fmt.Sprintf("I can help you build %q. Configure an LLM provider to get generated code and suggestions.", message), nil
}

func (a *Agent) lookup(ctx context.Context, key string) (*GenerationResult, bool) {
	raw, ok := a.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result GenerationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Warn("dropping undecodable cache entry", "key", key, "error", err)
		_ = a.cache.Delete(ctx, key)
		return nil, false
	}
	return &result, true
}

func (a *Agent) store(ctx context.Context, key string, result *GenerationResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		slog.Warn("failed to encode generation result for caching", "error", err)
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.cacheTTL); err != nil {
		slog.Warn("failed to cache generation result", "key", key, "error", err)
	}
}

// fingerprint hashes the request's canonical JSON serialization.
func fingerprint(req CodeGenerationRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint request: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(raw), 32), nil
}

// newResult assembles the normalized result shape shared by all providers.
func newResult(req CodeGenerationRequest, payload generatedPayload, outcome ParseOutcome) *GenerationResult {
	return &GenerationResult{
		ID:             uuid.New().String(),
		Files:          payload.Files,
		Description:    payload.Description,
		Features:       payload.Features,
		Framework:      req.Framework,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		FallbackUsed:   outcome.FallbackUsed,
		FallbackReason: outcome.Reason,
	}
}
