package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-ai/webforge/internal/limiter"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type fakeProvider struct {
	name      string
	available bool
	err       error

	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	gate     chan struct{} // when set, GenerateCode blocks until closed
}

func (p *fakeProvider) Name() string    { return p.name }
func (p *fakeProvider) Available() bool { return p.available }

func (p *fakeProvider) GenerateCode(ctx context.Context, req CodeGenerationRequest) (*GenerationResult, error) {
	p.mu.Lock()
	p.calls++
	p.inFlight++
	if p.inFlight > p.maxSeen {
		p.maxSeen = p.inFlight
	}
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	payload, outcome := parseGeneration(`{"files": {"src/App.tsx": "export default () => null"}, "description": "from ` + p.name + `", "features": ["x"]}`)
	return newResult(req.normalized(), payload, outcome), nil
}

func (p *fakeProvider) Chat(context.Context, string, string) (string, error) {
	return "reply from " + p.name, nil
}

func newTestAgent(store *mapStore, n int64, providers ...Provider) *Agent {
	return New(providers, store, limiter.New(n), time.Hour, time.Second)
}

func TestGenerateCodeCachesPerProvider(t *testing.T) {
	store := newMapStore()
	provider := &fakeProvider{name: "primary", available: true}
	a := newTestAgent(store, 10, provider)

	req := CodeGenerationRequest{Prompt: "a todo app", Framework: "vite"}

	first, err := a.GenerateCode(context.Background(), req)
	require.NoError(t, err)
	second, err := a.GenerateCode(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "cache hit must suppress the second vendor call")
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Description, second.Description)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Timestamp, second.Timestamp)
}

func TestGenerateCodeCacheIsolatedPerProvider(t *testing.T) {
	store := newMapStore()
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary"}

	req := CodeGenerationRequest{Prompt: "a todo app"}

	a := newTestAgent(store, 10, primary, secondary)
	_, err := a.GenerateCode(context.Background(), req)
	require.NoError(t, err)

	// Same request through the other provider must not be served the first
	// provider's cached result.
	primary.available = false
	secondary.available = true
	result, err := a.GenerateCode(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "from secondary", result.Description)
}

func TestGenerateCodeDistinctRequestsMiss(t *testing.T) {
	store := newMapStore()
	provider := &fakeProvider{name: "primary", available: true}
	a := newTestAgent(store, 10, provider)

	_, err := a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "a blog"})
	require.NoError(t, err)
	_, err = a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "a shop"})
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls)
}

func TestGenerateCodeSkipsUnavailableProvider(t *testing.T) {
	store := newMapStore()
	primary := &fakeProvider{name: "primary", available: false}
	secondary := &fakeProvider{name: "secondary", available: true}
	a := newTestAgent(store, 10, primary, secondary)

	result, err := a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "a todo app"})
	require.NoError(t, err)

	assert.Zero(t, primary.calls, "unavailable provider must never be invoked")
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "from secondary", result.Description)
}

func TestGenerateCodeFailsOverOnProviderError(t *testing.T) {
	store := newMapStore()
	primary := &fakeProvider{name: "primary", available: true, err: errors.New("quota exceeded")}
	secondary := &fakeProvider{name: "secondary", available: true}
	a := newTestAgent(store, 10, primary, secondary)

	result, err := a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "a todo app"})
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "from secondary", result.Description)
}

func TestGenerateCodeNoProviderAvailable(t *testing.T) {
	a := newTestAgent(newMapStore(), 10,
		&fakeProvider{name: "primary"},
		&fakeProvider{name: "secondary"},
	)

	_, err := a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "anything"})
	assert.ErrorIs(t, err, ErrNoProviderAvailable)
}

func TestGenerateCodeAllProvidersFail(t *testing.T) {
	vendorErr := errors.New("network down")
	a := newTestAgent(newMapStore(), 10,
		&fakeProvider{name: "primary", available: true, err: vendorErr},
		&fakeProvider{name: "secondary", available: true, err: vendorErr},
	)

	_, err := a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, vendorErr)
	assert.NotErrorIs(t, err, ErrNoProviderAvailable)
}

func TestGenerateCodeBoundsConcurrency(t *testing.T) {
	const slots = 2
	const callers = 6

	gate := make(chan struct{})
	provider := &fakeProvider{name: "primary", available: true, gate: gate}
	a := newTestAgent(newMapStore(), slots, provider)

	var wg sync.WaitGroup
	prompts := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(prompt string) {
			defer wg.Done()
			_, err := a.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: prompt})
			assert.NoError(t, err)
		}(prompts[i])
	}

	// Give the first wave time to reach the provider, then release everyone.
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.LessOrEqual(t, provider.maxSeen, slots, "at most N calls may be in the vendor phase at once")
	assert.Equal(t, callers, provider.calls, "every caller must eventually complete")
}

func TestGenerateCodeReleasesSlotOnCancel(t *testing.T) {
	gate := make(chan struct{})
	provider := &fakeProvider{name: "primary", available: true, gate: gate, err: errors.New("upstream aborted")}
	a := newTestAgent(newMapStore(), 1, provider)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.GenerateCode(ctx, CodeGenerationRequest{Prompt: "blocked"})
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
	close(gate)

	// Had the failed call leaked its slot, this Acquire would block until the
	// deadline instead of failing fast on the provider error.
	acquireCtx, acquireCancel := context.WithTimeout(context.Background(), time.Second)
	defer acquireCancel()
	_, err := a.GenerateCode(acquireCtx, CodeGenerationRequest{Prompt: "next"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestFingerprint(t *testing.T) {
	a, err := fingerprint(CodeGenerationRequest{Prompt: "a blog"}.normalized())
	require.NoError(t, err)
	b, err := fingerprint(CodeGenerationRequest{Prompt: "a blog"}.normalized())
	require.NoError(t, err)
	assert.Equal(t, a, b, "fingerprinting is deterministic")

	other, err := fingerprint(CodeGenerationRequest{Prompt: "a shop"}.normalized())
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	// Normalization folds the framework default into the fingerprint.
	explicit, err := fingerprint(CodeGenerationRequest{Prompt: "a blog", Framework: "nextjs"}.normalized())
	require.NoError(t, err)
	assert.Equal(t, a, explicit)
}

func TestChatFallsBackWithoutProviders(t *testing.T) {
	a := newTestAgent(newMapStore(), 10, &fakeProvider{name: "primary"})

	reply, err := a.Chat(context.Background(), "build me a blog", "")
	require.NoError(t, err)
	assert.Contains(t, reply, "build me a blog")
}

func TestChatUsesFirstAvailableProvider(t *testing.T) {
	a := newTestAgent(newMapStore(), 10,
		&fakeProvider{name: "primary"},
		&fakeProvider{name: "secondary", available: true},
	)

	reply, err := a.Chat(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "reply from secondary", reply)
}
