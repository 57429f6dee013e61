package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for operations on unknown project ids.
	ErrNotFound = errors.New("project not found")
	// ErrCapacityExceeded is returned when the registry already holds the
	// configured maximum number of projects.
	ErrCapacityExceeded = errors.New("maximum number of projects reached")
)

// Publisher receives every project record the registry commits.
type Publisher interface {
	Publish(p *Project)
}

// Registry owns all project records and their status transitions. Mutations
// for the same project id are serialized through a per-id mutex; builds run
// synchronously inside the mutating call, so callers observe the final
// running/error status in the returned record.
type Registry struct {
	store        Store
	builder      Builder
	publisher    Publisher
	maxProjects  int
	buildTimeout time.Duration

	mu           sync.Mutex
	locks        map[string]*sync.Mutex
	activeBuilds atomic.Int32
}

func NewRegistry(store Store, builder Builder, publisher Publisher, maxProjects int, buildTimeout time.Duration) *Registry {
	return &Registry{
		store:        store,
		builder:      builder,
		publisher:    publisher,
		maxProjects:  maxProjects,
		buildTimeout: buildTimeout,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Create registers a new project and builds it before returning. Creation
// beyond the capacity cap is rejected, never silently evicted.
func (r *Registry) Create(ctx context.Context, name string, files map[string]string, framework string) (*Project, error) {
	now := timestamp()
	p := &Project{
		ID:        uuid.New().String(),
		Name:      name,
		Files:     copyFiles(files),
		Framework: framework,
		Status:    StatusBuilding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	if r.store.Len() >= r.maxProjects {
		r.mu.Unlock()
		return nil, ErrCapacityExceeded
	}
	r.store.Put(p)
	lock := r.lockForLocked(p.ID)
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	r.build(ctx, p)
	return p.clone(), nil
}

// UpdateFiles replaces a project's file set and rebuilds it. Concurrent
// updates for the same id are applied whole, one after the other.
func (r *Registry) UpdateFiles(ctx context.Context, id string, files map[string]string) (*Project, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	p.Files = copyFiles(files)
	p.Status = StatusBuilding
	p.URL = ""
	p.Port = 0
	p.UpdatedAt = nextStamp(p.UpdatedAt)
	r.store.Put(p)

	r.build(ctx, p)
	return p.clone(), nil
}

func (r *Registry) Get(id string) (*Project, error) {
	p, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Delete stops a running project and removes its record.
func (r *Registry) Delete(id string) error {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, ok := r.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	if p.Status == StatusRunning {
		if err := r.builder.Stop(id); err != nil {
			slog.Warn("failed to stop project on delete", "project", id, "error", err)
		}
	}
	r.store.Delete(id)

	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()
	return nil
}

// List returns a point-in-time snapshot of all projects.
func (r *Registry) List() []*Project {
	return r.store.List()
}

func (r *Registry) Count() int {
	return r.store.Len()
}

func (r *Registry) ActiveBuilds() int {
	return int(r.activeBuilds.Load())
}

// StopAll stops every running project; used on shutdown.
func (r *Registry) StopAll() {
	for _, p := range r.store.List() {
		if p.Status != StatusRunning {
			continue
		}
		if err := r.builder.Stop(p.ID); err != nil {
			slog.Warn("failed to stop project on shutdown", "project", p.ID, "error", err)
		}
	}
}

// build runs the builder under the configured timeout and folds the result
// into the record. Callers must hold the project's id lock.
func (r *Registry) build(ctx context.Context, p *Project) {
	r.activeBuilds.Add(1)
	defer r.activeBuilds.Add(-1)

	buildCtx, cancel := context.WithTimeout(ctx, r.buildTimeout)
	defer cancel()

	result := r.builder.Build(buildCtx, p)
	if result.Success {
		p.Status = StatusRunning
		p.URL = result.URL
		p.Port = result.Port
		p.Error = ""
	} else {
		p.Status = StatusError
		p.URL = ""
		p.Port = 0
		p.Error = result.Error
		if p.Error == "" {
			p.Error = "build failed"
		}
		slog.Warn("project build failed", "project", p.ID, "error", p.Error)
	}
	p.UpdatedAt = nextStamp(p.UpdatedAt)
	r.store.Put(p)
	r.publish(p)
}

func (r *Registry) publish(p *Project) {
	if r.publisher != nil {
		r.publisher.Publish(p.clone())
	}
}

func (r *Registry) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lockForLocked(id)
}

func (r *Registry) lockForLocked(id string) *sync.Mutex {
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

func copyFiles(files map[string]string) map[string]string {
	cp := make(map[string]string, len(files))
	for k, v := range files {
		cp[k] = v
	}
	return cp
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// nextStamp guarantees strictly increasing UpdatedAt values even when the
// clock has not advanced past the previous stamp.
func nextStamp(prev string) string {
	now := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339Nano, prev); err == nil && !now.After(t) {
		now = t.Add(time.Nanosecond)
	}
	return now.Format(time.RFC3339Nano)
}
