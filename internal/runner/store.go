package runner

import "sync"

// Store is the backing contract for project records. The default is an
// in-memory map; a key-value or relational backing can be substituted
// without changing the Registry.
type Store interface {
	Get(id string) (*Project, bool)
	Put(p *Project)
	Delete(id string)
	List() []*Project
	Len() int
}

type memoryStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewMemoryStore returns the default in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{projects: make(map[string]*Project)}
}

func (s *memoryStore) Get(id string) (*Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

func (s *memoryStore) Put(p *Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p.clone()
}

func (s *memoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
}

func (s *memoryStore) List() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.clone())
	}
	return out
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}
