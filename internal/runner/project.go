// Package runner tracks generated projects through their build/run
// lifecycle: an in-memory registry, a build seam, a websocket fan-out for
// live updates, and a janitor evicting aged projects.
package runner

import "time"

type Status string

const (
	StatusBuilding Status = "building"
	StatusRunning  Status = "running"
	StatusError    Status = "error"
	StatusStopped  Status = "stopped"
)

// Project is a generated application's file set plus its current build/run
// state. Records are owned by the Registry; everything handed out is a copy.
// Status is running if and only if URL and Port are both set.
type Project struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Files     map[string]string `json:"files"`
	Framework string            `json:"framework"`
	Status    Status            `json:"status"`
	URL       string            `json:"url,omitempty"`
	Port      int               `json:"port,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

func (p *Project) clone() *Project {
	cp := *p
	cp.Files = make(map[string]string, len(p.Files))
	for k, v := range p.Files {
		cp.Files[k] = v
	}
	return &cp
}

// Age reports how long ago the project was created.
func (p *Project) Age(now time.Time) time.Duration {
	created, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return 0
	}
	return now.Sub(created)
}
