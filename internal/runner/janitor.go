package runner

import (
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor evicts projects past the maximum retention age on an hourly
// schedule. Failures on one project never prevent sweeping the rest.
type Janitor struct {
	registry *Registry
	maxAge   time.Duration
	cron     *cron.Cron
}

func NewJanitor(registry *Registry, maxAge time.Duration) *Janitor {
	return &Janitor{
		registry: registry,
		maxAge:   maxAge,
		cron:     cron.New(),
	}
}

func (j *Janitor) Start() {
	if _, err := j.cron.AddFunc("@hourly", j.Sweep); err != nil {
		slog.Error("failed to schedule janitor", "error", err)
		return
	}
	j.cron.Start()
	slog.Info("janitor started", "maxAge", j.maxAge)
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep removes every project older than the retention limit, stopping any
// that are still running.
func (j *Janitor) Sweep() {
	now := time.Now().UTC()
	for _, p := range j.registry.List() {
		if p.Age(now) <= j.maxAge {
			continue
		}
		slog.Info("evicting aged project", "project", p.ID, "age", p.Age(now))
		if err := j.registry.Delete(p.ID); err != nil && !errors.Is(err, ErrNotFound) {
			slog.Warn("failed to evict project", "project", p.ID, "error", err)
		}
	}
}
