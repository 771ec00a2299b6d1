package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/logger"
)

// Component owns the upload stager and, when enabled, the archive backend.
type Component struct {
	cfg     Config
	log     *logger.Logger
	archive Storage
	stager  *Stager
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a storage component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Stager returns the stager, or nil before Start.
func (c *Component) Stager() *Stager { return c.stager }

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start creates the staging directory and the archive backend, then
// prunes expired archive entries.
func (c *Component) Start(ctx context.Context) error {
	if c.cfg.Archive.Enabled {
		archive, err := New(c.cfg.Archive, c.log)
		if err != nil {
			return fmt.Errorf("storage start: %w", err)
		}
		c.archive = archive
		if c.cfg.Archive.Retention > 0 {
			c.prune(ctx)
		}
	}
	stager, err := NewStager(c.cfg, c.archive, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.stager = stager
	return nil
}

// Stop releases nothing; staged files are removed per request.
func (c *Component) Stop(_ context.Context) error { return nil }

// Health probes the archive with an Exists call when archiving is enabled.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.stager == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if c.archive != nil {
		if _, err := c.archive.Exists(ctx, c.cfg.Archive.Prefix+"/.health"); err != nil {
			return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: fmt.Sprintf("archive probe failed: %v", err)}
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("uploads=%s max=%dMB", c.cfg.UploadDir, c.cfg.MaxFileSize>>20)
	if c.cfg.Archive.Enabled {
		details += " archive=" + c.cfg.Archive.Provider
		if c.cfg.Archive.Bucket != "" {
			details += " bucket=" + c.cfg.Archive.Bucket
		}
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}

// prune logs instead of failing: an unreachable archive must not stop the
// service from serving.
func (c *Component) prune(ctx context.Context) {
	cutoff := time.Now().Add(-c.cfg.Archive.Retention)
	removed, err := Prune(ctx, c.archive, c.cfg.Archive.Prefix+"/", cutoff)
	fields := map[string]interface{}{
		"removed": removed,
		"cutoff":  cutoff.Format(time.RFC3339),
	}
	if err != nil {
		fields["error"] = err.Error()
		c.log.Warn("archive prune incomplete", fields)
		return
	}
	c.log.Info("archive pruned", fields)
}
