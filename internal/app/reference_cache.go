package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"task_reminder_bot/internal/domain/task"
)

// ReferenceCache keeps classes and days in memory. It implements
// task.ReferenceRepository and loads lazily on first use.
type ReferenceCache struct {
	repo   task.ReferenceRepository
	logger *logrus.Entry

	mu      sync.RWMutex
	loaded  bool
	classes []task.ClassRef
	days    []task.DayRef
}

func NewReferenceCache(repo task.ReferenceRepository, logger *logrus.Entry) *ReferenceCache {
	return &ReferenceCache{repo: repo, logger: logger}
}

// Refresh reloads both tables. On failure the previous snapshot stays in place.
func (c *ReferenceCache) Refresh(ctx context.Context) error {
	classes, err := c.repo.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("refresh classes: %w", err)
	}
	days, err := c.repo.ListDays(ctx)
	if err != nil {
		return fmt.Errorf("refresh days: %w", err)
	}

	c.mu.Lock()
	c.classes, c.days, c.loaded = classes, days, true
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{"classes": len(classes), "days": len(days)}).Debug("Reference data refreshed")
	return nil
}

func (c *ReferenceCache) ListClasses(ctx context.Context) ([]task.ClassRef, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]task.ClassRef(nil), c.classes...), nil
}

func (c *ReferenceCache) ListDays(ctx context.Context) ([]task.DayRef, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]task.DayRef(nil), c.days...), nil
}

func (c *ReferenceCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}
