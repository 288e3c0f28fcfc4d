package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"task_reminder_bot/internal/domain/messaging"
	"task_reminder_bot/internal/domain/reminder"
)

// DeliveryLedger records reminders that reached the chat channel.
type DeliveryLedger interface {
	WasDelivered(ctx context.Context, reminderID int64) (bool, error)
	RecordDelivered(ctx context.Context, reminderID int64, recipient string, at time.Time) error
}

// CycleStats summarises one dispatch pass.
type CycleStats struct {
	Fetched int
	Sent    int
	Marked  int
	NotDue  int
	Skipped int
	Failed  int
	Stopped bool
}

// ReminderDispatcher polls unsent reminders and delivers the ones that are due.
type ReminderDispatcher struct {
	reminders    reminder.Repository
	sender       messaging.Sender
	ledger       DeliveryLedger
	loc          *time.Location
	logger       *logrus.Entry
	interval     time.Duration
	backoff      time.Duration
	cycleTimeout time.Duration
	now          func() time.Time

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReminderDispatcher validates timings. ledger may be nil.
func NewReminderDispatcher(
	reminders reminder.Repository,
	sender messaging.Sender,
	ledger DeliveryLedger,
	loc *time.Location,
	logger *logrus.Entry,
	interval, backoff, cycleTimeout time.Duration,
) (*ReminderDispatcher, error) {
	if interval <= 0 || backoff <= 0 || cycleTimeout <= 0 {
		return nil, errors.New("interval, backoff and cycle timeout must be > 0")
	}
	if reminders == nil || sender == nil {
		return nil, errors.New("reminder repository and sender are required")
	}
	return &ReminderDispatcher{
		reminders:    reminders,
		sender:       sender,
		ledger:       ledger,
		loc:          loc,
		logger:       logger,
		interval:     interval,
		backoff:      backoff,
		cycleTimeout: cycleTimeout,
		now:          time.Now,
		done:         make(chan struct{}),
	}, nil
}

// Start runs the loop in the background. It returns false if already running.
func (d *ReminderDispatcher) Start(parent context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)

	go func() {
		defer close(d.done)
		d.Run(ctx)
	}()
	return true
}

// Stop interrupts the loop and waits for the in-flight reminder to finish.
func (d *ReminderDispatcher) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return false
	}

	d.cancel()
	<-d.done
	d.running.Store(false)

	d.logger.Info("Reminder dispatcher stopped")
	return true
}

func (d *ReminderDispatcher) IsRunning() bool {
	return d.running.Load()
}

// Run loops until ctx is cancelled. A failed fetch waits backoff instead of interval.
func (d *ReminderDispatcher) Run(ctx context.Context) {
	d.logger.WithFields(logrus.Fields{
		"interval": d.interval.String(),
		"backoff":  d.backoff.String(),
	}).Info("Reminder dispatcher started")

	for {
		wait := d.interval
		if _, err := d.safeCycle(ctx); err != nil {
			wait = d.backoff
		}

		select {
		case <-ctx.Done():
			d.logger.Info("Reminder dispatcher stopping")
			return
		case <-time.After(wait):
		}
	}
}

func (d *ReminderDispatcher) safeCycle(ctx context.Context) (stats CycleStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithField("panic", r).Error("Reminder cycle panic recovered")
			err = fmt.Errorf("reminder cycle panic: %v", r)
		}
	}()
	return d.RunCycle(ctx)
}

// RunCycle performs one pass. It returns an error only when fetching fails;
// per-reminder failures are logged and counted. Cancelling ctx stops the pass
// between reminders; the reminder in progress always completes.
func (d *ReminderDispatcher) RunCycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats
	logCtx := d.logger.WithField("cycle_id", uuid.New().String())
	start := d.now()

	// Detached so a shutdown does not abort a send halfway through.
	work, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cycleTimeout)
	defer cancel()

	pending, err := d.reminders.ListPending(work)
	if err != nil {
		logCtx.WithError(err).Error("Failed to fetch pending reminders")
		return stats, fmt.Errorf("fetch pending reminders: %w", err)
	}
	stats.Fetched = len(pending)

	for _, p := range pending {
		if ctx.Err() != nil {
			stats.Stopped = true
			break
		}
		d.processOne(work, logCtx.WithField("reminder_id", p.ID), p, &stats)
	}

	logCtx.WithFields(logrus.Fields{
		"fetched":     stats.Fetched,
		"sent":        stats.Sent,
		"not_due":     stats.NotDue,
		"skipped":     stats.Skipped,
		"failed":      stats.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Reminder cycle completed")
	return stats, nil
}

func (d *ReminderDispatcher) processOne(ctx context.Context, logCtx *logrus.Entry, p reminder.Pending, stats *CycleStats) {
	if !p.Complete() {
		logCtx.WithField("task_id", p.TaskID.Int64).Warn("Skipping reminder with incomplete task data")
		stats.Skipped++
		return
	}
	if strings.TrimSpace(p.Phone) == "" {
		logCtx.Warn("Skipping reminder without recipient")
		stats.Skipped++
		return
	}

	now := d.now()
	if now.Before(p.TriggerAt) {
		stats.NotDue++
		return
	}

	if d.alreadyDelivered(ctx, logCtx, p.ID) {
		logCtx.Info("Reminder already delivered, retrying mark-sent only")
		if d.markSent(ctx, logCtx, p.ID, now) {
			stats.Marked++
		} else {
			stats.Failed++
		}
		return
	}

	if err := d.sender.Send(ctx, p.Phone, renderReminder(p, d.loc)); err != nil {
		logCtx.WithError(err).WithField("recipient", p.Phone).Error("Failed to send reminder")
		stats.Failed++
		return
	}
	stats.Sent++

	if d.ledger != nil {
		if err := d.ledger.RecordDelivered(ctx, p.ID, p.Phone, now); err != nil {
			logCtx.WithError(err).Warn("Failed to record delivery in ledger")
		}
	}

	if d.markSent(ctx, logCtx, p.ID, now) {
		stats.Marked++
		logCtx.WithFields(logrus.Fields{"kind": p.Kind, "task_id": p.TaskID.Int64}).Info("Reminder sent")
	} else {
		stats.Failed++
	}
}

func (d *ReminderDispatcher) alreadyDelivered(ctx context.Context, logCtx *logrus.Entry, id int64) bool {
	if d.ledger == nil {
		return false
	}
	delivered, err := d.ledger.WasDelivered(ctx, id)
	if err != nil {
		logCtx.WithError(err).Warn("Delivery ledger unavailable, sending anyway")
		return false
	}
	return delivered
}

func (d *ReminderDispatcher) markSent(ctx context.Context, logCtx *logrus.Entry, id int64, at time.Time) bool {
	err := d.reminders.MarkSent(ctx, id, at)
	if errors.Is(err, reminder.ErrReminderNotFound) {
		logCtx.Warn("Reminder was already marked sent")
		return true
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to mark reminder sent")
		return false
	}
	return true
}
