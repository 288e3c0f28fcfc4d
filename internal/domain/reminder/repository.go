package reminder

import (
	"context"
	"fmt"
	"time"
)

var ErrReminderNotFound = fmt.Errorf("unsent reminder not found")

// Repository persists reminders.
type Repository interface {
	// CreateBatch inserts reminders, ignoring ones that already exist for the
	// same (phone, task, kind). It returns the number of new rows.
	CreateBatch(ctx context.Context, reminders []*Reminder) (int, error)
	// ListPending returns unsent reminders ordered by trigger time.
	ListPending(ctx context.Context) ([]Pending, error)
	// MarkSent flags an unsent reminder as delivered.
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
}
