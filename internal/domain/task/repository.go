package task

import (
	"context"
)

// Repository persists and queries tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	// ListByClassAndDay returns tasks ordered by due date, earliest first.
	ListByClassAndDay(ctx context.Context, classID, dayID int64) ([]Task, error)
}

// ReferenceRepository serves the class and day lookup tables, ordered by id.
type ReferenceRepository interface {
	ListClasses(ctx context.Context) ([]ClassRef, error)
	ListDays(ctx context.Context) ([]DayRef, error)
}
