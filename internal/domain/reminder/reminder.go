package reminder

import (
	"database/sql"
	"time"
)

// Kind tells how far ahead of the deadline a reminder fires.
type Kind string

const (
	KindFar  Kind = "far"  // three days before
	KindMid  Kind = "mid"  // one day before
	KindNear Kind = "near" // one hour before
)

// Reminder is one scheduled trigger for one recipient and task.
type Reminder struct {
	ID        int64        `db:"id"`
	Phone     string       `db:"phone"`
	TaskID    int64        `db:"task_id"`
	TriggerAt time.Time    `db:"trigger_at"`
	Kind      Kind         `db:"kind"`
	IsSent    bool         `db:"is_sent"`
	CreatedAt time.Time    `db:"created_at"`
	SentAt    sql.NullTime `db:"sent_at"`
}

// Pending is an unsent reminder joined with its task. Task columns are
// nullable because the task row may be gone.
type Pending struct {
	ID              int64          `db:"id"`
	Phone           string         `db:"phone"`
	TriggerAt       time.Time      `db:"trigger_at"`
	Kind            Kind           `db:"kind"`
	TaskID          sql.NullInt64  `db:"task_id"`
	TaskName        sql.NullString `db:"task_name"`
	TaskDescription sql.NullString `db:"task_description"`
	TaskKind        sql.NullString `db:"task_kind"`
	DueAt           sql.NullTime   `db:"due_at"`
}

// Complete reports whether the joined task carries everything needed to render a message.
func (p Pending) Complete() bool {
	return p.TaskID.Valid && p.TaskName.Valid && p.DueAt.Valid
}
