package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"task_reminder_bot/internal/domain/reminder"
)

type PostgresReminderRepository struct {
	db *sqlx.DB
}

func NewPostgresReminderRepository(db *sqlx.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

// CreateBatch inserts all reminders in one transaction.
func (r *PostgresReminderRepository) CreateBatch(ctx context.Context, reminders []*reminder.Reminder) (int, error) {
	if len(reminders) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for reminders: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO notifications (phone, task_id, trigger_at, kind)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (phone, task_id, kind) DO NOTHING
               RETURNING id, created_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare reminder insert: %w", err)
	}
	defer stmt.Close()

	created := 0
	for _, rem := range reminders {
		rows, err := stmt.QueryContext(ctx, rem.Phone, rem.TaskID, rem.TriggerAt, rem.Kind)
		if err != nil {
			return 0, fmt.Errorf("error inserting reminder for task %d kind %s: %w", rem.TaskID, rem.Kind, err)
		}
		if rows.Next() {
			if err := rows.Scan(&rem.ID, &rem.CreatedAt); err != nil {
				rows.Close()
				return 0, fmt.Errorf("error scanning inserted reminder: %w", err)
			}
			created++
		}
		if err := rows.Close(); err != nil {
			return 0, fmt.Errorf("error closing reminder insert rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reminders: %w", err)
	}
	return created, nil
}

func (r *PostgresReminderRepository) ListPending(ctx context.Context) ([]reminder.Pending, error) {
	query := `SELECT n.id, n.phone, n.trigger_at, n.kind,
                      t.id AS task_id, t.name AS task_name, t.description AS task_description,
                      t.kind AS task_kind, t.due_at
               FROM notifications n
               LEFT JOIN tasks t ON t.id = n.task_id
               WHERE n.is_sent = FALSE
               ORDER BY n.trigger_at, n.id`

	pending := make([]reminder.Pending, 0)
	if err := r.db.SelectContext(ctx, &pending, query); err != nil {
		return nil, fmt.Errorf("error listing pending reminders: %w", err)
	}
	return pending, nil
}

func (r *PostgresReminderRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_sent = TRUE, sent_at = $2 WHERE id = $1 AND is_sent = FALSE`,
		id, sentAt)
	if err != nil {
		return fmt.Errorf("error marking reminder %d sent: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for reminder %d: %w", id, err)
	}
	if n == 0 {
		return reminder.ErrReminderNotFound
	}
	return nil
}
