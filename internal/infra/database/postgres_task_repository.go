package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"task_reminder_bot/internal/domain/task"
)

type PostgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTaskRepository(db *sqlx.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `INSERT INTO tasks (class_id, day_id, name, description, kind, due_at, created_by)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ClassID, t.DayID, t.Name, t.Description, t.Kind, t.DueAt, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) ListByClassAndDay(ctx context.Context, classID, dayID int64) ([]task.Task, error) {
	query := `SELECT id, class_id, day_id, name, description, kind, due_at, created_by, created_at
               FROM tasks
               WHERE class_id = $1 AND day_id = $2
               ORDER BY due_at, id`

	tasks := make([]task.Task, 0)
	if err := r.db.SelectContext(ctx, &tasks, query, classID, dayID); err != nil {
		return nil, fmt.Errorf("error listing tasks for class %d day %d: %w", classID, dayID, err)
	}
	return tasks, nil
}
