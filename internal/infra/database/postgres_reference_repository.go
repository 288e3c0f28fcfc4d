package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"task_reminder_bot/internal/domain/task"
)

type PostgresReferenceRepository struct {
	db *sqlx.DB
}

func NewPostgresReferenceRepository(db *sqlx.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{db: db}
}

func (r *PostgresReferenceRepository) ListClasses(ctx context.Context) ([]task.ClassRef, error) {
	classes := make([]task.ClassRef, 0)
	if err := r.db.SelectContext(ctx, &classes, `SELECT id, name FROM classes ORDER BY id`); err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	return classes, nil
}

func (r *PostgresReferenceRepository) ListDays(ctx context.Context) ([]task.DayRef, error) {
	days := make([]task.DayRef, 0)
	if err := r.db.SelectContext(ctx, &days, `SELECT id, name FROM days ORDER BY id`); err != nil {
		return nil, fmt.Errorf("error listing days: %w", err)
	}
	return days, nil
}
