package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"task_reminder_bot/internal/domain/user"
)

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindIDByPhone(ctx context.Context, phone string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM users WHERE phone_number = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, user.ErrUserNotFound
		}
		return 0, fmt.Errorf("error getting user by phone: %w", err)
	}
	return id, nil
}
