package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute

	connectRetryDelay = 5 * time.Second
)

// NewPostgresConnection opens a pooled connection and pings it.
func NewPostgresConnection(ctx context.Context, dataSourceName string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConnectWithRetry keeps trying to connect until it succeeds or ctx ends.
func ConnectWithRetry(ctx context.Context, dataSourceName string, log *logrus.Entry) (*sqlx.DB, error) {
	for attempt := 1; ; attempt++ {
		db, err := NewPostgresConnection(ctx, dataSourceName)
		if err == nil {
			return db, nil
		}
		log.WithError(err).WithField("attempt", attempt).Warn("Database not reachable, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}
}
