package user

import (
	"context"
	"fmt"
)

var ErrUserNotFound = fmt.Errorf("user not found")

// Repository resolves registered users.
type Repository interface {
	// FindIDByPhone returns ErrUserNotFound when no user has this phone number.
	FindIDByPhone(ctx context.Context, phone string) (int64, error)
}
