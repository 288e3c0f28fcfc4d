package dialog

import (
	"context"
	"fmt"
)

var (
	ErrSessionNotFound = fmt.Errorf("session not found")
	ErrSessionCorrupt  = fmt.Errorf("session data is unreadable")
)

// Store persists sessions keyed by sender.
type Store interface {
	// Load returns ErrSessionNotFound for a sender never seen before and
	// ErrSessionCorrupt when the stored document cannot be decoded.
	Load(ctx context.Context, senderID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
