// Package memory persists conversation turns so an operator can pick a
// session back up after a restart. Two backends are provided: a single
// JSON file for local use and Postgres for shared deployments.
package memory

import (
	"context"
	"time"
)

// maxStoredTurns caps the turns kept per session; appends beyond the cap
// evict the oldest turns.
const maxStoredTurns = 15

// Turn is one persisted conversation message.
type Turn struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and recalls conversation turns per session.
//
// RecentTurns returns up to limit most recent turns, oldest first. A
// non-positive limit falls back to maxStoredTurns, the most any backend
// retains per session.
type Store interface {
	AppendTurn(ctx context.Context, turn Turn) error
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	Close() error
}
