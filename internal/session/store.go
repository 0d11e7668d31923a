// Package session holds the ephemeral per-user state of the account
// onboarding wizard. Sessions are keyed by chat id and expire after five
// minutes of inactivity. The store is injected into the wizard so the
// in-memory map can be swapped for Redis when state must survive restarts.
package session

import (
	"context"
	"time"

	"cfdnsbot/internal/model"
)

type State int

const (
	AwaitingEmail State = iota
	AwaitingAPIKey
	AwaitingAccountID
	AwaitingZoneSelection
)

// TTL is the idle timeout after which an in-flight wizard is abandoned.
const TTL = 5 * time.Minute

type Session struct {
	State     State        `json:"state"`
	Email     string       `json:"email"`
	APIKey    string       `json:"api_key"`
	AccountID string       `json:"account_id"`
	Zones     []model.Zone `json:"zones,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Store is a keyed session store with last-writer-wins semantics: a second
// Put for the same user silently replaces the first session.
type Store interface {
	// Get returns the session for userID, or false if none exists or the
	// existing one has idled out.
	Get(ctx context.Context, userID int64) (*Session, bool, error)
	// Put stores the session and refreshes its idle deadline.
	Put(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
}
