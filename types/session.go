package types

import (
	"errors"
	"fmt"
	"time"
)

// SessionMeta identifies one logical build session.
// One execute strategy serves exactly one session; log entries and persisted
// fixture records carry these fields.
type SessionMeta struct {
	// SessionID is the session identifier. Must be non-empty.
	SessionID string
	// Seed is the random seed in use. Nil when the session is unseeded.
	Seed *uint64
	// StartedAt is when the session began.
	StartedAt time.Time
}

// Validate validates the session metadata.
func (s *SessionMeta) Validate() error {
	if s.SessionID == "" {
		return errors.New("session_id must be non-empty")
	}
	if s.StartedAt.IsZero() {
		return fmt.Errorf("session %q: started_at must be set", s.SessionID)
	}
	return nil
}

// Day returns the partition day of the session start.
// Format: YYYY-MM-DD in UTC.
func (s *SessionMeta) Day() string {
	return s.StartedAt.UTC().Format("2006-01-02")
}
