package domain

import "time"

// SessionLifetime is fixed by the aggregation service and is not renewable
// by polling; a fresh login is required once it lapses.
const SessionLifetime = 30 * time.Minute

type SessionState string

const (
	SessionStateNone          SessionState = "none"
	SessionStateAwaitingLogin SessionState = "awaiting_login"
	SessionStateAuthenticated SessionState = "authenticated"
	SessionStateExpired       SessionState = "expired"
)

// Session is the authentication record for the aggregation service.
// Expiry is detected lazily: nothing watches ExpiresAt in the background,
// it is only checked when someone asks.
type Session struct {
	ID            string
	LoginURL      string
	SecretRef     string
	Authenticated bool
	ExpiresAt     time.Time
}

// Valid reports whether the session is usable at the given instant.
// ExpiresAt is meaningful only once Authenticated is set.
func (s Session) Valid(now time.Time) bool {
	return s.Authenticated && now.Before(s.ExpiresAt)
}

func (s Session) State(now time.Time) SessionState {
	switch {
	case s.ID == "":
		return SessionStateNone
	case !s.Authenticated:
		return SessionStateAwaitingLogin
	case now.Before(s.ExpiresAt):
		return SessionStateAuthenticated
	default:
		return SessionStateExpired
	}
}

// RemainingLifetime returns how long the session stays valid, or zero when
// it is not valid at all.
func (s Session) RemainingLifetime(now time.Time) time.Duration {
	if !s.Valid(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
