package domain

import "errors"

var (
	// ErrAuthRequired means no session was ever established.
	ErrAuthRequired = errors.New("authentication required")
	// ErrSessionExpired means a session existed but its lifetime lapsed or
	// the aggregation service rejected it as unauthorized.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthorized is the transport-level authorization failure (401/403).
	ErrUnauthorized = errors.New("request not authorized")
	// ErrTransient covers timeouts and connection-level failures.
	ErrTransient = errors.New("transient network failure")
	// ErrProtocol covers malformed or unexpected response envelopes.
	ErrProtocol = errors.New("unexpected response envelope")
)
