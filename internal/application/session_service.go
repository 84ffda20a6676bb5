package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/bnema/networth-cli/internal/ports"
	"github.com/google/uuid"
)

const (
	toolInitiateLogin    = "initiate_login"
	toolCheckLoginStatus = "check_login_status"

	statusLoginRequired        = "login_required"
	statusAlreadyAuthenticated = "already_authenticated"
)

// ToolCallerFactory builds a caller bound to one session id and, once the
// login completed, the bearer credential issued for it.
type ToolCallerFactory func(sessionID string, bearerToken string) (ports.ToolCaller, error)

// SessionService owns the authentication state machine: no session →
// awaiting login → authenticated, degrading to expired purely through the
// passage of time. Expiry is detected lazily on access; there is no
// background timer, so callers must not expect proactive notifications.
type SessionService struct {
	repo      ports.SessionRepository
	secrets   ports.SecretStore
	newCaller ToolCallerFactory
	clock     ports.Clock
}

func NewSessionService(repo ports.SessionRepository, secrets ports.SecretStore, newCaller ToolCallerFactory, clock ports.Clock) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionService{
		repo:      repo,
		secrets:   secrets,
		newCaller: newCaller,
		clock:     clock,
	}
}

type initiatePayload struct {
	Status   string `json:"status"`
	LoginURL string `json:"login_url"`
}

type loginStatusPayload struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token"`
	ExpiresIn     int64  `json:"expires_in"`
}

// Initiate always creates a fresh session in the awaiting-login state,
// replacing whatever was stored before. The returned LoginURL must be
// opened by a human in a browser; no authentication has happened yet.
func (s *SessionService) Initiate(ctx context.Context) (domain.Session, error) {
	sessionID := uuid.NewString()

	caller, err := s.newCaller(sessionID, "")
	if err != nil {
		return domain.Session{}, fmt.Errorf("build session caller: %w", err)
	}

	raw, err := caller.CallTool(ctx, toolInitiateLogin, nil)
	if err != nil {
		return domain.Session{}, fmt.Errorf("initiate login: %w", err)
	}

	var payload initiatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Session{}, fmt.Errorf("%w: decode initiate payload: %v", domain.ErrProtocol, err)
	}

	session := domain.Session{ID: sessionID}
	switch payload.Status {
	case statusAlreadyAuthenticated:
		session.Authenticated = true
		session.ExpiresAt = s.clock.Now().Add(domain.SessionLifetime)
	case statusLoginRequired:
		if payload.LoginURL == "" {
			return domain.Session{}, fmt.Errorf("%w: initiate payload missing login url", domain.ErrProtocol)
		}
		session.LoginURL = payload.LoginURL
	default:
		return domain.Session{}, fmt.Errorf("%w: initiate payload status %q", domain.ErrProtocol, payload.Status)
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// PollStatus asks the service whether the out-of-band login completed. On
// success the session transitions to authenticated with the fixed
// lifetime; polling again does not renew it.
func (s *SessionService) PollStatus(ctx context.Context) (domain.Session, error) {
	session, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	if session.Valid(s.clock.Now()) {
		return session, nil
	}

	caller, err := s.newCaller(session.ID, "")
	if err != nil {
		return domain.Session{}, fmt.Errorf("build session caller: %w", err)
	}

	raw, err := caller.CallTool(ctx, toolCheckLoginStatus, nil)
	if err != nil {
		return domain.Session{}, fmt.Errorf("check login status: %w", err)
	}

	var payload loginStatusPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Session{}, fmt.Errorf("%w: decode login status payload: %v", domain.ErrProtocol, err)
	}

	if !payload.Authenticated {
		return session, nil
	}

	session.Authenticated = true
	session.ExpiresAt = s.clock.Now().Add(sessionLifetime(payload.ExpiresIn))

	if payload.Token != "" {
		secretRef := "mcp/" + session.ID + "/token"
		if err := s.secrets.Put(ctx, secretRef, payload.Token); err != nil {
			return domain.Session{}, fmt.Errorf("store session credential: %w", err)
		}
		session.SecretRef = secretRef
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// EnsureAuthenticated returns the current session when it is valid right
// now. It fails with domain.ErrAuthRequired when no authenticated session
// was ever established and domain.ErrSessionExpired when one existed but
// its lifetime lapsed.
func (s *SessionService) EnsureAuthenticated(ctx context.Context) (domain.Session, error) {
	session, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return domain.Session{}, domain.ErrAuthRequired
		}
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	switch session.State(s.clock.Now()) {
	case domain.SessionStateAuthenticated:
		return session, nil
	case domain.SessionStateExpired:
		return domain.Session{}, domain.ErrSessionExpired
	default:
		return domain.Session{}, domain.ErrAuthRequired
	}
}

// Current returns the stored session without touching the network.
func (s *SessionService) Current(ctx context.Context) (domain.Session, error) {
	return s.repo.Load(ctx)
}

// Credential resolves the bearer token stored for an authenticated
// session; sessions without a stored credential yield an empty token.
func (s *SessionService) Credential(ctx context.Context, session domain.Session) (string, error) {
	if session.SecretRef == "" {
		return "", nil
	}

	token, err := s.secrets.Get(ctx, session.SecretRef)
	if err != nil {
		return "", fmt.Errorf("load session credential: %w", err)
	}

	return token, nil
}

// Logout discards session state unconditionally, including any stored
// credential.
func (s *SessionService) Logout(ctx context.Context) error {
	session, err := s.repo.Load(ctx)
	if err == nil && session.SecretRef != "" {
		if err := s.secrets.Delete(ctx, session.SecretRef); err != nil {
			return fmt.Errorf("delete session credential: %w", err)
		}
	}

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

func sessionLifetime(expiresInSeconds int64) time.Duration {
	lifetime := domain.SessionLifetime
	if expiresInSeconds > 0 {
		if reported := time.Duration(expiresInSeconds) * time.Second; reported < lifetime {
			lifetime = reported
		}
	}
	return lifetime
}
