package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Session *sessionSchema `toml:"session,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	ID            string `toml:"id"`
	LoginURL      string `toml:"login_url,omitempty"`
	SecretRef     string `toml:"secret_ref,omitempty"`
	Authenticated bool   `toml:"authenticated"`
	ExpiresAt     string `toml:"expires_at,omitempty"`
}
