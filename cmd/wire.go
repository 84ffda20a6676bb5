package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bnema/networth-cli/internal/adapters/cache"
	"github.com/bnema/networth-cli/internal/adapters/mcp"
	snapshotadapter "github.com/bnema/networth-cli/internal/adapters/render/snapshot"
	tomlrepo "github.com/bnema/networth-cli/internal/adapters/repo/toml"
	filestore "github.com/bnema/networth-cli/internal/adapters/secrets/file"
	"github.com/bnema/networth-cli/internal/application"
	"github.com/bnema/networth-cli/internal/domain"
	"github.com/bnema/networth-cli/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	sessions         *application.SessionService
	snapshots        *application.SnapshotService
	snapshotRenderer func(domain.FinancialSnapshot, snapshotadapter.RenderOptions) (string, error)
	loginTimeout     time.Duration
	pollInterval     time.Duration
	staleAfter       time.Duration
	now              func() time.Time
}

func wireApp() (*app, error) {
	repo, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	secretStore, err := filestore.NewDefaultStore()
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	endpoint := envOrDefault("NW_MCP_ENDPOINT", "https://mcp.fi.money:8080/mcp/stream")
	httpClient := http.DefaultClient
	callerFactory := func(sessionID string, bearerToken string) (ports.ToolCaller, error) {
		options := []mcp.ClientOption{mcp.WithHTTPClient(httpClient)}
		if bearerToken != "" {
			options = append(options, mcp.WithBearerToken(bearerToken))
		}
		return mcp.NewClient(endpoint, sessionID, options...)
	}

	clock := ports.SystemClock{}
	sessions := application.NewSessionService(repo, secretStore, callerFactory, clock)
	snapshots := application.NewSnapshotService(sessions, callerFactory, cache.NewMemory(clock), 0, clock)

	return &app{
		sessions:         sessions,
		snapshots:        snapshots,
		snapshotRenderer: snapshotadapter.Render,
		loginTimeout:     5 * time.Minute,
		pollInterval:     2 * time.Second,
		staleAfter:       time.Hour,
		now:              time.Now,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
