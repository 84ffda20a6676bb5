package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/bnema/networth-cli/internal/ports"
	"golang.org/x/sync/errgroup"
)

const defaultCacheTTL = 15 * time.Minute

var resourceTools = map[domain.ResourceKind]string{
	domain.ResourceNetWorth:              "fetch_net_worth",
	domain.ResourceCreditReport:          "fetch_credit_report",
	domain.ResourceRetirementFund:        "fetch_epf_details",
	domain.ResourceFundTransactions:      "fetch_mf_transactions",
	domain.ResourceBankTransactions:      "fetch_bank_transactions",
	domain.ResourceBrokerageTransactions: "fetch_stock_transactions",
}

// SnapshotService fans out the independent resource fetches and aggregates
// them into one FinancialSnapshot. A failed fetch degrades its field to an
// empty default instead of failing the aggregate; the one exception is an
// authorization failure on the canary resource, which means the session as
// a whole is no longer accepted and is promoted to domain.ErrSessionExpired.
type SnapshotService struct {
	sessions  *SessionService
	newCaller ToolCallerFactory
	cache     ports.SnapshotCache
	cacheTTL  time.Duration
	clock     ports.Clock
}

func NewSnapshotService(sessions *SessionService, newCaller ToolCallerFactory, cache ports.SnapshotCache, cacheTTL time.Duration, clock ports.Clock) *SnapshotService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SnapshotService{
		sessions:  sessions,
		newCaller: newCaller,
		cache:     cache,
		cacheTTL:  cacheTTL,
		clock:     clock,
	}
}

type fetchOutcome struct {
	raw json.RawMessage
	err error
}

// FetchAll validates the session first and issues no network call when it
// is known invalid. All resource fetches are dispatched concurrently and
// every outcome is collected before aggregating.
func (s *SnapshotService) FetchAll(ctx context.Context) (domain.FinancialSnapshot, error) {
	session, err := s.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		return domain.FinancialSnapshot{}, err
	}

	cacheKey := snapshotCacheKey(session.ID)
	if s.cache != nil {
		if cached, ok, err := s.cache.Retrieve(ctx, cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	token, err := s.sessions.Credential(ctx, session)
	if err != nil {
		return domain.FinancialSnapshot{}, err
	}

	caller, err := s.newCaller(session.ID, token)
	if err != nil {
		return domain.FinancialSnapshot{}, fmt.Errorf("build snapshot caller: %w", err)
	}

	resources := domain.AllResources()
	outcomes := make([]fetchOutcome, len(resources))

	// Gather every branch's outcome instead of propagating the first
	// failure; the group error is always nil.
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range resources {
		group.Go(func() error {
			raw, err := caller.CallTool(groupCtx, resourceTools[kind], nil)
			outcomes[i] = fetchOutcome{raw: raw, err: err}
			return nil
		})
	}
	_ = group.Wait()

	if canary := outcomes[0]; canary.err != nil && errors.Is(canary.err, domain.ErrUnauthorized) {
		return domain.FinancialSnapshot{}, fmt.Errorf("%w: canary fetch rejected: %v", domain.ErrSessionExpired, canary.err)
	}

	snapshot := s.buildSnapshot(resources, outcomes)

	if s.cache != nil {
		if err := s.cache.Store(ctx, cacheKey, snapshot, s.cacheTTL); err != nil {
			log.Printf("warning: store snapshot in cache: %v", err)
		}
	}

	return snapshot, nil
}

func (s *SnapshotService) buildSnapshot(resources []domain.ResourceKind, outcomes []fetchOutcome) domain.FinancialSnapshot {
	snapshot := domain.FinancialSnapshot{
		States:      make(map[domain.ResourceKind]domain.ResourceState, len(resources)),
		FetchErrors: make(map[domain.ResourceKind]string),
		RawPayloads: make(map[domain.ResourceKind]json.RawMessage, len(resources)),
		FetchedAt:   s.clock.Now(),
	}

	for i, kind := range resources {
		outcome := outcomes[i]
		if outcome.err != nil {
			markFailed(&snapshot, kind, outcome.err)
			continue
		}

		if err := applyResource(&snapshot, kind, outcome.raw); err != nil {
			markFailed(&snapshot, kind, err)
			continue
		}

		snapshot.RawPayloads[kind] = outcome.raw
	}

	return snapshot
}

func markFailed(snapshot *domain.FinancialSnapshot, kind domain.ResourceKind, err error) {
	log.Printf("warning: fetch %s: %v", kind, err)
	snapshot.States[kind] = domain.ResourceFailed
	snapshot.FetchErrors[kind] = err.Error()
}

// applyResource maps one raw payload onto its snapshot field and records
// whether the field carries data or is legitimately empty.
func applyResource(snapshot *domain.FinancialSnapshot, kind domain.ResourceKind, raw json.RawMessage) error {
	switch kind {
	case domain.ResourceNetWorth:
		summary, err := domain.MapNetWorth(raw)
		if err != nil {
			return err
		}
		snapshot.NetWorth = summary
		snapshot.States[kind] = populatedWhen(len(summary.Categories) > 0 || !summary.Total.IsZero())

	case domain.ResourceCreditReport:
		report, err := domain.MapCreditReport(raw)
		if err != nil {
			return err
		}
		snapshot.CreditReport = report
		snapshot.States[kind] = populatedWhen(report != nil)

	case domain.ResourceRetirementFund:
		fund, err := domain.MapRetirementFund(raw)
		if err != nil {
			return err
		}
		snapshot.RetirementFund = fund
		snapshot.States[kind] = populatedWhen(!fund.Balance.IsZero() || !fund.EmployeeShare.IsZero() || !fund.EmployerShare.IsZero())

	case domain.ResourceFundTransactions:
		transactions, err := domain.MapTransactions(raw)
		if err != nil {
			return err
		}
		snapshot.FundTransactions = transactions
		snapshot.States[kind] = populatedWhen(len(transactions) > 0)

	case domain.ResourceBankTransactions:
		transactions, err := domain.MapTransactions(raw)
		if err != nil {
			return err
		}
		snapshot.BankTransactions = transactions
		snapshot.States[kind] = populatedWhen(len(transactions) > 0)

	case domain.ResourceBrokerageTransactions:
		transactions, err := domain.MapTransactions(raw)
		if err != nil {
			return err
		}
		snapshot.BrokerageTransactions = transactions
		snapshot.States[kind] = populatedWhen(len(transactions) > 0)

	default:
		return fmt.Errorf("%w: unknown resource kind %q", domain.ErrProtocol, kind)
	}

	return nil
}

func populatedWhen(hasData bool) domain.ResourceState {
	if hasData {
		return domain.ResourcePopulated
	}
	return domain.ResourceEmpty
}

func snapshotCacheKey(sessionID string) string {
	return "snapshot/" + sessionID
}
