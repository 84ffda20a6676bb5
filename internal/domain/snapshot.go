package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type ResourceKind string

const (
	ResourceNetWorth              ResourceKind = "net_worth"
	ResourceCreditReport          ResourceKind = "credit_report"
	ResourceRetirementFund        ResourceKind = "retirement_fund"
	ResourceFundTransactions      ResourceKind = "fund_transactions"
	ResourceBankTransactions      ResourceKind = "bank_transactions"
	ResourceBrokerageTransactions ResourceKind = "brokerage_transactions"
)

// CanaryResource is the primary fetch in a concurrent batch; an
// authorization failure on it means the whole session is no longer
// accepted server-side, not just that one resource.
const CanaryResource = ResourceNetWorth

// AllResources lists every resource kind fetched into a snapshot, canary
// first.
func AllResources() []ResourceKind {
	return []ResourceKind{
		ResourceNetWorth,
		ResourceCreditReport,
		ResourceRetirementFund,
		ResourceFundTransactions,
		ResourceBankTransactions,
		ResourceBrokerageTransactions,
	}
}

// ResourceState distinguishes a field that carries data, one that is
// legitimately empty and one that defaulted because its fetch failed.
type ResourceState string

const (
	ResourcePopulated ResourceState = "populated"
	ResourceEmpty     ResourceState = "empty"
	ResourceFailed    ResourceState = "failed"
)

type NetWorthSummary struct {
	Total      decimal.Decimal
	Categories map[string]decimal.Decimal
}

// CreditReport may be legitimately absent for a user with no credit
// history; snapshots carry it as a pointer for that reason.
type CreditReport struct {
	Score  int
	Bureau string
}

type RetirementFund struct {
	Balance       decimal.Decimal
	EmployeeShare decimal.Decimal
	EmployerShare decimal.Decimal
}

// Transaction is one flattened, source-tagged entry merged out of the
// per-account arrays the service returns.
type Transaction struct {
	Source      string
	Date        string
	Description string
	Type        string
	Amount      decimal.Decimal
}

// FinancialSnapshot aggregates the independently fetched resource kinds.
// It is always a complete, well-typed value: a failed fetch leaves its
// field at a safe empty default and marks it ResourceFailed in States so
// downstream consumers never mistake a failure for emptiness.
type FinancialSnapshot struct {
	NetWorth              NetWorthSummary
	CreditReport          *CreditReport
	RetirementFund        RetirementFund
	FundTransactions      []Transaction
	BankTransactions      []Transaction
	BrokerageTransactions []Transaction

	States      map[ResourceKind]ResourceState
	FetchErrors map[ResourceKind]string
	RawPayloads map[ResourceKind]json.RawMessage
	FetchedAt   time.Time
}

func (s FinancialSnapshot) StateOf(kind ResourceKind) ResourceState {
	if state, ok := s.States[kind]; ok {
		return state
	}
	return ResourceEmpty
}

// Partial reports whether at least one resource fetch failed.
func (s FinancialSnapshot) Partial() bool {
	for _, state := range s.States {
		if state == ResourceFailed {
			return true
		}
	}
	return false
}
