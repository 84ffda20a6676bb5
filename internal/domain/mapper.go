package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type attributeValue struct {
	Attribute string        `json:"attribute_name"`
	Value     CurrencyValue `json:"value"`
}

type netWorthPayload struct {
	Total      CurrencyValue    `json:"total_value"`
	Attributes []attributeValue `json:"asset_values"`
}

// MapNetWorth converts the attribute/value pairs of a net worth payload
// into a category → amount map, summing where the same category recurs.
func MapNetWorth(raw json.RawMessage) (NetWorthSummary, error) {
	var payload netWorthPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return NetWorthSummary{}, fmt.Errorf("%w: decode net worth payload: %v", ErrProtocol, err)
	}

	categories := make(map[string]decimal.Decimal, len(payload.Attributes))
	for _, entry := range payload.Attributes {
		name := strings.TrimSpace(entry.Attribute)
		if name == "" {
			continue
		}
		categories[name] = categories[name].Add(entry.Value.Amount())
	}

	return NetWorthSummary{
		Total:      payload.Total.Amount(),
		Categories: categories,
	}, nil
}

type creditReportPayload struct {
	Score  string `json:"score"`
	Bureau string `json:"bureau"`
}

// MapCreditReport returns nil without error for an empty payload: a user
// with no credit history legitimately has no report.
func MapCreditReport(raw json.RawMessage) (*CreditReport, error) {
	var payload creditReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode credit report payload: %v", ErrProtocol, err)
	}

	if payload.Score == "" && payload.Bureau == "" {
		return nil, nil
	}

	// A malformed score normalizes to zero, same as malformed currency.
	score, _ := strconv.Atoi(strings.TrimSpace(payload.Score))

	return &CreditReport{Score: score, Bureau: payload.Bureau}, nil
}

type retirementFundPayload struct {
	Balance       CurrencyValue `json:"balance"`
	EmployeeShare CurrencyValue `json:"employee_share"`
	EmployerShare CurrencyValue `json:"employer_share"`
}

func MapRetirementFund(raw json.RawMessage) (RetirementFund, error) {
	var payload retirementFundPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return RetirementFund{}, fmt.Errorf("%w: decode retirement fund payload: %v", ErrProtocol, err)
	}

	return RetirementFund{
		Balance:       payload.Balance.Amount(),
		EmployeeShare: payload.EmployeeShare.Amount(),
		EmployerShare: payload.EmployerShare.Amount(),
	}, nil
}

type transactionEntry struct {
	Date        string        `json:"date"`
	Description string        `json:"description"`
	Type        string        `json:"type"`
	Amount      CurrencyValue `json:"amount"`
}

type transactionSource struct {
	Source  string             `json:"source"`
	Entries []transactionEntry `json:"transactions"`
}

type transactionsPayload struct {
	Sources []transactionSource `json:"sources"`
}

// MapTransactions merges the per-source nested arrays into one flat list,
// carrying the originating source identifier on each record. Input order
// is preserved: sources in payload order, entries in source order.
func MapTransactions(raw json.RawMessage) ([]Transaction, error) {
	var payload transactionsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode transactions payload: %v", ErrProtocol, err)
	}

	var merged []Transaction
	for _, source := range payload.Sources {
		for _, entry := range source.Entries {
			merged = append(merged, Transaction{
				Source:      source.Source,
				Date:        entry.Date,
				Description: entry.Description,
				Type:        entry.Type,
				Amount:      entry.Amount.Amount(),
			})
		}
	}

	return merged, nil
}
