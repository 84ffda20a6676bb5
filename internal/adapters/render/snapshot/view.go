package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const defaultMaxTransactions = 10

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
	// MaxTransactions caps how many rows each transaction section shows.
	MaxTransactions int
}

func renderView(snap domain.FinancialSnapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Financial Snapshot"),
		s.header.Render(headerLine(snap, opts)),
	}

	for _, kind := range domain.AllResources() {
		lines = append(lines, s.section.Render(renderResource(snap, kind, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(snap domain.FinancialSnapshot, opts RenderOptions) string {
	failed := 0
	for _, kind := range domain.AllResources() {
		if snap.StateOf(kind) == domain.ResourceFailed {
			failed++
		}
	}

	header := "fetched: " + formatFetchedAt(snap.FetchedAt, opts.Now)
	if failed > 0 {
		header += fmt.Sprintf("    %d of %d resources unavailable", failed, len(domain.AllResources()))
	}
	if isStale(snap.FetchedAt, opts) {
		header += "    [stale]"
	}

	return header
}

func renderResource(snap domain.FinancialSnapshot, kind domain.ResourceKind, opts RenderOptions, s styles) string {
	label := resourceLabel(kind)

	switch snap.StateOf(kind) {
	case domain.ResourceFailed:
		reason := snap.FetchErrors[kind]
		if reason == "" {
			reason = "fetch failed"
		}
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.resource.Render(label+":"),
			" ",
			s.warning.Render("unavailable"),
			" ",
			s.meta.Render("("+reason+")"),
		)
	case domain.ResourceEmpty:
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.resource.Render(label+":"),
			" ",
			s.empty.Render("no data"),
		)
	}

	switch kind {
	case domain.ResourceNetWorth:
		return renderNetWorth(snap.NetWorth, s)
	case domain.ResourceCreditReport:
		return renderCreditReport(snap.CreditReport, s)
	case domain.ResourceRetirementFund:
		return renderRetirementFund(snap.RetirementFund, s)
	case domain.ResourceFundTransactions:
		return renderTransactions(label, snap.FundTransactions, opts, s)
	case domain.ResourceBankTransactions:
		return renderTransactions(label, snap.BankTransactions, opts, s)
	case domain.ResourceBrokerageTransactions:
		return renderTransactions(label, snap.BrokerageTransactions, opts, s)
	default:
		return s.resource.Render(label)
	}
}

func renderNetWorth(summary domain.NetWorthSummary, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.resource.Render("Net Worth:"),
			" ",
			s.amount.Render(domain.FormatINR(summary.Total)),
		),
	}

	for _, name := range sortedCategories(summary.Categories) {
		parts = append(parts, lipgloss.JoinHorizontal(
			lipgloss.Top,
			"  ",
			s.category.Render(categoryLabel(name)),
			"  ",
			s.detail.Render(domain.FormatINR(summary.Categories[name])),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCreditReport(report *domain.CreditReport, s styles) string {
	if report == nil {
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.resource.Render("Credit Score:"),
			" ",
			s.empty.Render("no data"),
		)
	}

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.resource.Render("Credit Score:"),
		" ",
		s.amount.Render(fmt.Sprintf("%d", report.Score)),
	)
	if report.Bureau != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", s.meta.Render("("+report.Bureau+")"))
	}

	return line
}

func renderRetirementFund(fund domain.RetirementFund, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.resource.Render("Retirement Fund:"),
			" ",
			s.amount.Render(domain.FormatINR(fund.Balance)),
		),
	}

	if !fund.EmployeeShare.IsZero() || !fund.EmployerShare.IsZero() {
		parts = append(parts, lipgloss.JoinHorizontal(
			lipgloss.Top,
			"  ",
			s.meta.Render(fmt.Sprintf(
				"employee %s / employer %s",
				domain.FormatINR(fund.EmployeeShare),
				domain.FormatINR(fund.EmployerShare),
			)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderTransactions(label string, txns []domain.Transaction, opts RenderOptions, s styles) string {
	parts := []string{
		s.resource.Render(fmt.Sprintf("%s (%d):", label, len(txns))),
	}

	limit := opts.MaxTransactions
	if limit <= 0 {
		limit = defaultMaxTransactions
	}

	shown := txns
	if len(shown) > limit {
		shown = shown[:limit]
	}

	for _, txn := range shown {
		parts = append(parts, lipgloss.JoinHorizontal(
			lipgloss.Top,
			"  ",
			s.meta.Render(txn.Date),
			"  ",
			s.category.Render(fmt.Sprintf("%-8s", txn.Type)),
			" ",
			s.detail.Render(domain.FormatINR(txn.Amount)),
			"  ",
			s.detail.Render(txn.Description),
		))
	}

	if hidden := len(txns) - len(shown); hidden > 0 {
		parts = append(parts, s.empty.Render(fmt.Sprintf("  ... and %d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func resourceLabel(kind domain.ResourceKind) string {
	switch kind {
	case domain.ResourceNetWorth:
		return "Net Worth"
	case domain.ResourceCreditReport:
		return "Credit Score"
	case domain.ResourceRetirementFund:
		return "Retirement Fund"
	case domain.ResourceFundTransactions:
		return "Mutual Fund Transactions"
	case domain.ResourceBankTransactions:
		return "Bank Transactions"
	case domain.ResourceBrokerageTransactions:
		return "Brokerage Transactions"
	default:
		return string(kind)
	}
}

func categoryLabel(name string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(name), "_", " ")
	return strings.ToLower(cleaned)
}

func sortedCategories(categories map[string]decimal.Decimal) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatFetchedAt(fetchedAt, now time.Time) string {
	if fetchedAt.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return fetchedAt.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := fetchedAt.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return fetchedAt.Format("15:04")
	}

	return fetchedAt.Format("15:04 on 02 Jan")
}

func isStale(fetchedAt time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || fetchedAt.IsZero() {
		return false
	}

	return opts.Now.Sub(fetchedAt) > opts.StaleAfter
}
