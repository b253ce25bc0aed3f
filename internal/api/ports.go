// Package api declares the operations the client performs against the remote
// expense service and the errors they fail with.
package api

import (
	"context"

	"spendwise/internal/core"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type (
	RegisterRequest struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	AuthResult struct {
		Token string    `json:"token"`
		User  core.User `json:"user"`
	}
)

// Ports for outbound adapters, one per resource.
type (
	Auth interface {
		Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
		Login(ctx context.Context, req LoginRequest) (AuthResult, error)
		CurrentUser(ctx context.Context) (core.User, error)
	}

	Splits interface {
		ListSplits(ctx context.Context) ([]core.Split, error)
		GetSplit(ctx context.Context, id string) (core.Split, error)
		CreateSplit(ctx context.Context, in core.SplitInput) (core.Split, error)
		UpdateSplit(ctx context.Context, id string, in core.SplitInput) (core.Split, error)
		DeleteSplit(ctx context.Context, id string) error
	}

	Expenses interface {
		// ListExpenses sends only the filter fields that are set.
		ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
		UpdateExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
		ListExpensesBySplit(ctx context.Context, splitID string) ([]core.Expense, error)
	}

	Income interface {
		ListIncome(ctx context.Context) ([]core.Income, error)
		CreateIncome(ctx context.Context, in core.IncomeInput) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
	}

	// Stats exposes the aggregates the server computes.
	Stats interface {
		StatsSummary(ctx context.Context) (core.StatsSummary, error)
		StatsMonthly(ctx context.Context, year int) (core.MonthlyBreakdown, error)
		StatsDaily(ctx context.Context) ([]core.DailyStat, error)
		StatsTop(ctx context.Context, limit int) ([]core.Expense, error)
	}

	// Gateway is the full set of remote operations.
	Gateway interface {
		Auth
		Splits
		Expenses
		Income
		Stats
	}
)
