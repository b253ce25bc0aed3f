package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"spendwise/internal/api"
	"spendwise/internal/core"
)

// Auth

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResult, error) {
	var res api.AuthResult
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, req, &res); err != nil {
		return api.AuthResult{}, err
	}
	if res.Token == "" {
		return api.AuthResult{}, &api.Error{Kind: api.KindServer, Op: "register", Message: "Registration failed", Err: errEmptyToken}
	}
	return res, nil
}

func (c *Client) Login(ctx context.Context, req api.LoginRequest) (api.AuthResult, error) {
	var res api.AuthResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, req, &res); err != nil {
		return api.AuthResult{}, err
	}
	if res.Token == "" {
		return api.AuthResult{}, &api.Error{Kind: api.KindServer, Op: "login", Message: "Login failed", Err: errEmptyToken}
	}
	return res, nil
}

func (c *Client) CurrentUser(ctx context.Context) (core.User, error) {
	var u core.User
	err := c.do(ctx, "current user", http.MethodGet, "/auth/me", nil, nil, &u)
	return u, err
}

// Splits

func (c *Client) ListSplits(ctx context.Context) ([]core.Split, error) {
	out := []core.Split{}
	if err := c.do(ctx, "list splits", http.MethodGet, "/splits", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSplit(ctx context.Context, id string) (core.Split, error) {
	var s core.Split
	if err := requireID("get split", id); err != nil {
		return s, err
	}
	err := c.do(ctx, "get split", http.MethodGet, "/splits/"+escape(id), nil, nil, &s)
	return s, err
}

func (c *Client) CreateSplit(ctx context.Context, in core.SplitInput) (core.Split, error) {
	var s core.Split
	err := c.do(ctx, "create split", http.MethodPost, "/splits", nil, in, &s)
	return s, err
}

func (c *Client) UpdateSplit(ctx context.Context, id string, in core.SplitInput) (core.Split, error) {
	var s core.Split
	if err := requireID("update split", id); err != nil {
		return s, err
	}
	err := c.do(ctx, "update split", http.MethodPut, "/splits/"+escape(id), nil, in, &s)
	return s, err
}

func (c *Client) DeleteSplit(ctx context.Context, id string) error {
	if err := requireID("delete split", id); err != nil {
		return err
	}
	return c.do(ctx, "delete split", http.MethodDelete, "/splits/"+escape(id), nil, nil, nil)
}

// Expenses

func (c *Client) ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	out := []core.Expense{}
	if err := c.do(ctx, "list expenses", http.MethodGet, "/expenses", f.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	var e core.Expense
	if err := requireID("get expense", id); err != nil {
		return e, err
	}
	err := c.do(ctx, "get expense", http.MethodGet, "/expenses/"+escape(id), nil, nil, &e)
	return e, err
}

func (c *Client) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	var e core.Expense
	err := c.do(ctx, "create expense", http.MethodPost, "/expenses", nil, in, &e)
	return e, err
}

func (c *Client) UpdateExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error) {
	var e core.Expense
	if err := requireID("update expense", id); err != nil {
		return e, err
	}
	err := c.do(ctx, "update expense", http.MethodPut, "/expenses/"+escape(id), nil, in, &e)
	return e, err
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if err := requireID("delete expense", id); err != nil {
		return err
	}
	return c.do(ctx, "delete expense", http.MethodDelete, "/expenses/"+escape(id), nil, nil, nil)
}

func (c *Client) ListExpensesBySplit(ctx context.Context, splitID string) ([]core.Expense, error) {
	if err := requireID("list expenses by split", splitID); err != nil {
		return nil, err
	}
	out := []core.Expense{}
	if err := c.do(ctx, "list expenses by split", http.MethodGet, "/expenses/split/"+escape(splitID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Income

func (c *Client) ListIncome(ctx context.Context) ([]core.Income, error) {
	out := []core.Income{}
	if err := c.do(ctx, "list income", http.MethodGet, "/income", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateIncome(ctx context.Context, in core.IncomeInput) (core.Income, error) {
	var i core.Income
	err := c.do(ctx, "create income", http.MethodPost, "/income", nil, in, &i)
	return i, err
}

func (c *Client) DeleteIncome(ctx context.Context, id string) error {
	if err := requireID("delete income", id); err != nil {
		return err
	}
	return c.do(ctx, "delete income", http.MethodDelete, "/income/"+escape(id), nil, nil, nil)
}

// Stats

func (c *Client) StatsSummary(ctx context.Context) (core.StatsSummary, error) {
	var s core.StatsSummary
	err := c.do(ctx, "stats summary", http.MethodGet, "/stats/summary", nil, nil, &s)
	if s.Summary == nil {
		s.Summary = map[string]core.SplitStat{}
	}
	return s, err
}

func (c *Client) StatsMonthly(ctx context.Context, year int) (core.MonthlyBreakdown, error) {
	var res struct {
		MonthlyData core.MonthlyBreakdown `json:"monthlyData"`
	}
	q := url.Values{"year": []string{strconv.Itoa(year)}}
	if err := c.do(ctx, "stats monthly", http.MethodGet, "/stats/monthly", q, nil, &res); err != nil {
		return nil, err
	}
	if res.MonthlyData == nil {
		res.MonthlyData = core.MonthlyBreakdown{}
	}
	return res.MonthlyData, nil
}

func (c *Client) StatsDaily(ctx context.Context) ([]core.DailyStat, error) {
	out := []core.DailyStat{}
	if err := c.do(ctx, "stats daily", http.MethodGet, "/stats/daily", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StatsTop(ctx context.Context, limit int) ([]core.Expense, error) {
	out := []core.Expense{}
	q := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if err := c.do(ctx, "stats top", http.MethodGet, "/stats/top", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
