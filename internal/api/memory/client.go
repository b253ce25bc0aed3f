package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
)

// Client is an api.Gateway over a Store.
type Client struct {
	store  *Store
	tokens api.TokenSource
}

var _ api.Gateway = (*Client)(nil)

func (c *Client) Register(_ context.Context, req api.RegisterRequest) (api.AuthResult, error) {
	const op = "register"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		return api.AuthResult{}, validationError(op, "Please provide all required fields")
	}
	if req.Password != req.ConfirmPassword {
		return api.AuthResult{}, validationError(op, "Passwords do not match")
	}
	for _, a := range s.data.Accounts {
		if a.User.Email == email {
			return api.AuthResult{}, validationError(op, "User already exists")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return api.AuthResult{}, internalError(op, err)
	}
	u := core.User{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name), Email: email}
	tok, err := s.issue(u)
	if err != nil {
		return api.AuthResult{}, internalError(op, err)
	}
	n := len(s.data.Accounts)
	s.data.Accounts = append(s.data.Accounts, account{User: u, PasswordHash: string(hash)})
	if err := s.persist(); err != nil {
		s.data.Accounts = s.data.Accounts[:n]
		return api.AuthResult{}, internalError(op, err)
	}
	return api.AuthResult{Token: tok, User: u}, nil
}

func (c *Client) Login(_ context.Context, req api.LoginRequest) (api.AuthResult, error) {
	const op = "login"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return api.AuthResult{}, validationError(op, "Please provide email and password")
	}
	for _, a := range s.data.Accounts {
		if a.User.Email != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
			break
		}
		tok, err := s.issue(a.User)
		if err != nil {
			return api.AuthResult{}, internalError(op, err)
		}
		return api.AuthResult{Token: tok, User: a.User}, nil
	}
	return api.AuthResult{}, validationError(op, "Invalid credentials")
}

func (c *Client) CurrentUser(_ context.Context) (core.User, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("current user", c.tokens.Token())
	if err != nil {
		return core.User{}, err
	}
	a, _ := s.account(uid)
	return a.User, nil
}

// Splits

func (c *Client) ListSplits(_ context.Context) ([]core.Split, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("list splits", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	out := []core.Split{}
	for _, o := range s.data.Splits {
		if o.Owner == uid {
			out = append(out, o.Split)
		}
	}
	return out, nil
}

func (c *Client) GetSplit(_ context.Context, id string) (core.Split, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("get split", c.tokens.Token())
	if err != nil {
		return core.Split{}, err
	}
	sp, ok := s.split(uid, id)
	if !ok {
		return core.Split{}, notFound("get split", "Split")
	}
	return sp, nil
}

func (c *Client) CreateSplit(_ context.Context, in core.SplitInput) (core.Split, error) {
	const op = "create split"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return core.Split{}, err
	}
	in.Normalize()
	if in.Validate() != nil {
		return core.Split{}, validationError(op, "Split name is required")
	}
	sp := core.Split{ID: uuid.NewString(), Name: in.Name, Color: in.Color}
	s.data.Splits = append(s.data.Splits, ownedSplit{Owner: uid, Split: sp})
	if err := s.persist(); err != nil {
		return core.Split{}, internalError(op, err)
	}
	return sp, nil
}

func (c *Client) UpdateSplit(_ context.Context, id string, in core.SplitInput) (core.Split, error) {
	const op = "update split"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return core.Split{}, err
	}
	for i, o := range s.data.Splits {
		if o.Owner != uid || o.Split.ID != id {
			continue
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			s.data.Splits[i].Split.Name = name
		}
		if color := strings.TrimSpace(in.Color); color != "" {
			s.data.Splits[i].Split.Color = color
		}
		if err := s.persist(); err != nil {
			return core.Split{}, internalError(op, err)
		}
		return s.data.Splits[i].Split, nil
	}
	return core.Split{}, notFound(op, "Split")
}

// DeleteSplit leaves expenses that reference the split in place.
func (c *Client) DeleteSplit(_ context.Context, id string) error {
	const op = "delete split"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return err
	}
	for i, o := range s.data.Splits {
		if o.Owner == uid && o.Split.ID == id {
			s.data.Splits = append(s.data.Splits[:i], s.data.Splits[i+1:]...)
			if err := s.persist(); err != nil {
				return internalError(op, err)
			}
			return nil
		}
	}
	return notFound(op, "Split")
}

// Expenses

// expenses returns the user's populated expenses, newest first. Must hold mu.
func (s *Store) expenses(uid string, keep func(core.Expense) bool) []core.Expense {
	out := []core.Expense{}
	for _, oe := range s.data.Expenses {
		if oe.Owner != uid {
			continue
		}
		e := s.populate(oe)
		// Filters see the stored id even when the split is gone.
		probe := e
		if oe.SplitID != "" && probe.Split == nil {
			probe.Split = &core.SplitRef{ID: oe.SplitID}
		}
		if keep == nil || keep(probe) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out
}

func (c *Client) ListExpenses(_ context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("list expenses", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	return s.expenses(uid, f.Matches), nil
}

func (c *Client) ListExpensesBySplit(_ context.Context, splitID string) ([]core.Expense, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("list expenses by split", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	return s.expenses(uid, core.ExpenseFilter{Split: splitID}.Matches), nil
}

func (c *Client) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("get expense", c.tokens.Token())
	if err != nil {
		return core.Expense{}, err
	}
	for _, oe := range s.data.Expenses {
		if oe.Owner == uid && oe.Expense.ID == id {
			return s.populate(oe), nil
		}
	}
	return core.Expense{}, notFound("get expense", "Expense")
}

func (c *Client) CreateExpense(_ context.Context, in core.ExpenseInput) (core.Expense, error) {
	const op = "create expense"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return core.Expense{}, err
	}
	in.Normalize()
	if in.Description == "" || in.Amount == 0 {
		return core.Expense{}, validationError(op, "Description and amount are required")
	}
	if in.Split != "" {
		if _, ok := s.split(uid, in.Split); !ok {
			return core.Expense{}, validationError(op, "Invalid split")
		}
	}
	oe := ownedExpense{Owner: uid, SplitID: in.Split, Expense: fromInput(uuid.NewString(), in, s.now())}
	s.data.Expenses = append(s.data.Expenses, oe)
	if err := s.persist(); err != nil {
		return core.Expense{}, internalError(op, err)
	}
	return s.populate(oe), nil
}

func (c *Client) UpdateExpense(_ context.Context, id string, in core.ExpenseInput) (core.Expense, error) {
	const op = "update expense"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return core.Expense{}, err
	}
	in.Normalize()
	for i, oe := range s.data.Expenses {
		if oe.Owner != uid || oe.Expense.ID != id {
			continue
		}
		if in.Description == "" || in.Amount == 0 {
			return core.Expense{}, validationError(op, "Description and amount are required")
		}
		if in.Split != "" {
			if _, ok := s.split(uid, in.Split); !ok {
				return core.Expense{}, validationError(op, "Invalid split")
			}
		}
		s.data.Expenses[i] = ownedExpense{Owner: uid, SplitID: in.Split, Expense: fromInput(id, in, s.now())}
		if err := s.persist(); err != nil {
			return core.Expense{}, internalError(op, err)
		}
		return s.populate(s.data.Expenses[i]), nil
	}
	return core.Expense{}, notFound(op, "Expense")
}

func (c *Client) DeleteExpense(_ context.Context, id string) error {
	const op = "delete expense"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return err
	}
	for i, oe := range s.data.Expenses {
		if oe.Owner == uid && oe.Expense.ID == id {
			s.data.Expenses = append(s.data.Expenses[:i], s.data.Expenses[i+1:]...)
			if err := s.persist(); err != nil {
				return internalError(op, err)
			}
			return nil
		}
	}
	return notFound(op, "Expense")
}

func fromInput(id string, in core.ExpenseInput, now time.Time) core.Expense {
	date := in.Date
	if date.IsZero() {
		date = core.DateOf(now)
	}
	payer := in.PaidBy
	if payer == "" {
		payer = DefaultPayer
	}
	return core.Expense{
		ID:          id,
		Description: in.Description,
		Amount:      core.Amount(in.Amount),
		Category:    in.Category,
		PaidBy:      payer,
		Date:        date,
		Notes:       in.Notes,
	}
}

// DefaultPayer is stored when an expense names no payer.
const DefaultPayer = "User"

// Income

func (c *Client) ListIncome(_ context.Context) ([]core.Income, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("list income", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	out := []core.Income{}
	for _, oi := range s.data.Income {
		if oi.Owner == uid {
			out = append(out, oi.Income)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (c *Client) CreateIncome(_ context.Context, in core.IncomeInput) (core.Income, error) {
	const op = "create income"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return core.Income{}, err
	}
	if in.Amount == 0 || in.Source == "" {
		return core.Income{}, validationError(op, "Amount and source are required")
	}
	date := in.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	inc := core.Income{ID: uuid.NewString(), Amount: core.Amount(in.Amount), Source: in.Source, Date: date}
	s.data.Income = append(s.data.Income, ownedIncome{Owner: uid, Income: inc})
	if err := s.persist(); err != nil {
		return core.Income{}, internalError(op, err)
	}
	return inc, nil
}

func (c *Client) DeleteIncome(_ context.Context, id string) error {
	const op = "delete income"
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate(op, c.tokens.Token())
	if err != nil {
		return err
	}
	for i, oi := range s.data.Income {
		if oi.Owner == uid && oi.Income.ID == id {
			s.data.Income = append(s.data.Income[:i], s.data.Income[i+1:]...)
			if err := s.persist(); err != nil {
				return internalError(op, err)
			}
			return nil
		}
	}
	return notFound(op, "Income")
}

// Stats

func (c *Client) StatsSummary(_ context.Context) (core.StatsSummary, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("stats summary", c.tokens.Token())
	if err != nil {
		return core.StatsSummary{}, err
	}
	expenses := s.expenses(uid, nil)
	out := core.StatsSummary{Summary: map[string]core.SplitStat{}}
	for _, g := range aggregate.SummaryBySplit(expenses, nil, aggregate.SummaryOptions{}) {
		out.Summary[g.Name] = core.SplitStat{Total: core.Amount(g.Total), Count: g.Count, Color: g.Color}
	}
	out.TotalAmount = core.Amount(aggregate.TotalExpenses(expenses))
	out.ExpenseCount = len(expenses)
	return out, nil
}

func (c *Client) StatsMonthly(_ context.Context, year int) (core.MonthlyBreakdown, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("stats monthly", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	out := core.MonthlyBreakdown{}
	for _, e := range s.expenses(uid, nil) {
		if e.Date.IsZero() || e.Date.Year() != year {
			continue
		}
		month := aggregate.ShortMonth(e.Date.Month())
		if out[month] == nil {
			out[month] = map[string]core.Amount{}
		}
		label := aggregate.Unlabeled
		if e.Split != nil {
			label = e.Split.Name
		}
		out[month][label] += e.Amount
	}
	return out, nil
}

func (c *Client) StatsDaily(_ context.Context) ([]core.DailyStat, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("stats daily", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	byDay := map[string]*core.DailyStat{}
	for _, e := range s.expenses(uid, nil) {
		key := e.Date.String()
		d, ok := byDay[key]
		if !ok {
			d = &core.DailyStat{Date: e.Date}
			byDay[key] = d
		}
		d.Total += e.Amount
		d.Count++
	}
	out := make([]core.DailyStat, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (c *Client) StatsTop(_ context.Context, limit int) ([]core.Expense, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.authenticate("stats top", c.tokens.Token())
	if err != nil {
		return nil, err
	}
	return aggregate.TopN(s.expenses(uid, nil), limit), nil
}
