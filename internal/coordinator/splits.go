package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// SplitsSource is what split management reads and writes.
type SplitsSource interface {
	api.Splits
	api.Expenses
}

// SplitsView is the split catalog with client-side analytics per split.
type SplitsView struct {
	Loaded    bool
	Error     string
	Splits    []core.Split
	Analytics aggregate.Summary
	Total     float64
}

type Splits struct {
	cycle
	src  SplitsSource
	set  settings
	view SplitsView
}

func NewSplits(src SplitsSource, opts ...Option) *Splits {
	return &Splits{src: src, set: newSettings("splits", opts), view: emptySplits("")}
}

func emptySplits(msg string) SplitsView {
	return SplitsView{Error: msg, Splits: []core.Split{}, Analytics: aggregate.Summary{}}
}

func (s *Splits) View() SplitsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Splits) Refresh(ctx context.Context) error {
	gen := s.begin()

	var (
		splits   []core.Split
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		splits, err = s.src.ListSplits(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.src.ListExpenses(gctx, core.ExpenseFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		msg := fail(ctx, s.set.log(ctx), log.OpFetch, err, "Failed to fetch splits")
		if cerr := s.commit(ctx, s.set.log(ctx), gen, func() { s.view = emptySplits(msg) }); cerr != nil {
			return cerr
		}
		return err
	}
	if splits == nil {
		splits = []core.Split{}
	}

	analytics := aggregate.SummaryBySplit(expenses, splits, aggregate.SummaryOptions{IncludeEmpty: true})
	return s.commit(ctx, s.set.log(ctx), gen, func() {
		s.view = SplitsView{
			Loaded:    true,
			Splits:    splits,
			Analytics: analytics,
			Total:     analytics.Total(),
		}
	})
}

// Add creates a split; a blank color gets the default.
func (s *Splits) Add(ctx context.Context, in core.SplitInput) error {
	in.Normalize()
	if err := in.Validate(); err != nil {
		s.update(func() { s.view.Error = Message(err, "") })
		return err
	}
	if _, err := s.src.CreateSplit(ctx, in); err != nil {
		msg := fail(ctx, s.set.log(ctx), log.OpCreate, err, "Failed to create split")
		s.update(func() { s.view.Error = msg })
		return err
	}
	return s.Refresh(ctx)
}

// Delete removes the split. Expenses that referenced it remain and show up
// as unlabeled.
func (s *Splits) Delete(ctx context.Context, id string) error {
	if err := s.src.DeleteSplit(ctx, id); err != nil {
		msg := fail(ctx, s.set.log(ctx), log.OpDelete, err, "Failed to delete split")
		s.update(func() { s.view.Error = msg })
		return err
	}
	return s.Refresh(ctx)
}
