package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// ReportsView holds a year of monthly totals and the largest expenses.
type ReportsView struct {
	Loaded    bool
	Error     string
	Year      int
	Breakdown core.MonthlyBreakdown
	Months    [12]float64
	Scale     float64
	YearTotal float64
	Top       []core.Expense
}

type Reports struct {
	cycle
	src  api.Stats
	set  settings
	year int
	view ReportsView
}

// NewReports starts on the current year.
func NewReports(src api.Stats, opts ...Option) *Reports {
	r := &Reports{src: src, set: newSettings("reports", opts)}
	r.year = r.set.now().Year()
	r.view = emptyReports(r.year, "")
	return r
}

func emptyReports(year int, msg string) ReportsView {
	return ReportsView{Error: msg, Year: year, Breakdown: core.MonthlyBreakdown{}, Scale: 1, Top: []core.Expense{}}
}

func (r *Reports) View() ReportsView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// SetYear selects the year and fetches again.
func (r *Reports) SetYear(ctx context.Context, year int) error {
	r.update(func() { r.year = year })
	return r.Refresh(ctx)
}

func (r *Reports) Refresh(ctx context.Context) error {
	gen := r.begin()
	var year int
	r.update(func() { year = r.year })

	var (
		monthly core.MonthlyBreakdown
		top     []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthly, err = r.src.StatsMonthly(gctx, year)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = r.src.StatsTop(gctx, r.set.top)
		return err
	})
	if err := g.Wait(); err != nil {
		msg := fail(ctx, r.set.log(ctx).With(log.FieldYear, year), log.OpFetch, err, "Failed to fetch reports")
		if cerr := r.commit(ctx, r.set.log(ctx), gen, func() { r.view = emptyReports(year, msg) }); cerr != nil {
			return cerr
		}
		return err
	}

	months := aggregate.MonthTotals(monthly)
	var total float64
	for _, m := range months {
		total += m
	}
	// The server already ranks; re-ranking keeps the order stable if it
	// returns more than asked or unsorted.
	top = aggregate.TopN(top, r.set.top)
	r.set.log(ctx).DebugContext(ctx, "Reports fetched", log.FieldYear, year, log.FieldCount, len(top))

	return r.commit(ctx, r.set.log(ctx), gen, func() {
		r.view = ReportsView{
			Loaded:    true,
			Year:      year,
			Breakdown: monthly,
			Months:    months,
			Scale:     aggregate.Scale(months[:]),
			YearTotal: total,
			Top:       top,
		}
	})
}
