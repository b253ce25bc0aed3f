package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// StatisticsView shows the server-side summary per split and daily totals.
type StatisticsView struct {
	Loaded       bool
	Error        string
	Summary      aggregate.Summary
	Shares       []aggregate.Share
	TotalAmount  float64
	ExpenseCount int
	Daily        []core.DailyStat
}

type Statistics struct {
	cycle
	src  api.Stats
	set  settings
	view StatisticsView
}

func NewStatistics(src api.Stats, opts ...Option) *Statistics {
	return &Statistics{src: src, set: newSettings("statistics", opts), view: emptyStatistics("")}
}

func emptyStatistics(msg string) StatisticsView {
	return StatisticsView{Error: msg, Summary: aggregate.Summary{}, Shares: []aggregate.Share{}, Daily: []core.DailyStat{}}
}

func (s *Statistics) View() StatisticsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Refresh is the manual refresh trigger.
func (s *Statistics) Refresh(ctx context.Context) error {
	gen := s.begin()

	var (
		stats core.StatsSummary
		daily []core.DailyStat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.src.StatsSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.src.StatsDaily(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		msg := fail(ctx, s.set.log(ctx), log.OpFetch, err, "Failed to fetch statistics")
		if cerr := s.commit(ctx, s.set.log(ctx), gen, func() { s.view = emptyStatistics(msg) }); cerr != nil {
			return cerr
		}
		return err
	}

	summary := aggregate.FromStats(stats, nil)
	return s.commit(ctx, s.set.log(ctx), gen, func() {
		s.view = StatisticsView{
			Loaded:       true,
			Summary:      summary,
			Shares:       aggregate.CategoryShares(summary),
			TotalAmount:  float64(stats.TotalAmount),
			ExpenseCount: stats.ExpenseCount,
			Daily:        daily,
		}
	})
}
