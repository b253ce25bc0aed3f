// Package coordinator holds per-view state. Each coordinator fetches what
// its view needs, derives display values with the aggregate package and
// keeps the result until the next fetch cycle.
//
// Every cycle is tagged with a generation number. A response that arrives
// after a newer cycle has started is dropped, so the view always reflects
// the latest trigger. Mutations never touch local state directly: on
// success they start a new fetch cycle.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// ErrStale is returned by a fetch whose result was superseded.
var ErrStale = errors.New("stale response discarded")

// DefaultPayer is recorded on expenses when none is configured.
const DefaultPayer = "User"

type settings struct {
	view   string
	logger *log.Logger
	now    func() time.Time
	payer  string
	top    int
}

type Option func(*settings)

// WithLogger fixes the logger. Without it the logger carried by the request
// context is used.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithClock sets the time source for "current month" and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithDefaultPayer sets the payer used when an expense names none.
func WithDefaultPayer(name string) Option {
	return func(s *settings) {
		if strings.TrimSpace(name) != "" {
			s.payer = name
		}
	}
}

// WithTopLimit sets how many expenses the reports view ranks.
func WithTopLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.top = n
		}
	}
}

func newSettings(view string, opts []Option) settings {
	s := settings{
		view:  view,
		now:   time.Now,
		payer: DefaultPayer,
		top:   10,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) log(ctx context.Context) *log.Logger {
	l := s.logger
	if l == nil {
		l = log.FromContext(ctx)
	}
	return l.WithComponent(log.ComponentCoordinator).With(log.FieldView, s.view)
}

func (s settings) today() core.Date {
	return core.DateOf(s.now())
}

// cycle tracks the generation of the newest fetch and guards view state.
type cycle struct {
	mu  sync.Mutex
	gen uint64
}

func (c *cycle) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// commit runs apply under the lock when gen is still the newest cycle.
func (c *cycle) commit(ctx context.Context, logger *log.Logger, gen uint64, apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		logger.DebugContext(ctx, "Dropping stale response", log.FieldGeneration, gen)
		return ErrStale
	}
	apply()
	return nil
}

// update runs fn under the state lock without starting a cycle.
func (c *cycle) update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Message turns err into text for an error banner. fallback is used when
// neither the server nor the validation layer said anything specific.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, core.ErrRequired) {
		fields := strings.TrimPrefix(err.Error(), core.ErrRequired.Error())
		return "Missing required fields" + fields
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	switch apiErr.Kind {
	case api.KindNetwork:
		return fallback + ": cannot reach the server"
	case api.KindAuth:
		return "Session expired, please log in again"
	}
	return fallback
}

// fail logs err and returns the banner text for it.
func fail(ctx context.Context, logger *log.Logger, op string, err error, fallback string) string {
	logger.WarnContext(ctx, fallback, log.FieldOperation, op, log.FieldError, err)
	return Message(err, fallback)
}
