package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/weather"
)

// Session errors.
var (
	ErrNoModel         = errors.New("no weather loaded")
	ErrDayOutOfRange   = errors.New("day index out of range")
	ErrSuperseded      = errors.New("search superseded by a newer search")
	ErrNoPreviousQuery = errors.New("no previous search to refresh")
)

// Searcher runs a location search.
type Searcher interface {
	Search(ctx context.Context, query string) (*weather.Result, error)
}

// Advisor fetches advisory text; ok is false on any failure.
type Advisor interface {
	Fetch(ctx context.Context, city string, temp int, condition string) (text string, ok bool)
}

// Config holds configuration for a session.
type Config struct {
	Searcher Searcher

	// Advisor is optional.
	Advisor Advisor

	// Logger for session operations.
	Logger zerolog.Logger

	// Now returns the wall-clock time (default: time.Now).
	Now func() time.Time
}

// Session serializes all state transitions of one weather session.
// It is safe for concurrent use.
type Session struct {
	searcher Searcher
	advisor  Advisor
	logger   zerolog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
	subs  map[int]chan View
	subID int

	// advisories run detached from the request that started them.
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// New creates a session in its initial state.
func New(cfg Config) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		searcher: cfg.Searcher,
		advisor:  cfg.Advisor,
		logger:   cfg.Logger,
		now:      now,
		state:    Initial(),
		subs:     make(map[int]chan View),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Search runs a search for query and commits its result. On failure the
// previous model stays in place and the error is returned. The advisory
// for a new model is fetched in the background; Search does not wait for it.
func (s *Session) Search(ctx context.Context, query string) (View, error) {
	s.mu.Lock()
	gen := s.state.Generation + 1
	s.applyLocked(SearchStarted{Generation: gen, Query: query})
	s.mu.Unlock()

	log := s.logger.With().Uint64("generation", gen).Str("query", query).Logger()
	log.Debug().Msg("search started")

	result, err := s.searcher.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.applyLocked(SearchFailed{Generation: gen, Err: err})
		if s.state.Generation != gen {
			return s.viewLocked(), ErrSuperseded
		}
		log.Info().Err(err).Msg("search failed")
		return s.viewLocked(), err
	}

	s.applyLocked(SearchSucceeded{Generation: gen, Result: result})
	if s.state.ModelGeneration != gen {
		log.Debug().Msg("discarding stale search result")
		return s.viewLocked(), ErrSuperseded
	}

	log.Info().Str("location", result.Location.DisplayName()).Msg("search committed")
	s.startAdvisoryLocked(gen, result.Model)
	return s.viewLocked(), nil
}

// Refresh re-runs the query of the model on display.
func (s *Session) Refresh(ctx context.Context) (View, error) {
	query := s.LastQuery()
	if query == "" {
		return s.View(), ErrNoPreviousQuery
	}
	return s.Search(ctx, query)
}

// SelectDay selects the daily entry whose hours and details are shown.
func (s *Session) SelectDay(index int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Model == nil {
		return s.viewLocked(), ErrNoModel
	}
	if index < 0 || index >= len(s.state.Model.Daily) {
		return s.viewLocked(), ErrDayOutOfRange
	}
	s.applyLocked(DaySelected{Index: index})
	return s.viewLocked(), nil
}

// OpenSearch reopens the search form.
func (s *Session) OpenSearch() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(SearchOpened{})
	return s.viewLocked()
}

// View renders the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastQuery returns the query of the model on display, or "".
func (s *Session) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Query
}

// Subscribe returns a channel that receives the view after every state
// change. Slow subscribers only see the latest view. The returned function
// unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.subID
	s.subID++
	ch := make(chan View, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

// Wait blocks until in-flight advisories finish.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Close cancels in-flight advisories, waits for them and closes all
// subscriptions.
func (s *Session) Close() {
	// startAdvisoryLocked checks ctx under mu before inflight.Add.
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.inflight.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) startAdvisoryLocked(gen uint64, m *weather.Model) {
	if s.advisor == nil || m == nil || s.ctx.Err() != nil {
		return
	}

	city, temp, condition := m.Current.City, m.Current.Temp, m.Current.Description

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		text, ok := s.advisor.Fetch(s.ctx, city, temp, condition)
		if !ok {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state.ModelGeneration != gen {
			s.logger.Debug().Uint64("generation", gen).Msg("discarding stale advisory")
			return
		}
		s.applyLocked(AdviceResolved{Generation: gen, Advice: text})
	}()
}

func (s *Session) applyLocked(e Event) {
	s.state = Update(s.state, e)
	s.notifyLocked()
}

func (s *Session) viewLocked() View {
	return BuildView(s.state, s.now())
}

// notifyLocked hands the latest view to every subscriber without blocking.
func (s *Session) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	v := s.viewLocked()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
