// Package dashboard is the client side of the two dashboard endpoints. A
// Store holds the latest envelope for one endpoint and keeps the dashboard
// drawable when the server cannot be reached.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/models"
)

// State is a snapshot of a Store.
type State[T any] struct {
	Data    T
	Loading bool
	// Error is empty unless the latest request failed, in which case Data
	// holds the local fallback.
	Error string
	// Seq identifies the request that produced this state.
	Seq uint64
}

type Options struct {
	Now    func() time.Time
	Logger zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Store fetches one endpoint through an Invoker. Only the most recently
// issued request may change the state; starting a new one cancels the
// request it supersedes.
type Store[T any] struct {
	inv      Invoker
	function string
	fallback func() T
	log      zerolog.Logger

	mu     sync.Mutex
	state  State[T]
	seq    uint64
	cancel context.CancelFunc
	subs   map[int]func(State[T])
	nextID int

	// pubMu orders deliveries; lastPub is the highest Seq delivered.
	pubMu   sync.Mutex
	lastPub uint64
}

func NewStore[T any](inv Invoker, function string, initial T, local func() T, log zerolog.Logger) *Store[T] {
	return &Store[T]{
		inv:      inv,
		function: function,
		fallback: local,
		log:      log.With().Str("component", "dashboard").Str("function", function).Logger(),
		state:    State[T]{Data: initial},
		subs:     make(map[int]func(State[T])),
	}
}

// NewTariffData returns a store for the tariff endpoint. It starts empty and
// falls back to the four-record client envelope.
func NewTariffData(inv Invoker, opts Options) *Store[models.TariffEnvelope] {
	opts = opts.withDefaults()
	return NewStore(inv, FunctionTariffData, models.TariffEnvelope{},
		func() models.TariffEnvelope { return fallback.ClientTariffEnvelope(opts.Now()) },
		opts.Logger)
}

// NewTradeNews returns a store for the news endpoint. It starts with the
// local news so there is always something to show.
func NewTradeNews(inv Invoker, opts Options) *Store[models.NewsEnvelope] {
	opts = opts.withDefaults()
	local := func() models.NewsEnvelope {
		return models.NewsEnvelope{
			News: fallback.ClientNews(),
			Meta: models.Meta{
				LastUpdated: opts.Now().UTC(),
				Sources:     []string{models.FallbackSource},
				Status:      models.StatusFallback,
			},
		}
	}
	return NewStore(inv, FunctionTradeNews, local(), local, opts.Logger)
}

func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with every state change. Deliveries
// never go back to an older request. fn runs with deliveries held and must
// not call Fetch. The returned func removes it.
func (s *Store[T]) Subscribe(fn func(State[T])) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Fetch issues a request and blocks until it settles or is superseded. It
// returns the store state at that point.
func (s *Store[T]) Fetch(ctx context.Context) State[T] {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Loading = true
	s.state.Seq = seq
	snap := s.state
	s.mu.Unlock()
	defer cancel()

	s.publish(snap)

	var data T
	err := s.inv.Invoke(ctx, s.function, &data)

	s.mu.Lock()
	if seq != s.seq {
		snap = s.state
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", seq).Msg("discarding superseded response")
		return snap
	}
	s.cancel = nil
	s.state.Loading = false
	if err != nil {
		s.state.Error = err.Error()
		s.state.Data = s.fallback()
	} else {
		s.state.Error = ""
		s.state.Data = data
	}
	snap = s.state
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Uint64("seq", seq).Msg("fetch failed, showing local data")
	}
	s.publish(snap)
	return snap
}

// Refetch is Fetch under the name the dashboard exposes to users.
func (s *Store[T]) Refetch(ctx context.Context) State[T] {
	return s.Fetch(ctx)
}

func (s *Store[T]) publish(st State[T]) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if st.Seq < s.lastPub {
		return
	}
	s.lastPub = st.Seq

	s.mu.Lock()
	fns := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
