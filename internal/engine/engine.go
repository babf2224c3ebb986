// Package engine implements the MatchingEngine: a symbol-keyed registry
// of order books, order-type dispatch, the matching loop, and the
// trade/BBO subscriber fan-out. It is the only component in this module
// that mutates more than one order book's worth of state, and it does so
// under a single mutual-exclusion gate (see match.go and §5 of the
// specification this implements).
package engine

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vela/internal/book"
	"vela/internal/common"
	"vela/internal/engineconfig"
)

// MatchingEngine owns the symbol->book registry, the trade log, and the
// subscriber lists. Submit and Cancel are serialized by mu; BBO and
// Snapshot take the same gate so reads see a consistent state between
// submissions.
type MatchingEngine struct {
	mu sync.Mutex

	cfg   engineconfig.Config
	log   zerolog.Logger
	books map[string]*book.OrderBook

	trades []common.Trade

	tradeSubscribers []func(common.Trade)
	bboSubscribers   []func(symbol string)

	metrics *metricsSet
}

// Option customizes a MatchingEngine at construction time.
type Option func(*MatchingEngine)

// WithLogger overrides the default stdout zerolog.Logger, e.g. to inject
// a silent logger in tests.
func WithLogger(l zerolog.Logger) Option {
	return func(e *MatchingEngine) { e.log = l }
}

// WithRegisterer routes the engine's prometheus metrics to reg instead of
// a private, unregistered registry.
func WithRegisterer(reg prometheusRegisterer) Option {
	return func(e *MatchingEngine) { e.metrics = newMetricsSet(reg) }
}

// New constructs a MatchingEngine. supportedSymbols are pre-seeded with
// empty books; any other symbol is lazily created on first Submit,
// matching original_source's get_or_create_order_book behavior.
func New(cfg engineconfig.Config, supportedSymbols []string, opts ...Option) *MatchingEngine {
	e := &MatchingEngine{
		cfg:   cfg,
		log:   zerolog.New(os.Stdout).With().Timestamp().Logger(),
		books: make(map[string]*book.OrderBook),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = newMetricsSet(nil)
	}
	for _, symbol := range supportedSymbols {
		e.books[symbol] = book.New(symbol)
	}
	return e
}

// RegisterTradeSubscriber registers f to be invoked, synchronously and in
// execution order, for every trade a submission produces. f must not
// block or perform I/O; if it wants to, it must hand the event off to a
// queue it owns.
func (e *MatchingEngine) RegisterTradeSubscriber(f func(common.Trade)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tradeSubscribers = append(e.tradeSubscribers, f)
}

// RegisterBBOSubscriber registers f to be invoked once per submission or
// successful cancel, after all of that operation's trades. f receives
// only the symbol and is expected to re-query BBO/Snapshot itself.
func (e *MatchingEngine) RegisterBBOSubscriber(f func(symbol string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bboSubscribers = append(e.bboSubscribers, f)
}

// getOrCreateBook must be called with mu held.
func (e *MatchingEngine) getOrCreateBook(symbol string) *book.OrderBook {
	b, ok := e.books[symbol]
	if !ok {
		b = book.New(symbol)
		e.books[symbol] = b
		e.log.Info().Str("symbol", symbol).Msg("created new order book")
	}
	return b
}

// BBO returns the current top of book for symbol, or (zero, false) if no
// book exists for it.
func (e *MatchingEngine) BBO(symbol string) (common.BBO, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.books[symbol]
	if !ok {
		return common.BBO{}, false
	}
	return b.BBO(), true
}

// Snapshot returns an L2 depth view for symbol, or (zero, false) if no
// book exists for it.
func (e *MatchingEngine) Snapshot(symbol string, depth int) (common.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if depth <= 0 {
		depth = e.cfg.DefaultSnapshotDepth()
	}
	b, ok := e.books[symbol]
	if !ok {
		return common.Snapshot{}, false
	}
	return b.Snapshot(depth), true
}

// TradeLog returns a copy of the in-memory trade log. The log is
// unbounded unless cfg.TradeLogMaxEntries is set; this is a point-in-time
// copy so callers can't observe concurrent mutation.
func (e *MatchingEngine) TradeLog() []common.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]common.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

func (e *MatchingEngine) appendTrade(t common.Trade) {
	e.trades = append(e.trades, t)
	if max := e.cfg.TradeLogMaxEntries; max > 0 && len(e.trades) > max {
		e.trades = e.trades[len(e.trades)-max:]
	}
}

func (e *MatchingEngine) notifyTrade(t common.Trade) {
	for _, sub := range e.tradeSubscribers {
		e.safeInvoke(func() { sub(t) }, "trade subscriber")
	}
}

func (e *MatchingEngine) notifyBBO(symbol string) {
	for _, sub := range e.bboSubscribers {
		e.safeInvoke(func() { sub(symbol) }, "bbo subscriber")
	}
}

// safeInvoke runs fn and isolates any panic it raises, logging it rather
// than letting it unwind through the engine and poison in-flight state.
// This mirrors original_source's per-callback try/except in
// _notify_trade/_notify_bbo_update.
func (e *MatchingEngine) safeInvoke(fn func(), what string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("callback", what).Msg("subscriber panicked, isolating")
		}
	}()
	fn()
}

func nowStamp() time.Time {
	return time.Now().UTC()
}
