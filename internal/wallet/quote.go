package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

const DefaultQuoteDebounce = 500 * time.Millisecond

type QuoteRequest struct {
	Source stellar.Asset
	Dest   stellar.Asset
	Amount string
}

// QuoteResult carries the token of the Update that produced it. An empty
// Paths with a nil Err means the input had no amount to quote.
type QuoteResult struct {
	Token   uint64
	Request QuoteRequest
	Paths   []stellar.Path
	Err     error
}

type QuoteSource interface {
	Quote(ctx context.Context, source, dest stellar.Asset, amount string) ([]stellar.Path, error)
}

// QuoteWatcher refreshes a swap quote after input settles. Every Update
// supersedes the previous one: its timer is stopped, its request is
// cancelled, and its result is dropped if it still arrives.
type QuoteWatcher struct {
	source   QuoteSource
	debounce time.Duration
	deliver  func(QuoteResult)

	mu     sync.Mutex
	token  uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewQuoteWatcher creates a watcher. deliver is called with the watcher's
// lock held and must not call back into it.
func NewQuoteWatcher(source QuoteSource, debounce time.Duration, deliver func(QuoteResult)) *QuoteWatcher {
	if debounce <= 0 {
		debounce = DefaultQuoteDebounce
	}
	return &QuoteWatcher{
		source:   source,
		debounce: debounce,
		deliver:  deliver,
	}
}

// Update schedules a quote for req and returns its token.
func (w *QuoteWatcher) Update(req QuoteRequest) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0
	}

	w.token++
	token := w.token
	w.stopLocked()

	if !quotable(req.Amount) {
		w.deliver(QuoteResult{Token: token, Request: req})
		return token
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.fetch(ctx, token, req)
	})
	return token
}

func (w *QuoteWatcher) fetch(ctx context.Context, token uint64, req QuoteRequest) {
	paths, err := w.source.Quote(ctx, req.Source, req.Dest, req.Amount)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || token != w.token || ctx.Err() != nil {
		return
	}
	w.deliver(QuoteResult{Token: token, Request: req, Paths: paths, Err: err})
}

// stopLocked stops the pending timer and cancels the in-flight request.
func (w *QuoteWatcher) stopLocked() {
	if w.timer != nil && w.timer.Stop() {
		// the callback never ran
		w.wg.Done()
	}
	w.timer = nil
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// Close stops the watcher and waits for an in-flight fetch to return.
func (w *QuoteWatcher) Close() {
	w.mu.Lock()
	w.closed = true
	w.stopLocked()
	w.mu.Unlock()
	w.wg.Wait()
}

func quotable(amount string) bool {
	d, err := decimal.NewFromString(amount)
	return err == nil && d.IsPositive()
}
