package prover

import (
	"context"
	"sync"

	uatomic "go.uber.org/atomic"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/herohde/pnsolve/pkg/game"
	"github.com/herohde/pnsolve/pkg/pns"
)

// Handle manages an asynchronous Solve call, mirroring
// pkg/search/searchctl.Iterative's handle: an init closer unblocks once the first
// horizon has been attempted, and a quit closer lets the caller cooperatively halt
// the search from another goroutine. Halt is idempotent.
type Handle struct {
	init, quit iox.AsyncCloser

	result Result
	mu     sync.Mutex
}

// Launch starts Solve on its own goroutine and returns a Handle plus a channel that
// is given a Result after each completed horizon (proven or not), closed when the
// search stops. The channel holds one Result: an unread earlier one is replaced by
// the latest. This is the asynchronous counterpart to Solve, for a caller (e.g. an
// interactive UI collaborator) that wants to observe progress and halt early.
func Launch(ctx context.Context, state *game.State, cfg Config, prevTT *pns.TranspositionTable, prevNodes *pns.NodeTable) (*Handle, <-chan Result) {
	out := make(chan Result, 1)
	h := &Handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, state, cfg, prevTT, prevNodes, out)
	return h, out
}

func (h *Handle) process(ctx context.Context, state *game.State, cfg Config, prevTT *pns.TranspositionTable, prevNodes *pns.NodeTable, out chan Result) {
	defer h.init.Close()
	defer close(out)

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	stop := uatomic.NewBool(false)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-h.quit.Closed():
			stop.Store(true)
		case <-done:
		}
	}()

	onIteration := func(horizon int, partial Result) {
		h.mu.Lock()
		h.result = partial
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- partial

		h.init.Close()
	}

	res, err := Solve(wctx, state, cfg, stop, prevTT, prevNodes, onIteration)
	if err != nil {
		logw.Errorf(ctx, "Solve failed: %v", err)
		return
	}

	h.mu.Lock()
	h.result = res
	h.mu.Unlock()
}

// Halt halts the search, if running, and returns the latest available result.
// Idempotent: safe to call more than once, and safe to call before the first
// horizon has completed (it blocks until one has).
func (h *Handle) Halt() Result {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}
