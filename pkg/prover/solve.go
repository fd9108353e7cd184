package prover

import (
	"context"
	"fmt"
	"time"

	uatomic "go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/seekerror/logw"

	"github.com/herohde/pnsolve/pkg/game"
	"github.com/herohde/pnsolve/pkg/pns"
)

// Result is the outcome of a Solve call: the best move (if the root resolved
// proven), the tree backing the search (for reuse by a later, related search) and a
// statistics snapshot.
type Result struct {
	Move  game.Move
	Found bool
	Tree  *pns.Tree
	Stats pns.Stats
}

func (r Result) String() string {
	if r.Found {
		return fmt.Sprintf("proven: move=%v, stats=%+v", r.Move, r.Stats)
	}
	return fmt.Sprintf("unproven, stats=%+v", r.Stats)
}

// Solve runs iterative deepening proof-number search to completion: it raises the
// horizon one ply at a time, running the worker pool at each horizon until the root
// resolves (proven or disproven) or stop fires, per spec.md section 4.6:
//
//	depth = 1
//	create tree with horizon = depth
//	loop:
//	  if stop_flag: return (None, tt, node_table)
//	  run workers until root resolved or stop
//	  if root proven: return (best_move, tt, node_table)
//	  depth += 1
//	  raise tree horizon to depth
//
// A root that resolves disproven (no forced win found within the current horizon)
// is not a stopping condition by itself: the loop keeps deepening, since a
// depth-limited disproof only means "not proven yet at this depth" (spec.md section
// 9's pessimistic depth-cutoff policy). stop is a caller-owned shared flag (spec.md
// section 6); it is checked at the top of every iteration, matching the
// cancellation discipline of spec.md section 5. onIteration, if non-nil, is invoked
// with a partial Result after every horizon attempt, win or lose -- used by Launch to
// stream progress the way pkg/search/searchctl.Iterative.Launch streams a PV per
// depth.
func Solve(ctx context.Context, state *game.State, cfg Config, stop *uatomic.Bool, prevTT *pns.TranspositionTable, prevNodes *pns.NodeTable, onIteration func(horizon int, partial Result)) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	if state.N() != cfg.BoardSize || state.K() != cfg.WinLength {
		return Result{}, fmt.Errorf("prover: state (n=%d, k=%d) does not match %v", state.N(), state.K(), cfg)
	}

	start := time.Now()
	counters := &pns.Counters{}

	horizon := 1
	tree := pns.NewTree(state, horizon, cfg.OptimisticDepthCutoff, prevTT, prevNodes)

	logw.Infof(ctx, "Solving n=%d k=%d workers=%d", cfg.BoardSize, cfg.WinLength, cfg.NumWorkers)

	for {
		if stop.Load() || ctx.Err() != nil {
			logw.Infof(ctx, "Halted before horizon=%d", horizon)
			return snapshot(tree, 0, false, counters, start), nil
		}

		runWorkers(ctx, tree, cfg, state, counters, stop)

		if tree.Root.PN() == 0 {
			move, found := tree.BestMove()
			logw.Infof(ctx, "Proven at horizon=%d: move=%v", horizon, move)
			res := snapshot(tree, move, found, counters, start)
			if onIteration != nil {
				onIteration(horizon, res)
			}
			return res, nil
		}

		res := snapshot(tree, 0, false, counters, start)
		if onIteration != nil {
			onIteration(horizon, res)
		}
		logw.Debugf(ctx, "Unproven at horizon=%d: pn=%d dn=%d", horizon, tree.Root.PN(), tree.Root.DN())

		if stop.Load() || ctx.Err() != nil {
			return res, nil
		}
		if limit, ok := cfg.DepthLimit.V(); ok && uint(horizon) >= limit {
			logw.Infof(ctx, "Reached configured depth limit %d unproven", limit)
			return res, nil
		}

		horizon++
		tree.RaiseHorizon(horizon)
	}
}

func snapshot(tree *pns.Tree, move game.Move, found bool, counters *pns.Counters, start time.Time) Result {
	stats := counters.Snapshot()
	stats.Elapsed = time.Since(start)
	return Result{Move: move, Found: found, Tree: tree, Stats: stats}
}

// runWorkers launches cfg.NumWorkers workers, each over its own exclusive clone of
// state, and blocks until every worker observes the root resolved, stop fires, or
// ctx is cancelled. Workers are tracked with an errgroup bound to ctx, the same
// structured-concurrency idiom the retrieved corpus uses for parallel worker pools.
func runWorkers(ctx context.Context, tree *pns.Tree, cfg Config, state *game.State, counters *pns.Counters, stop *uatomic.Bool) {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.NumWorkers; i++ {
		id := i
		g.Go(func() error {
			w := pns.NewWorker(id, tree, state.Clone(), counters)
			w.Run(gctx, stop.Load)
			return nil
		})
	}
	_ = g.Wait()
}
