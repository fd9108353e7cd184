// Package prover is the solver facade: it wraps pkg/pns's shared tree, orchestrates
// iterative deepening and the worker pool, and returns a best move (or none) plus
// the tree and a statistics snapshot, mirroring the shape of pkg/engine.Engine's
// functional-options wrapper around pkg/search.
package prover

import (
	"fmt"

	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/herohde/pnsolve/pkg/game"
)

// Config holds the search parameters spec.md section 6 lists as "recognised,
// effect-bearing" configuration. Unknown keys in an external config loader (out of
// scope per spec.md section 1) are ignored by construction: this struct only ever
// carries fields the core understands.
type Config struct {
	BoardSize  int
	WinLength  int
	NumWorkers int

	Evaluation *game.Evaluation

	// DepthLimit caps the horizon iterative deepening will raise to. Unset means no
	// cap: deepen until the root is proven or the search is stopped.
	DepthLimit lang.Optional[uint]

	// OptimisticDepthCutoff selects the depth-limit-as-unknown toggle (spec.md
	// section 9 open question). Default false matches the source: a depth-limited
	// node counts as a loss for the side to move.
	OptimisticDepthCutoff bool

	// ZobristSeed records the position hasher's seed. Solve does not read it: the
	// hasher is the zobrist.Table inside the game.State the caller builds.
	ZobristSeed int64
}

func (c Config) String() string {
	return fmt.Sprintf("{n=%v, k=%v, workers=%v, depthLimit=%v, optimisticCutoff=%v}",
		c.BoardSize, c.WinLength, c.NumWorkers, c.DepthLimit, c.OptimisticDepthCutoff)
}

// Option configures a Config at construction, mirroring pkg/engine.Engine's
// Option func(*Engine).
type Option func(*Config)

// WithNumWorkers sets the worker pool size. Default 1.
func WithNumWorkers(n int) Option {
	return func(c *Config) { c.NumWorkers = n }
}

// WithDepthLimit caps iterative deepening at the given horizon.
func WithDepthLimit(depth uint) Option {
	return func(c *Config) { c.DepthLimit = lang.Some(depth) }
}

// WithEvaluation overrides the default heuristic scoring constants.
func WithEvaluation(e *game.Evaluation) Option {
	return func(c *Config) { c.Evaluation = e }
}

// WithOptimisticDepthCutoff selects the "depth-limit-as-unknown" toggle instead of
// the default pessimistic one (spec.md section 9).
func WithOptimisticDepthCutoff(v bool) Option {
	return func(c *Config) { c.OptimisticDepthCutoff = v }
}

// WithZobristSeed fixes the position hasher's random seed, for reproducible runs.
func WithZobristSeed(seed int64) Option {
	return func(c *Config) { c.ZobristSeed = seed }
}

// NewConfig returns a Config for an n*n board with win length k, workers=1 and
// default evaluation constants, as overridden by opts.
func NewConfig(n, k int, opts ...Option) Config {
	c := Config{
		BoardSize:  n,
		WinLength:  k,
		NumWorkers: 1,
		Evaluation: game.DefaultEvaluation(),
	}
	for _, fn := range opts {
		fn(&c)
	}
	return c
}

// validate rejects malformed configuration as a fatal configuration error, per
// spec.md section 7: invalid input is surfaced at construction, not panicked.
func (c Config) validate() error {
	if c.BoardSize <= 0 {
		return fmt.Errorf("prover: invalid board size %d", c.BoardSize)
	}
	if c.WinLength <= 0 || c.WinLength > c.BoardSize {
		return fmt.Errorf("prover: invalid win length %d for board size %d", c.WinLength, c.BoardSize)
	}
	if c.NumWorkers <= 0 {
		return fmt.Errorf("prover: invalid worker count %d", c.NumWorkers)
	}
	return nil
}
