package pns

import (
	"context"
	"time"

	uatomic "go.uber.org/atomic"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/game"
)

// Stats holds the monotonic counters spec.md section 6 asks the prover to report:
// iteration/expansion counts, TT and node-table hit rates, and a depth-cutoff count.
// Every field except Elapsed is a plain uint64; callers sample them via atomic loads on the owning
// *atomic-wrapped* counters held by the caller (pkg/prover), not here -- Stats is the
// plain snapshot shape, not the live counters.
type Stats struct {
	Iterations      uint64
	Expansions      uint64
	TTHits          uint64
	TTMisses        uint64
	NodeTableHits   uint64
	NodeTableMisses uint64
	DepthCutoffs    uint64
	Elapsed         time.Duration
}

// Counters are the live, concurrently-updated counters a pool of Workers shares,
// sampled into a Stats snapshot by the caller.
type Counters struct {
	Iterations      uatomic.Uint64
	Expansions      uatomic.Uint64
	TTHits          uatomic.Uint64
	TTMisses        uatomic.Uint64
	NodeTableHits   uatomic.Uint64
	NodeTableMisses uatomic.Uint64
	DepthCutoffs    uatomic.Uint64
}

// Snapshot reads every counter into a Stats value.
func (c *Counters) Snapshot() Stats {
	return Stats{
		Iterations:      c.Iterations.Load(),
		Expansions:      c.Expansions.Load(),
		TTHits:          c.TTHits.Load(),
		TTMisses:        c.TTMisses.Load(),
		NodeTableHits:   c.NodeTableHits.Load(),
		NodeTableMisses: c.NodeTableMisses.Load(),
		DepthCutoffs:    c.DepthCutoffs.Load(),
	}
}

// pathEntry is one traversal step recorded during selection, so back-propagation can
// undo the move and release the virtual pressure in reverse order.
type pathEntry struct {
	node *Node
	move game.Move
}

// Worker runs the per-thread select/expand/back-propagate loop (spec.md 4.5/4.6). It
// owns an exclusive clone of the game state -- its own bitboard, threat index,
// candidate set, scratch buffers -- and navigates the shared, mostly-immutable tree,
// applying and undoing moves locally while reading and atomically updating node
// counters. A Worker is not safe for concurrent use by more than one goroutine.
type Worker struct {
	ID    int
	Tree  *Tree
	State *game.State

	counters *Counters

	path    []pathEntry
	moveBuf []game.Move
}

// NewWorker returns a worker over its own exclusive clone of state, sharing tree and
// the pool-wide counters with its siblings.
func NewWorker(id int, tree *Tree, state *game.State, counters *Counters) *Worker {
	return &Worker{ID: id, Tree: tree, State: state, counters: counters}
}

// Run drives the worker loop until the root resolves, ctx is cancelled, or stop
// fires. Checked at the top of every iteration, per spec.md section 5's
// cancellation discipline; a worker that stops mid-traversal still releases any
// virtual pressure it is holding, since iterate() always unwinds its own path.
func (w *Worker) Run(ctx context.Context, stop func() bool) {
	for {
		if stop() || ctx.Err() != nil {
			return
		}
		if w.Tree.Root.IsResolved() {
			return
		}
		w.iterate()
	}
}

// iterate performs one most-proving-node descent, expansion and back-propagation.
func (w *Worker) iterate() {
	defer func() { w.counters.Iterations.Add(1) }()

	w.path = w.path[:0]
	cur := w.Tree.Root

	for {
		if cur.IsResolved() || cur.IsDepthLimited() {
			break // terminal along the path: nothing to expand, just back-propagate
		}
		children, ok := cur.Children()
		if !ok {
			break // cur is the expansion target
		}
		if len(children) == 0 {
			break // true terminal with no edges
		}

		child := w.selectChild(cur, children)
		child.Node.virtualPN.Add(1)
		child.Node.virtualDN.Add(1)

		if err := w.State.MakeMove(child.Move); err != nil {
			// Local state and tree disagree; abandon this traversal cleanly.
			child.Node.virtualPN.Sub(1)
			child.Node.virtualDN.Sub(1)
			break
		}
		w.path = append(w.path, pathEntry{node: child.Node, move: child.Move})
		cur = child.Node
	}

	if _, expanded := cur.Children(); !expanded && !cur.IsResolved() && !cur.IsDepthLimited() {
		w.expand(cur)
	}

	for i := len(w.path) - 1; i >= 0; i-- {
		e := w.path[i]
		if _, err := w.State.UndoMove(); err != nil {
			break
		}
		e.node.virtualPN.Sub(1)
		e.node.virtualDN.Sub(1)
		if e.node.Recompute() {
			maybeStore(w.Tree.TT, e.node)
		}
	}
	if w.Tree.Root.Recompute() {
		maybeStore(w.Tree.TT, w.Tree.Root)
	}
}

// selectChild implements most-proving-node descent: the child minimising
// (effective_pn, winLen) at an OR node, or (effective_dn, winLen) at an AND node,
// where effective_x = x + virtual_x.
func (w *Worker) selectChild(node *Node, children []Child) Child {
	best := children[0]
	bestKey, bestWL := effectiveKey(node, best)

	for _, c := range children[1:] {
		key, wl := effectiveKey(node, c)
		if key < bestKey || (key == bestKey && wl < bestWL) {
			best, bestKey, bestWL = c, key, wl
		}
	}
	return best
}

func effectiveKey(node *Node, c Child) (uint64, uint64) {
	if node.Player.IsOR() {
		return addSat64(c.Node.pn.Load(), c.Node.virtualPN.Load()), c.Node.winLen.Load()
	}
	return addSat64(c.Node.dn.Load(), c.Node.virtualDN.Load()), c.Node.winLen.Load()
}

// expand implements the expansion protocol (spec.md 4.5): generate legal moves in
// the worker's local state, look up or create each resulting node via the node
// table, and publish the children list exactly once. Generation stops early once
// the node's resolution is already determined by the just-added child (an OR node
// with a proven child, or an AND node with a disproven child).
func (w *Worker) expand(node *Node) {
	w.counters.Expansions.Add(1)

	if node.Depth >= w.Tree.Horizon() {
		node.markDepthLimited(w.Tree.OptimisticDepthCutoff)
		w.counters.DepthCutoffs.Add(1)
		return
	}

	w.moveBuf = w.State.LegalMoves(node.Player, w.moveBuf[:0])
	if len(w.moveBuf) == 0 {
		// Full board (or no reachable candidate cell): a loss for the side to move,
		// per spec.md 4.5. Horizon-invariant, so it belongs in the TT like any other
		// true terminal.
		node.markWinLoss()
		node.publishChildren(nil)
		maybeStore(w.Tree.TT, node)
		return
	}

	var children []Child
	mover := node.Player
	childPlayer := node.Player.Opponent()

	for _, m := range w.moveBuf {
		if err := w.State.MakeMove(m); err != nil {
			continue
		}

		// The node table merges by the raw position hash, not the canonical one:
		// a node's published children carry literal board coordinates (Move values)
		// from whichever worker first expanded it, so two boards that are merely
		// dihedral reflections of each other -- same canonical hash, different
		// actual cell layout -- must NOT share a node, or a sibling reached via the
		// mirrored orientation would replay another board's moves against its own.
		// The canonical hash is still what identifies the node to the TT, since TT
		// entries carry no move coordinates, only resolved (pn, dn, winLen).
		posHash := w.State.Hash()
		childHash := w.State.CanonicalHash()
		childDepth := node.Depth + 1
		opponentWon := w.State.CheckWin(mover)

		var ttHit bool
		child, hit := w.Tree.Nodes.GetOrCreate(posHash, childDepth, func() *Node {
			var n *Node
			n, ttHit = evaluate(w.Tree.TT, childPlayer, childDepth, childHash, w.Tree.Horizon(), opponentWon, w.Tree.OptimisticDepthCutoff, false)
			return n
		})
		if hit {
			w.counters.NodeTableHits.Add(1)
		} else {
			w.counters.NodeTableMisses.Add(1)
			if ttHit {
				w.counters.TTHits.Add(1)
			} else {
				w.counters.TTMisses.Add(1)
			}
		}

		_, _ = w.State.UndoMove()
		children = append(children, Child{Move: m, Node: child})

		if decisive(node.Player, child.Node) {
			break
		}
	}

	node.publishChildren(children)
	if node.Recompute() {
		maybeStore(w.Tree.TT, node)
	}
}

// decisive reports whether child already determines node's resolution: an OR node
// is done once any child is proven; an AND node is done once any child is
// disproven (spec.md 4.5's "early cutoff during expansion").
func decisive(parent board.Player, child *Node) bool {
	if parent.IsOR() {
		return child.PN() == 0
	}
	return child.DN() == 0
}
