package pns

import (
	uatomic "go.uber.org/atomic"

	"github.com/herohde/pnsolve/pkg/game"
)

// Tree is the shared proof-number search tree: a root node plus the transposition
// table and node table that back it. Nodes are shared-immutable except for their
// atomics and the write-once children cell (spec.md section 5); the tree itself adds
// only the horizon, which changes between iterative-deepening iterations while no
// worker is running.
type Tree struct {
	TT    *TranspositionTable
	Nodes *NodeTable
	Root  *Node

	horizon uatomic.Int64

	// OptimisticDepthCutoff selects the depth-limit-as-unknown toggle (spec.md
	// section 9 open question): false (default) matches the source, treating a
	// depth-limited node as a loss for the side to move.
	OptimisticDepthCutoff bool
}

// NewTree creates a tree rooted at state's current position, reusing prevTT/
// prevNodes if given (spec.md section 3's "optional pre-warmed TT and node table"),
// or fresh tables otherwise. The root itself is never shared via the node table --
// it has no parent depth to key on -- and it skips the TT lookup, so it is always
// expanded by a worker, but it is still terminal-evaluated like any other node.
func NewTree(state *game.State, horizon int, optimisticCutoff bool, prevTT *TranspositionTable, prevNodes *NodeTable) *Tree {
	tt := prevTT
	if tt == nil {
		tt = NewTranspositionTable()
	}
	nodes := prevNodes
	if nodes == nil {
		nodes = NewNodeTable()
	}

	player := state.Turn()
	hash := state.CanonicalHash()
	opponentWon := state.CheckWin(player.Opponent())

	root, _ := evaluate(tt, player, 0, hash, horizon, opponentWon, optimisticCutoff, true)

	t := &Tree{TT: tt, Nodes: nodes, Root: root, OptimisticDepthCutoff: optimisticCutoff}
	t.horizon.Store(int64(horizon))
	return t
}

// Horizon returns the current iterative-deepening depth limit.
func (t *Tree) Horizon() int {
	return int(t.horizon.Load())
}

// RaiseHorizon grows the horizon from the current value to newHorizon (must be
// larger) and re-percolates proof values, per spec.md 4.5's depth-limit expansion:
//  1. traverse, clearing depth-cutoff on nodes with depth < newHorizon, resetting
//     their (pn, dn, winLen) to (1, 1, Infinity);
//  2. nodes with depth >= newHorizon stay (or become) depth-limited;
//  3. post-order recompute (pn, dn, winLen) over the whole tree.
//
// The transposition table is untouched throughout.
func (t *Tree) RaiseHorizon(newHorizon int) {
	t.horizon.Store(int64(newHorizon))

	visited := make(map[*Node]bool)
	t.clearPass(t.Root, newHorizon, visited)

	visited2 := make(map[*Node]bool)
	t.recomputePass(t.Root, visited2)
}

func (t *Tree) clearPass(n *Node, newHorizon int, visited map[*Node]bool) {
	if visited[n] {
		return
	}
	visited[n] = true

	if n.Depth < newHorizon {
		if n.IsDepthLimited() {
			n.resetForHorizonRaise()
		}
	} else if n.IsDepthLimited() {
		// Already marked at a smaller horizon and still at or beyond the new one:
		// re-assert for clarity: (pn, dn) are already correct, nothing to change.
		n.isDepthLimited.Store(true)
		n.depthCutoff.Store(true)
	}

	if children, ok := n.Children(); ok {
		for _, c := range children {
			t.clearPass(c.Node, newHorizon, visited)
		}
	}
}

func (t *Tree) recomputePass(n *Node, visited map[*Node]bool) {
	if visited[n] {
		return
	}
	visited[n] = true

	children, ok := n.Children()
	if !ok {
		return
	}
	for _, c := range children {
		t.recomputePass(c.Node, visited)
	}
	if n.Recompute() {
		maybeStore(t.TT, n)
	}
}

// BestMove extracts the first move on a shortest proven winning line, per spec.md
// 4.5's best-move extraction: among children with pn=0 and 1+child.winLen ==
// root.winLen, the one minimising (winLen, move); failing that (root proven via a
// unit path), any proven child minimising (winLen, move). Reports false if the root
// is not proven or has no expanded children.
func (t *Tree) BestMove() (game.Move, bool) {
	if t.Root.PN() != 0 {
		return 0, false
	}
	children, ok := t.Root.Children()
	if !ok || len(children) == 0 {
		return 0, false
	}

	rootWinLen := t.Root.WinLen()

	var strict, any *Child
	for i := range children {
		c := &children[i]
		if c.Node.PN() != 0 {
			continue
		}
		if any == nil || better(c, any) {
			any = c
		}
		if 1+c.Node.WinLen() == rootWinLen {
			if strict == nil || better(c, strict) {
				strict = c
			}
		}
	}
	if strict != nil {
		return strict.Move, true
	}
	if any != nil {
		return any.Move, true
	}
	return 0, false
}

// better reports whether a sorts before b under (winLen, move).
func better(a, b *Child) bool {
	if a.Node.WinLen() != b.Node.WinLen() {
		return a.Node.WinLen() < b.Node.WinLen()
	}
	return a.Move < b.Move
}
