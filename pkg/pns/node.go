// Package pns implements the shared proof-number search tree: atomic nodes with
// virtual loss, a write-once children cell, and the sharded transposition and node
// tables the tree publishes under concurrent workers.
package pns

import (
	"sync/atomic"

	uatomic "go.uber.org/atomic"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/game"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

// Infinity represents an unknown/unbounded proof or disproof number. All arithmetic
// on pn/dn saturates at Infinity rather than wrapping, so "MAX + x == MAX".
const Infinity = ^uint64(0)

// addSat64 adds a and b, saturating at Infinity instead of overflowing.
func addSat64(a, b uint64) uint64 {
	if a == Infinity || b == Infinity {
		return Infinity
	}
	sum := a + b
	if sum < a { // overflow
		return Infinity
	}
	return sum
}

// Child is a single edge in the tree: the move played and the node it leads to.
// Children are shared via the node table, so the same *Node may be reachable through
// more than one parent.
type Child struct {
	Move game.Move
	Node *Node
}

// Node is a single proof-number search node, safe for concurrent observation. Every
// counter is an independent atomic: the (pn, dn, winLen) triple is not jointly
// atomic, which is acceptable per the concurrency model -- selection is a heuristic
// and back-propagation always recomputes from children.
type Node struct {
	Player board.Player
	Depth  int
	Hash   zobrist.Hash

	pn, dn             uatomic.Uint64
	virtualPN, virtualDN uatomic.Uint64
	winLen             uatomic.Uint64

	isDepthLimited uatomic.Bool
	depthCutoff    uatomic.Bool

	// children is a write-once cell: nil means "not yet expanded". A non-nil,
	// possibly-empty slice pointer means expansion has happened (or the node is a
	// true terminal with no edges at all). Published exactly once via CAS.
	children atomic.Pointer[[]Child]
}

// NewNode returns a freshly-created node with pn=dn=1 and winLen unknown, per spec.
func NewNode(player board.Player, depth int, hash zobrist.Hash) *Node {
	n := &Node{Player: player, Depth: depth, Hash: hash}
	n.pn.Store(1)
	n.dn.Store(1)
	n.winLen.Store(Infinity)
	return n
}

// PN returns the current proof number.
func (n *Node) PN() uint64 { return n.pn.Load() }

// DN returns the current disproof number.
func (n *Node) DN() uint64 { return n.dn.Load() }

// WinLen returns the current shortest proven winning path length, or Infinity.
func (n *Node) WinLen() uint64 { return n.winLen.Load() }

// IsDepthLimited reports whether this node sits at or beyond the current horizon.
func (n *Node) IsDepthLimited() bool { return n.isDepthLimited.Load() }

// IsResolved reports whether the node is proven (pn=0) or disproven (dn=0).
func (n *Node) IsResolved() bool {
	return n.pn.Load() == 0 || n.dn.Load() == 0
}

// Children returns the published child list and whether expansion has happened.
func (n *Node) Children() ([]Child, bool) {
	p := n.children.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// publishChildren installs the children list exactly once. Returns false if another
// worker already published first (the caller's list is then discarded).
func (n *Node) publishChildren(children []Child) bool {
	if children == nil {
		children = []Child{}
	}
	return n.children.CompareAndSwap(nil, &children)
}

// resetForHorizonRaise restores a depth-limited node to its freshly-created state so
// it can be genuinely expanded once the horizon grows past its depth. Only valid for
// nodes that were never given real children (depth-cutoff nodes never publish a
// children list, exactly so this reset stays consistent with the write-once rule).
func (n *Node) resetForHorizonRaise() {
	n.isDepthLimited.Store(false)
	n.depthCutoff.Store(false)
	n.pn.Store(1)
	n.dn.Store(1)
	n.winLen.Store(Infinity)
}

// markDepthLimited marks the node as sitting at or beyond the horizon and sets its
// terminal (pn, dn) under the configured cutoff policy (spec.md open question):
// pessimistic (default) treats the cutoff as a loss for the side to move
// (pn=Infinity, dn=0); optimistic treats it as unknown (pn=Infinity, dn=Infinity).
func (n *Node) markDepthLimited(optimistic bool) {
	n.isDepthLimited.Store(true)
	n.depthCutoff.Store(true)
	n.pn.Store(Infinity)
	if optimistic {
		n.dn.Store(Infinity)
	} else {
		n.dn.Store(0)
	}
	n.winLen.Store(Infinity)
}

// markWinLoss marks the node as a true, horizon-invariant terminal in which the side
// to move (n.Player) has definitively lost -- either because the opponent already
// completed a length-K line before this node was reached, or because the side to
// move has no legal move at all (spec.md 4.5: "no legal move at a non-terminal
// position: treated as a loss for the side to move"). An OR node (n.Player == P1)
// is disproven; an AND node is proven. winLen is 0: no further plies are needed to
// recognise this node as settled.
func (n *Node) markWinLoss() {
	if n.Player == board.P1 {
		n.pn.Store(Infinity)
		n.dn.Store(0)
	} else {
		n.pn.Store(0)
		n.dn.Store(Infinity)
	}
	n.winLen.Store(0)
}

// adoptTT installs a resolved value read from the transposition table. TT entries
// are only ever stored for resolved, non-depth-limited nodes, so adopting one is
// horizon-invariant: this node need never be expanded again.
func (n *Node) adoptTT(e TTEntry) {
	n.pn.Store(e.PN)
	n.dn.Store(e.DN)
	n.winLen.Store(e.WinLen)
}

// Recompute applies the OR/AND update rule over the node's current children and
// reports whether (pn, dn, winLen) changed. A no-op for unexpanded nodes (nothing to
// recompute from) and for true terminals (an empty, but published, children list:
// win/loss and TT-adopted nodes never recombine from children).
func (n *Node) Recompute() bool {
	children, ok := n.Children()
	if !ok || len(children) == 0 {
		return false
	}

	var pn, dn, winLen uint64
	if n.Player.IsOR() {
		pn = Infinity
		dn = 0
		for _, c := range children {
			if v := c.Node.pn.Load(); v < pn {
				pn = v
			}
			dn = addSat64(dn, c.Node.dn.Load())
		}
		winLen = Infinity
		if pn == 0 {
			for _, c := range children {
				if c.Node.pn.Load() == 0 {
					if v := 1 + c.Node.winLen.Load(); v < winLen {
						winLen = v
					}
				}
			}
		}
	} else {
		pn = 0
		dn = Infinity
		for _, c := range children {
			pn = addSat64(pn, c.Node.pn.Load())
			if v := c.Node.dn.Load(); v < dn {
				dn = v
			}
		}
		winLen = Infinity
		if pn == 0 {
			winLen = 0
			for _, c := range children {
				if v := 1 + c.Node.winLen.Load(); v > winLen {
					winLen = v
				}
			}
		}
	}

	oldPN, oldDN, oldWL := n.pn.Load(), n.dn.Load(), n.winLen.Load()
	n.pn.Store(pn)
	n.dn.Store(dn)
	n.winLen.Store(winLen)
	return oldPN != pn || oldDN != dn || oldWL != winLen
}
