package pns

import (
	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

// evaluate creates a node for (player, depth, hash) and applies the terminal
// evaluation spec.md 4.5 requires at child-creation time, in priority order:
//
//  1. opponentWon: the player who just moved (the opponent of player) already
//     completed a length-K line -- a true, horizon-invariant terminal. Children
//     are published as empty: this node can never need expansion.
//  2. depth >= horizon: a depth-limited node. pn/dn are set per the configured
//     cutoff policy, but children are left unpublished (nil) so a later horizon
//     raise can reset and genuinely expand this node (see Node.resetForHorizonRaise).
//  3. a transposition-table hit for (canonical hash, player): horizon-invariant by
//     construction (only resolved results are ever stored), so children are
//     published as empty.
//  4. otherwise: a fresh, unresolved node (pn=dn=1), left unexpanded.
//
// skipTT bypasses the TT-adopt branch: used only for the tree root, which must
// always be genuinely expanded so BestMove has real children and a real move to
// extract, even when a prior search already resolved this exact position (spec.md
// section 6's "optional pre-warmed TT and node table" speeds up interior nodes, not
// the root's own move recovery).
func evaluate(tt *TranspositionTable, player board.Player, depth int, hash zobrist.Hash, horizon int, opponentWon, optimisticCutoff bool, skipTT bool) (*Node, bool) {
	n := NewNode(player, depth, hash)

	switch {
	case opponentWon:
		n.markWinLoss()
		n.publishChildren(nil)
	case depth >= horizon:
		n.markDepthLimited(optimisticCutoff)
	case skipTT:
		// leave fresh and unexpanded
	default:
		if e, ok := tt.Get(hash, player); ok {
			n.adoptTT(e)
			n.publishChildren(nil)
			return n, true
		}
	}
	return n, false
}

// maybeStore writes n into the transposition table iff it has just resolved
// (pn=0 or dn=0) and is not depth-limited, per spec.md 4.5's TT-store rule.
func maybeStore(tt *TranspositionTable, n *Node) {
	if n.IsDepthLimited() {
		return
	}
	if n.PN() != 0 && n.DN() != 0 {
		return
	}
	tt.Put(n.Hash, n.Player, TTEntry{PN: n.PN(), DN: n.DN(), WinLen: n.WinLen()})
}
