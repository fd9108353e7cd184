package pns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/game"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

func TestWorker_SelectChildPrefersLowerEffectivePN(t *testing.T) {
	root := NewNode(board.P1, 0, 0) // OR node
	cheap := NewNode(board.P2, 1, 1)
	cheap.pn.Store(2)
	costly := NewNode(board.P2, 1, 2)
	costly.pn.Store(9)

	w := &Worker{}
	best := w.selectChild(root, []Child{{Move: 1, Node: costly}, {Move: 2, Node: cheap}})
	assert.Equal(t, game.Move(2), best.Move)
}

func TestWorker_SelectChildAccountsForVirtualPressure(t *testing.T) {
	root := NewNode(board.P1, 0, 0) // OR node
	a := NewNode(board.P2, 1, 1)
	a.pn.Store(2)
	a.virtualPN.Store(10) // under heavy exploration already
	b := NewNode(board.P2, 1, 2)
	b.pn.Store(3)

	w := &Worker{}
	best := w.selectChild(root, []Child{{Move: 1, Node: a}, {Move: 2, Node: b}})
	assert.Equal(t, game.Move(2), best.Move, "virtual pressure should steer selection off the busy child")
}

func TestWorker_SelectChildTiebreaksOnShorterWinLen(t *testing.T) {
	root := NewNode(board.P2, 0, 0) // AND node
	a := NewNode(board.P1, 1, 1)
	a.dn.Store(5)
	a.winLen.Store(6)
	b := NewNode(board.P1, 1, 2)
	b.dn.Store(5)
	b.winLen.Store(2)

	w := &Worker{}
	best := w.selectChild(root, []Child{{Move: 1, Node: a}, {Move: 2, Node: b}})
	assert.Equal(t, game.Move(2), best.Move)
}

func TestWorker_DecisiveOR(t *testing.T) {
	proven := NewNode(board.P2, 1, 1)
	proven.pn.Store(0)
	unresolved := NewNode(board.P2, 1, 2)

	assert.True(t, decisive(board.P1, proven))
	assert.False(t, decisive(board.P1, unresolved))
}

func TestWorker_DecisiveAND(t *testing.T) {
	disproven := NewNode(board.P1, 1, 1)
	disproven.dn.Store(0)
	unresolved := NewNode(board.P1, 1, 2)

	assert.True(t, decisive(board.P2, disproven))
	assert.False(t, decisive(board.P2, unresolved))
}

func TestWorker_IterateResolvesImmediateWin(t *testing.T) {
	n, k := 5, 4
	zt := zobrist.NewTable(n, 1)
	stones := map[int]board.Player{
		board.Coord{Row: 0, Col: 0}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 1}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 2}.Index(n): board.P1,
	}
	state, err := game.NewState(n, k, zt, game.DefaultEvaluation(), stones, board.P1)
	require.NoError(t, err)

	tree := NewTree(state, 1, false, nil, nil)
	counters := &Counters{}
	w := NewWorker(0, tree, state, counters)

	for i := 0; i < 4 && !tree.Root.IsResolved(); i++ {
		w.iterate()
	}

	require.True(t, tree.Root.IsResolved())
	assert.Equal(t, uint64(0), tree.Root.PN())
	move, ok := tree.BestMove()
	require.True(t, ok)
	assert.Equal(t, game.Move(board.Coord{Row: 0, Col: 3}.Index(n)), move)
}

func TestWorker_IterateReleasesVirtualPressureOnCompletion(t *testing.T) {
	n, k := 5, 4
	zt := zobrist.NewTable(n, 1)
	state, err := game.NewState(n, k, zt, game.DefaultEvaluation(), nil, board.P1)
	require.NoError(t, err)

	tree := NewTree(state, 2, false, nil, nil)
	counters := &Counters{}
	w := NewWorker(0, tree, state, counters)

	w.iterate()

	// Every node's virtual pressure must return to zero once a traversal fully
	// unwinds (spec.md 5's virtual-loss discipline).
	children, ok := tree.Root.Children()
	require.True(t, ok)
	for _, c := range children {
		assert.Equal(t, uint64(0), c.Node.virtualPN.Load())
		assert.Equal(t, uint64(0), c.Node.virtualDN.Load())
	}
}

func TestWorker_RunStopsOnResolvedRoot(t *testing.T) {
	n, k := 5, 4
	zt := zobrist.NewTable(n, 1)
	stones := map[int]board.Player{
		board.Coord{Row: 0, Col: 0}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 1}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 2}.Index(n): board.P1,
	}
	state, err := game.NewState(n, k, zt, game.DefaultEvaluation(), stones, board.P1)
	require.NoError(t, err)

	tree := NewTree(state, 1, false, nil, nil)
	w := NewWorker(0, tree, state, &Counters{})

	w.Run(context.Background(), func() bool { return false })
	assert.True(t, tree.Root.IsResolved())
}

func TestWorker_ExpandMarksNoLegalMoveAsLossForSideToMove(t *testing.T) {
	n, k := 3, 3
	zt := zobrist.NewTable(n, 1)

	// A full, genuinely drawn 3x3 board (no row/column/diagonal for either player):
	//   P1 P2 P1
	//   P1 P2 P2
	//   P2 P1 P1
	stones := map[int]board.Player{
		0: board.P1, 1: board.P2, 2: board.P1,
		3: board.P1, 4: board.P2, 5: board.P2,
		6: board.P2, 7: board.P1, 8: board.P1,
	}
	state, err := game.NewState(n, k, zt, game.DefaultEvaluation(), stones, board.P2)
	require.NoError(t, err)
	require.Empty(t, state.LegalMoves(board.P2, nil))

	tree := &Tree{TT: NewTranspositionTable(), Nodes: NewNodeTable()}
	tree.horizon.Store(10)
	node := NewNode(board.P2, 1, state.CanonicalHash())

	w := NewWorker(0, tree, state, &Counters{})
	w.expand(node)

	assert.True(t, node.IsResolved())
	assert.Equal(t, uint64(0), node.PN()) // AND node, no moves: a loss for P2 is a win for P1 -> proven
	children, ok := node.Children()
	assert.True(t, ok)
	assert.Empty(t, children)

	e, hit := tree.TT.Get(state.CanonicalHash(), board.P2)
	assert.True(t, hit)
	assert.Equal(t, uint64(0), e.PN)
}
