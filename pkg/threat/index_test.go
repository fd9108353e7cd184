package threat_test

import (
	"testing"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/threat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForceCounts recomputes (p1, p2, empty) for every window from scratch given a
// cell->player occupancy map, used to check the incrementally-maintained Index
// against a from-scratch recomputation.
func bruteForceCounts(idx *threat.Index, occ map[int]board.Player) map[*threat.Window][3]int {
	out := make(map[*threat.Window][3]int)
	for _, w := range idx.Windows() {
		var p1, p2, empty int
		for _, c := range w.Cells {
			switch occ[c] {
			case board.P1:
				p1++
			case board.P2:
				p2++
			default:
				empty++
			}
		}
		out[w] = [3]int{p1, p2, empty}
	}
	return out
}

func TestWindowCountAndInvariant(t *testing.T) {
	n, k := 5, 4
	idx := threat.NewIndex(n, k)

	require.NotEmpty(t, idx.Windows())
	for _, w := range idx.Windows() {
		require.Len(t, w.Cells, k)
		assert.Equal(t, k, w.P1Count+w.P2Count+w.EmptyCount)
		assert.Equal(t, k, w.EmptyCount) // freshly constructed: all empty
	}
}

func TestWindowsThroughCellNonEmpty(t *testing.T) {
	idx := threat.NewIndex(9, 5)
	centre := board.Coord{Row: 4, Col: 4}.Index(9)
	assert.NotEmpty(t, idx.WindowsThroughCell(centre))

	corner := board.Coord{Row: 0, Col: 0}.Index(9)
	assert.NotEmpty(t, idx.WindowsThroughCell(corner))
}

func TestUpdateOnMoveMatchesBruteForce(t *testing.T) {
	n, k := 5, 4
	idx := threat.NewIndex(n, k)

	occ := map[int]board.Player{}
	moves := []struct {
		cell int
		p    board.Player
	}{
		{board.Coord{Row: 2, Col: 2}.Index(n), board.P1},
		{board.Coord{Row: 2, Col: 3}.Index(n), board.P2},
		{board.Coord{Row: 1, Col: 2}.Index(n), board.P1},
		{board.Coord{Row: 0, Col: 0}.Index(n), board.P2},
	}

	for _, m := range moves {
		idx.UpdateOnMove(m.cell, m.p)
		occ[m.cell] = m.p
	}

	want := bruteForceCounts(idx, occ)
	for _, w := range idx.Windows() {
		exp := want[w]
		assert.Equal(t, exp[0], w.P1Count, "p1 count mismatch for window %v", w.Cells)
		assert.Equal(t, exp[1], w.P2Count, "p2 count mismatch for window %v", w.Cells)
		assert.Equal(t, exp[2], w.EmptyCount, "empty count mismatch for window %v", w.Cells)
	}
}

func TestUpdateOnUndoRestoresState(t *testing.T) {
	n, k := 7, 5
	idx := threat.NewIndex(n, k)

	before := bruteForceCounts(idx, map[int]board.Player{})

	cell := board.Coord{Row: 3, Col: 3}.Index(n)
	idx.UpdateOnMove(cell, board.P1)
	idx.UpdateOnUndo(cell, board.P1)

	after := bruteForceCounts(idx, map[int]board.Player{})
	for _, w := range idx.Windows() {
		assert.Equal(t, before[w], after[w])
		assert.True(t, w.IsEmpty(cell))
	}
}

func TestHasPatternAndPatternWindows(t *testing.T) {
	n, k := 5, 4
	idx := threat.NewIndex(n, k)

	// Before any move: every window is (own=0, opp=0) from both perspectives.
	assert.True(t, idx.HasPattern(board.P1, 0, 0))
	assert.False(t, idx.HasPattern(board.P1, 1, 0))

	cell := board.Coord{Row: 2, Col: 2}.Index(n)
	idx.UpdateOnMove(cell, board.P1)

	assert.True(t, idx.HasPattern(board.P1, 1, 0))
	windows := idx.PatternWindows(board.P1, 1, 0, nil)
	assert.NotEmpty(t, windows)
	for _, w := range windows {
		own, opp := 0, 0
		for _, c := range w.Cells {
			if c == cell {
				own++
			}
		}
		_ = opp
		assert.GreaterOrEqual(t, own, 1)
	}

	// From P2's perspective the same window is now (own=0, opp=1).
	assert.True(t, idx.HasPattern(board.P2, 0, 1))
}

func TestEmptyCellsCardinalityMatchesEmptyCount(t *testing.T) {
	n, k := 5, 4
	idx := threat.NewIndex(n, k)

	idx.UpdateOnMove(board.Coord{Row: 2, Col: 2}.Index(n), board.P1)
	idx.UpdateOnMove(board.Coord{Row: 2, Col: 3}.Index(n), board.P2)

	for _, w := range idx.Windows() {
		empties := w.EmptyCells(nil)
		assert.Len(t, empties, w.EmptyCount)
	}
}
