package zobrist_test

import (
	"testing"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/zobrist"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalHashInvariantUnderRotation(t *testing.T) {
	n := 5
	tbl := zobrist.NewTable(n, 42)

	stones := map[int]board.Player{
		board.Coord{Row: 0, Col: 0}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 1}.Index(n): board.P1,
		board.Coord{Row: 1, Col: 0}.Index(n): board.P2,
	}

	h1 := tbl.CanonicalHash(stones, board.P1)

	rotated := map[int]board.Player{}
	for idx, p := range stones {
		c := board.CoordFromIndex(idx, n)
		rc := board.Rotate90.Transform(c, n)
		rotated[rc.Index(n)] = p
	}
	h2 := tbl.CanonicalHash(rotated, board.P1)

	assert.Equal(t, h1, h2)
}

func TestCanonicalHashDiffersOnSideToMove(t *testing.T) {
	n := 5
	tbl := zobrist.NewTable(n, 7)

	stones := map[int]board.Player{
		board.Coord{Row: 2, Col: 2}.Index(n): board.P1,
	}

	h1 := tbl.CanonicalHash(stones, board.P1)
	h2 := tbl.CanonicalHash(stones, board.P2)
	assert.NotEqual(t, h1, h2)
}

func TestPlaceIncrementalMatchesFromScratch(t *testing.T) {
	n := 5
	tbl := zobrist.NewTable(n, 99)

	stones := map[int]board.Player{}
	h := tbl.Hash(stones, board.P1)

	idx := board.Coord{Row: 1, Col: 1}.Index(n)
	h = tbl.Place(h, idx, board.P1, board.P2)
	stones[idx] = board.P1

	want := tbl.Hash(stones, board.P2)
	assert.Equal(t, want, h)
}

func TestDeterministicForFixedSeed(t *testing.T) {
	a := zobrist.NewTable(9, 123)
	b := zobrist.NewTable(9, 123)

	idx := board.Coord{Row: 4, Col: 4}.Index(9)
	assert.Equal(t, a.Key(idx, board.P1), b.Key(idx, board.P1))
	assert.Equal(t, a.SideKey(), b.SideKey())
}
