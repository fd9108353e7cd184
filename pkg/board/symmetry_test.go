package board_test

import (
	"testing"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestSymmetryIsBijective(t *testing.T) {
	n := 7
	for _, s := range board.All() {
		seen := map[board.Coord]bool{}
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				tc := s.Transform(board.Coord{Row: r, Col: c}, n)
				assert.True(t, tc.InBounds(n), "symmetry %v: %v -> %v out of bounds", s, board.Coord{Row: r, Col: c}, tc)
				assert.False(t, seen[tc], "symmetry %v: collision at %v", s, tc)
				seen[tc] = true
			}
		}
	}
}

func TestSymmetryIdentity(t *testing.T) {
	n := 7
	c := board.Coord{Row: 3, Col: 5}
	assert.Equal(t, c, board.Identity.Transform(c, n))
}

func TestSymmetryRotate90FourTimesIsIdentity(t *testing.T) {
	n := 7
	c := board.Coord{Row: 1, Col: 4}
	cur := c
	for i := 0; i < 4; i++ {
		cur = board.Rotate90.Transform(cur, n)
	}
	assert.Equal(t, c, cur)
}

func TestSymmetryCentreFixedUnderAll(t *testing.T) {
	n := 7 // odd side: true centre cell
	centre := board.Coord{Row: 3, Col: 3}
	for _, s := range board.All() {
		assert.Equal(t, centre, s.Transform(centre, n), "symmetry %v should fix centre", s)
	}
}
