// Package zobrist computes position hashes for Connect-K boards, including the
// canonical (symmetry-minimum) hash used as the transposition-table key.
package zobrist

import (
	"math/rand"

	"github.com/herohde/pnsolve/pkg/board"
)

// Hash is a position hash. The top bit is always zero (63-bit values), so XOR with
// the side-to-move key never flips sign when the hash is viewed as signed.
type Hash uint64

const signMask = uint64(1) << 63

// Table is a pseudo-randomized table for computing position hashes, analogous to a
// chess ZobristTable but keyed by (cell, player) instead of (square, color, piece),
// since a Connect-K stone has no piece type.
type Table struct {
	n    int
	cell [][2]Hash // [cellIndex][player-1] -> key, player in {P1, P2}
	side Hash
}

// NewTable builds a table for an n*n board from the given seed. Deterministic for a
// fixed seed, as required for reproducible canonical hashing.
func NewTable(n int, seed int64) *Table {
	r := rand.New(rand.NewSource(seed))

	t := &Table{
		n:    n,
		cell: make([][2]Hash, n*n),
	}
	for i := range t.cell {
		t.cell[i][0] = randHash(r)
		t.cell[i][1] = randHash(r)
	}
	t.side = randHash(r)
	return t
}

func randHash(r *rand.Rand) Hash {
	return Hash(r.Uint64() &^ signMask)
}

func (t *Table) playerIndex(p board.Player) int {
	if p == board.P1 {
		return 0
	}
	return 1
}

// Key returns the per-cell, per-player key used by the incremental update in
// Place/Remove below.
func (t *Table) Key(idx int, p board.Player) Hash {
	return t.cell[idx][t.playerIndex(p)]
}

// SideKey returns the side-to-move key, XOR'd in iff it is P2 to move.
func (t *Table) SideKey() Hash {
	return t.side
}

// Hash computes the hash from scratch for the given stone placements and side to move.
func (t *Table) Hash(stones map[int]board.Player, turn board.Player) Hash {
	var h Hash
	for idx, p := range stones {
		h ^= t.Key(idx, p)
	}
	if turn == board.P2 {
		h ^= t.side
	}
	return h
}

// Place returns the hash after placing a stone of player p at cell idx, given the
// hash before the move and the side to move after the move. Incremental: O(1).
func (t *Table) Place(h Hash, idx int, p board.Player, turnAfter board.Player) Hash {
	h ^= t.Key(idx, p)
	h ^= t.side // side-to-move always flips on a move
	return h
}

// Remove is the inverse of Place, used by undo.
func (t *Table) Remove(h Hash, idx int, p board.Player, turnAfter board.Player) Hash {
	return t.Place(h, idx, p, turnAfter) // XOR is its own inverse
}

// CanonicalHash computes the minimum hash over the 8 dihedral transforms of the
// position, with the side-to-move key folded in. stones maps cell index (under the
// *current* coordinate system) to the occupying player.
func (t *Table) CanonicalHash(stones map[int]board.Player, turn board.Player) Hash {
	var acc [board.NumSymmetries]Hash
	for idx, p := range stones {
		c := board.CoordFromIndex(idx, t.n)
		for _, s := range board.All() {
			tc := s.Transform(c, t.n)
			acc[s] ^= t.Key(tc.Index(t.n), p)
		}
	}

	sideBit := Hash(0)
	if turn == board.P2 {
		sideBit = t.side
	}

	min := acc[board.Identity] ^ sideBit
	for _, s := range board.All() {
		if v := acc[s] ^ sideBit; v < min {
			min = v
		}
	}
	return min
}
