package game

import "github.com/herohde/pnsolve/pkg/board"

// Move is a single stone placement, identified by its board cell index.
type Move int

// String renders the move as a coordinate, given the board size used to decode it.
func (m Move) String(n int) string {
	return board.CoordFromIndex(int(m), n).String()
}
