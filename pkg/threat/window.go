// Package threat maintains the length-K line-window accounting that makes move
// generation and evaluation cheap enough for proof-number search to be viable.
//
// Each window is created once at construction and never destroyed; its p1/p2/empty
// counts mutate incrementally on every move/undo that touches one of its K cells,
// the same incremental-update discipline the zobrist package uses for the position
// hash (XOR out stale contribution, fold in the new one) applied here to bucket
// membership instead of a hash accumulator.
package threat

import "github.com/herohde/pnsolve/pkg/board"

// Window is an ordered list of K collinear cells (horizontal, vertical, or either
// diagonal direction).
type Window struct {
	Cells []int // board cell indices, in line order

	P1Count, P2Count, EmptyCount int
	empty                        map[int]bool // subset of Cells currently empty

	// bucket list linkage: each window belongs to exactly two buckets at a time,
	// one per player perspective (see Index).
	node [2]listNode
}

func newWindow(cells []int) *Window {
	w := &Window{
		Cells:      cells,
		EmptyCount: len(cells),
		empty:      make(map[int]bool, len(cells)),
	}
	for _, c := range cells {
		w.empty[c] = true
	}
	return w
}

// IsEmpty reports whether cell is currently empty within this window.
func (w *Window) IsEmpty(cell int) bool {
	return w.empty[cell]
}

// EmptyCells returns the currently-empty cells of the window, appended to dst.
func (w *Window) EmptyCells(dst []int) []int {
	for _, c := range w.Cells {
		if w.empty[c] {
			dst = append(dst, c)
		}
	}
	return dst
}

// countFor returns (own, opp) counts from the perspective of player p.
func (w *Window) countFor(p board.Player) (own, opp int) {
	if p == board.P1 {
		return w.P1Count, w.P2Count
	}
	return w.P2Count, w.P1Count
}

// direction enumerates the four line directions a window can run in.
type direction struct {
	dr, dc int
}

var directions = []direction{
	{0, 1},  // horizontal, ->
	{1, 0},  // vertical, v
	{1, 1},  // diagonal, down-right
	{1, -1}, // diagonal, down-left
}

// enumerateWindows returns every length-k window on an n*n board, in the four
// directions, each created exactly once.
func enumerateWindows(n, k int) []*Window {
	var ret []*Window
	for _, d := range directions {
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				endR := r + d.dr*(k-1)
				endC := c + d.dc*(k-1)
				if endR < 0 || endR >= n || endC < 0 || endC >= n {
					continue
				}
				// Canonicalize: only start windows growing in a direction that keeps
				// column non-decreasing-with-row-wraparound avoided i.e. every window
				// is emitted exactly once (no reverse duplicate) by direction choice
				// above (all four directions point "forward", never backward).
				cells := make([]int, k)
				for i := 0; i < k; i++ {
					cells[i] = board.Coord{Row: r + d.dr*i, Col: c + d.dc*i}.Index(n)
				}
				ret = append(ret, newWindow(cells))
			}
		}
	}
	return ret
}
