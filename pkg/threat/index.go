package threat

import "github.com/herohde/pnsolve/pkg/board"

// Index enumerates every length-K window once and maintains per-window p1/p2/empty
// counts plus a bucketed inverted index keyed by (player, own-count, opp-count), so
// that "does any window have pattern X" is an O(1) bucket-head check instead of a
// scan over all windows.
type Index struct {
	n, k int

	windows []*Window
	byCell  [][]*Window     // cell index -> windows passing through it
	buckets [2][]bucketList // [perspective][own*(k+1)+opp] -> bucket
}

// perspective 0 = P1's own/opp view, perspective 1 = P2's own/opp view.
func perspIndex(p board.Player) int {
	if p == board.P1 {
		return 0
	}
	return 1
}

// NewIndex builds the threat index for an n*n board with win length k.
func NewIndex(n, k int) *Index {
	idx := &Index{
		n:       n,
		k:       k,
		windows: enumerateWindows(n, k),
		byCell:  make([][]*Window, n*n),
	}
	for p := 0; p < 2; p++ {
		idx.buckets[p] = make([]bucketList, (k+1)*(k+1))
	}

	for _, w := range idx.windows {
		for _, cell := range w.Cells {
			idx.byCell[cell] = append(idx.byCell[cell], w)
		}
		idx.linkInitial(w)
	}
	return idx
}

func bucketSlot(k, own, opp int) int {
	return own*(k+1) + opp
}

func (idx *Index) linkInitial(w *Window) {
	// Empty window: P1 perspective (own=0,opp=0), P2 perspective (own=0,opp=0).
	idx.buckets[0][bucketSlot(idx.k, w.P1Count, w.P2Count)].pushFront(w, 0)
	idx.buckets[1][bucketSlot(idx.k, w.P2Count, w.P1Count)].pushFront(w, 1)
}

// Windows returns all windows, for iteration/testing.
func (idx *Index) Windows() []*Window {
	return idx.windows
}

// WindowsThroughCell returns the windows that include the given cell.
func (idx *Index) WindowsThroughCell(cell int) []*Window {
	return idx.byCell[cell]
}

// UpdateOnMove records that player p just placed a stone at cell, mutating every
// window through cell: unlink from both current buckets, update counts and the
// empty-cell set, relink into the new buckets. O(windows through cell).
func (idx *Index) UpdateOnMove(cell int, p board.Player) {
	for _, w := range idx.byCell[cell] {
		idx.unlink(w)

		delete(w.empty, cell)
		w.EmptyCount--
		if p == board.P1 {
			w.P1Count++
		} else {
			w.P2Count++
		}

		idx.relink(w)
	}
}

// UpdateOnUndo reverses UpdateOnMove for the same (cell, p).
func (idx *Index) UpdateOnUndo(cell int, p board.Player) {
	for _, w := range idx.byCell[cell] {
		idx.unlink(w)

		w.empty[cell] = true
		w.EmptyCount++
		if p == board.P1 {
			w.P1Count--
		} else {
			w.P2Count--
		}

		idx.relink(w)
	}
}

func (idx *Index) unlink(w *Window) {
	idx.buckets[0][bucketSlot(idx.k, w.P1Count, w.P2Count)].remove(w, 0)
	idx.buckets[1][bucketSlot(idx.k, w.P2Count, w.P1Count)].remove(w, 1)
}

func (idx *Index) relink(w *Window) {
	idx.buckets[0][bucketSlot(idx.k, w.P1Count, w.P2Count)].pushFront(w, 0)
	idx.buckets[1][bucketSlot(idx.k, w.P2Count, w.P1Count)].pushFront(w, 1)
}

// PatternWindows returns the windows in the bucket (player, own, opp), appended to
// dst. Used by both move scoring and forcing-move detection.
func (idx *Index) PatternWindows(p board.Player, own, opp int, dst []*Window) []*Window {
	persp := perspIndex(p)
	return idx.buckets[persp][bucketSlot(idx.k, own, opp)].iterate(persp, dst)
}

// HasPattern reports whether any window is currently in bucket (player, own, opp),
// without materialising the list. O(1).
func (idx *Index) HasPattern(p board.Player, own, opp int) bool {
	persp := perspIndex(p)
	return idx.buckets[persp][bucketSlot(idx.k, own, opp)].head != nil
}

// Clone returns an independent deep copy: every window's counts and empty-cell set
// are copied, and bucket/cell linkage is rebuilt over the copies. Used to give each
// search worker its own mutable threat index over an otherwise shared position.
func (idx *Index) Clone() *Index {
	out := &Index{
		n:       idx.n,
		k:       idx.k,
		windows: make([]*Window, len(idx.windows)),
		byCell:  make([][]*Window, len(idx.byCell)),
	}
	for p := 0; p < 2; p++ {
		out.buckets[p] = make([]bucketList, len(idx.buckets[p]))
	}

	old2new := make(map[*Window]*Window, len(idx.windows))
	for i, w := range idx.windows {
		nw := &Window{
			Cells:      w.Cells, // immutable, safe to share
			P1Count:    w.P1Count,
			P2Count:    w.P2Count,
			EmptyCount: w.EmptyCount,
			empty:      make(map[int]bool, len(w.empty)),
		}
		for c := range w.empty {
			nw.empty[c] = true
		}
		out.windows[i] = nw
		old2new[w] = nw
	}

	for cell, ws := range idx.byCell {
		if len(ws) == 0 {
			continue
		}
		nws := make([]*Window, len(ws))
		for i, w := range ws {
			nws[i] = old2new[w]
		}
		out.byCell[cell] = nws
	}

	for p := 0; p < 2; p++ {
		for slot, b := range idx.buckets[p] {
			for w := b.head; w != nil; w = w.node[p].next {
				out.buckets[p][slot].pushFront(old2new[w], p)
			}
		}
	}
	return out
}
