package board

// Dilation masks and shifts follow the same idiom as a fixed 8x8 chess bitboard's
// PawnCaptureboard/KingAttackboard: before shifting across a row boundary, clear the
// column that would wrap (e.g. PawnCaptureboard masks out FileH/FileA before shifting
// by 9/7). Here the board is N-wide instead of fixed-8-wide, so the column masks and
// shift amounts (1, N-1, N, N+1) are computed per board size instead of hardcoded.

// Geometry precomputes the masks and scratch buffers needed for Dilate on a given
// board size, so hot-path calls allocate nothing.
type Geometry struct {
	n          int
	noRight    Bitboard // cleared before any shift that moves a cell rightward (col == n-1)
	noLeft     Bitboard // cleared before any shift that moves a cell leftward (col == 0)
	tmp1, tmp2 Bitboard // scratch, reused by Dilate
}

// NewGeometry precomputes dilation masks for an n*n board.
func NewGeometry(n int) *Geometry {
	g := &Geometry{
		n:       n,
		noRight: NewBitboard(n),
		noLeft:  NewBitboard(n),
		tmp1:    NewBitboard(n),
		tmp2:    NewBitboard(n),
	}
	for r := 0; r < n; r++ {
		g.noRight.Set(r*n + (n - 1))
		g.noLeft.Set(r * n)
	}
	// noRight/noLeft are used as "columns to strip", so invert: Dilate ANDs the
	// source with the complement before shifting across that column.
	for i := range g.noRight {
		g.noRight[i] = ^g.noRight[i]
		g.noLeft[i] = ^g.noLeft[i]
	}
	maskTail(g.noRight, n)
	maskTail(g.noLeft, n)
	return g
}

func (g *Geometry) N() int { return g.n }

// shiftLeft computes dst = src << k (bit index increases), dropping overflow.
func shiftLeft(dst, src Bitboard, k int) {
	wordShift := k / wordBits
	bitShift := uint(k % wordBits)
	for i := len(dst) - 1; i >= 0; i-- {
		var v uint64
		if si := i - wordShift; si >= 0 {
			v = src[si] << bitShift
			if bitShift != 0 && si-1 >= 0 {
				v |= src[si-1] >> (wordBits - bitShift)
			}
		}
		dst[i] = v
	}
}

// shiftRight computes dst = src >> k (bit index decreases), dropping underflow.
func shiftRight(dst, src Bitboard, k int) {
	wordShift := k / wordBits
	bitShift := uint(k % wordBits)
	for i := 0; i < len(dst); i++ {
		var v uint64
		if si := i + wordShift; si < len(src) {
			v = src[si] >> bitShift
			if bitShift != 0 && si+1 < len(src) {
				v |= src[si+1] << (wordBits - bitShift)
			}
		}
		dst[i] = v
	}
}

// Dilate writes into dst the Moore-neighborhood dilation of s: a cell is set in dst
// iff any of its eight neighbours is set in s. dst must be sized like s and must not
// alias s. Uses the Geometry's scratch buffers, so it is not safe for concurrent use
// on the same Geometry.
func (g *Geometry) Dilate(dst, s Bitboard) {
	n := g.n
	for i := range dst {
		dst[i] = 0
	}

	// Horizontal neighbours (+-1): strip the column that would wrap before shifting.
	shiftLeft(g.tmp1, maskedInto(g.tmp2, s, g.noRight), 1)
	dst.Or(g.tmp1)
	shiftRight(g.tmp1, maskedInto(g.tmp2, s, g.noLeft), 1)
	dst.Or(g.tmp1)

	// Vertical neighbours (+-N): no column wrap possible.
	shiftLeft(g.tmp1, s, n)
	dst.Or(g.tmp1)
	shiftRight(g.tmp1, s, n)
	dst.Or(g.tmp1)

	// Diagonal neighbours (+-(N-1), +-(N+1)).
	shiftLeft(g.tmp1, maskedInto(g.tmp2, s, g.noLeft), n-1)
	dst.Or(g.tmp1)
	shiftRight(g.tmp1, maskedInto(g.tmp2, s, g.noRight), n-1)
	dst.Or(g.tmp1)

	shiftLeft(g.tmp1, maskedInto(g.tmp2, s, g.noRight), n+1)
	dst.Or(g.tmp1)
	shiftRight(g.tmp1, maskedInto(g.tmp2, s, g.noLeft), n+1)
	dst.Or(g.tmp1)

	maskTail(dst, n)
}

// Neighbours returns, via dst, dilate(s) &^ s: the empty or opponent neighbour cells
// of s, excluding s itself.
func (g *Geometry) Neighbours(dst, s Bitboard) {
	g.Dilate(dst, s)
	dst.AndNot(s)
}

// maskedInto writes dst = src & mask and returns dst, as a scratch helper for Dilate.
func maskedInto(dst, src, mask Bitboard) Bitboard {
	for i := range dst {
		dst[i] = src[i] & mask[i]
	}
	return dst
}
