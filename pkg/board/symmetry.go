package board

// Symmetry identifies one of the 8 dihedral transforms of a square board (the
// symmetry group D4: 4 rotations x 2 reflections). Used by the canonical hash to
// minimise over all board orientations.
type Symmetry int

const (
	Identity Symmetry = iota
	Rotate90
	Rotate180
	Rotate270
	FlipHorizontal
	FlipVertical
	FlipDiagonal
	FlipAntiDiagonal
	NumSymmetries
)

// All returns every dihedral symmetry, in a fixed order, for iteration.
func All() [NumSymmetries]Symmetry {
	return [NumSymmetries]Symmetry{
		Identity, Rotate90, Rotate180, Rotate270,
		FlipHorizontal, FlipVertical, FlipDiagonal, FlipAntiDiagonal,
	}
}

// Transform maps c under the symmetry, for an n*n board.
func (s Symmetry) Transform(c Coord, n int) Coord {
	r, col := c.Row, c.Col
	last := n - 1
	switch s {
	case Identity:
		return Coord{r, col}
	case Rotate90:
		return Coord{col, last - r}
	case Rotate180:
		return Coord{last - r, last - col}
	case Rotate270:
		return Coord{last - col, r}
	case FlipHorizontal:
		return Coord{r, last - col}
	case FlipVertical:
		return Coord{last - r, col}
	case FlipDiagonal:
		return Coord{col, r}
	case FlipAntiDiagonal:
		return Coord{last - col, last - r}
	default:
		return c
	}
}
