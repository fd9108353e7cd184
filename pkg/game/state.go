// Package game composes the bitboard, threat index and Zobrist hash into a single
// mutable position, and implements move generation and heuristic scoring.
package game

import (
	"fmt"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/threat"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

const maxBoardSize = 19

// historyEntry records what a move changed, so UndoMove can reverse it exactly:
// the candidate cells it introduced and whether the played cell itself was already
// a candidate before the move.
type historyEntry struct {
	move         Move
	player       board.Player
	introduced   []int
	wasCandidate bool
	hashBefore   zobrist.Hash
}

// State is a mutable Connect-K position: board + threat index + Zobrist hash +
// candidate-move set + move history, per spec. Not safe for concurrent use; each
// search worker owns a Clone.
type State struct {
	n, k int

	planes [2]board.Bitboard // [planeIndex(player)]
	geom   *board.Geometry
	idx    *threat.Index
	zt     *zobrist.Table
	eval   *Evaluation

	turn       board.Player
	hash       zobrist.Hash
	candidates board.Bitboard

	history []historyEntry

	scratch []int
}

func planeIndex(p board.Player) int {
	if p == board.P1 {
		return 0
	}
	return 1
}

// NewState constructs a position from an initial stone placement (cell index ->
// player) and the side to move. Validates board dimensions, win length and
// stone-count parity; returns an error rather than panicking, matching the rest of
// the module's constructors.
func NewState(n, k int, zt *zobrist.Table, eval *Evaluation, stones map[int]board.Player, turn board.Player) (*State, error) {
	if n <= 0 || n > maxBoardSize {
		return nil, fmt.Errorf("game: invalid board size %d", n)
	}
	if k <= 0 || k > n {
		return nil, fmt.Errorf("game: invalid win length %d for board size %d", k, n)
	}
	if turn != board.P1 && turn != board.P2 {
		return nil, fmt.Errorf("game: invalid side to move %v", turn)
	}

	var p1, p2 int
	for idx, p := range stones {
		if idx < 0 || idx >= n*n {
			return nil, fmt.Errorf("game: stone at out-of-bounds cell %d", idx)
		}
		switch p {
		case board.P1:
			p1++
		case board.P2:
			p2++
		default:
			return nil, fmt.Errorf("game: invalid stone player at cell %d", idx)
		}
	}
	if p1 != p2 && p1 != p2+1 {
		return nil, fmt.Errorf("game: invalid stone count parity: p1=%d p2=%d", p1, p2)
	}

	s := &State{
		n:          n,
		k:          k,
		geom:       board.NewGeometry(n),
		idx:        threat.NewIndex(n, k),
		zt:         zt,
		eval:       eval,
		turn:       turn,
		candidates: board.NewBitboard(n),
	}
	s.planes[0] = board.NewBitboard(n)
	s.planes[1] = board.NewBitboard(n)

	for idx, p := range stones {
		s.planes[planeIndex(p)].Set(idx)
		s.idx.UpdateOnMove(idx, p)
	}
	s.hash = s.zt.Hash(stones, turn)

	if len(stones) == 0 {
		centre := board.Coord{Row: n / 2, Col: n / 2}.Index(n)
		s.candidates.Set(centre)
	} else {
		s.recomputeCandidates()
	}
	return s, nil
}

// recomputeCandidates rebuilds the candidate set from scratch (occupied dilation
// minus occupied). Only used at construction time for a non-empty initial board;
// MakeMove/UndoMove maintain the set incrementally afterward.
func (s *State) recomputeCandidates() {
	occupied := board.NewBitboard(s.n)
	occupied.Or(s.planes[0])
	occupied.Or(s.planes[1])

	s.candidates = board.NewBitboard(s.n)
	s.geom.Neighbours(s.candidates, occupied)
}

func (s *State) N() int                  { return s.n }
func (s *State) K() int                  { return s.k }
func (s *State) Turn() board.Player      { return s.turn }
func (s *State) Hash() zobrist.Hash      { return s.hash }
func (s *State) Evaluation() *Evaluation { return s.eval }

// CanonicalHash computes the symmetry-minimum hash of the current position, used as
// the transposition-table key. The node table is keyed by Hash instead.
func (s *State) CanonicalHash() zobrist.Hash {
	stones := make(map[int]board.Player, s.planes[0].PopCount()+s.planes[1].PopCount())
	s.scratch = s.planes[0].Cells(s.scratch[:0])
	for _, c := range s.scratch {
		stones[c] = board.P1
	}
	s.scratch = s.planes[1].Cells(s.scratch[:0])
	for _, c := range s.scratch {
		stones[c] = board.P2
	}
	return s.zt.CanonicalHash(stones, s.turn)
}

// CheckWin reports whether player p currently has a completed length-k line.
func (s *State) CheckWin(p board.Player) bool {
	return s.idx.HasPattern(p, s.k, 0)
}

// MakeMove places a stone for the side to move at m's cell, updates the threat
// index, candidate set and hash incrementally, and flips the side to move.
func (s *State) MakeMove(m Move) error {
	idx := int(m)
	if idx < 0 || idx >= s.n*s.n {
		return fmt.Errorf("game: move %v out of bounds", m)
	}
	if s.planes[0].IsSet(idx) || s.planes[1].IsSet(idx) {
		return fmt.Errorf("game: cell %v already occupied", m)
	}

	p := s.turn
	wasCandidate := s.candidates.IsSet(idx)
	hashBefore := s.hash

	s.planes[planeIndex(p)].Set(idx)
	s.idx.UpdateOnMove(idx, p)

	introduced := s.introduceCandidates(idx)
	s.candidates.Clear(idx)

	next := p.Opponent()
	s.hash = s.zt.Place(s.hash, idx, p, next)
	s.turn = next

	s.history = append(s.history, historyEntry{
		move:         m,
		player:       p,
		introduced:   introduced,
		wasCandidate: wasCandidate,
		hashBefore:   hashBefore,
	})
	return nil
}

// UndoMove reverses the most recent MakeMove, restoring the candidate set, threat
// index, hash and side to move exactly.
func (s *State) UndoMove() (Move, error) {
	if len(s.history) == 0 {
		return 0, fmt.Errorf("game: no move to undo")
	}
	h := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	idx := int(h.move)
	s.planes[planeIndex(h.player)].Clear(idx)
	s.idx.UpdateOnUndo(idx, h.player)

	for _, c := range h.introduced {
		s.candidates.Clear(c)
	}
	if h.wasCandidate {
		s.candidates.Set(idx)
	}

	s.turn = h.player
	s.hash = h.hashBefore

	return h.move, nil
}

// introduceCandidates adds the empty, not-yet-candidate Moore-neighbors of idx to
// the candidate set and returns the cells newly introduced, for UndoMove to revert.
func (s *State) introduceCandidates(idx int) []int {
	s.scratch = board.Moore8(s.n, idx, s.scratch[:0])

	var introduced []int
	for _, c := range s.scratch {
		if s.candidates.IsSet(c) {
			continue
		}
		if s.planes[0].IsSet(c) || s.planes[1].IsSet(c) {
			continue
		}
		s.candidates.Set(c)
		introduced = append(introduced, c)
	}
	return introduced
}

// LegalMoves returns player p's moves, applying the forcing-move shortcuts: the
// immediate-win cells (unsorted), else the forced blocks, else all candidates; blocks
// and candidates are in decreasing heuristic order.
func (s *State) LegalMoves(p board.Player, dst []Move) []Move {
	if cells := s.forcingCells(p, s.k-1, 0, nil); len(cells) > 0 {
		return appendUnsorted(dst, cells)
	}
	opp := p.Opponent()
	if cells := s.forcingCells(opp, s.k-1, 0, nil); len(cells) > 0 {
		return s.sortByScore(p, cells, dst)
	}

	s.scratch = s.candidates.Cells(s.scratch[:0])
	return s.sortByScore(p, s.scratch, dst)
}

// forcingCells returns the distinct empty cells of every window currently in bucket
// (player, own, opp), appended to dst.
func (s *State) forcingCells(p board.Player, own, opp int, dst []int) []int {
	windows := s.idx.PatternWindows(p, own, opp, nil)
	if len(windows) == 0 {
		return dst
	}
	seen := make(map[int]bool, len(windows))
	for _, w := range windows {
		empties := w.EmptyCells(nil)
		for _, c := range empties {
			if !seen[c] {
				seen[c] = true
				dst = append(dst, c)
			}
		}
	}
	return dst
}

func appendUnsorted(dst []Move, cells []int) []Move {
	dst = dst[:0]
	for _, c := range cells {
		dst = append(dst, Move(c))
	}
	return dst
}

func (s *State) sortByScore(p board.Player, cells []int, dst []Move) []Move {
	moves := make([]Move, len(cells))
	for i, c := range cells {
		moves[i] = Move(c)
	}
	ml := NewMoveList(moves, func(m Move) Priority {
		return s.Score(p, int(m))
	})

	dst = dst[:0]
	for {
		m, ok := ml.Next()
		if !ok {
			break
		}
		dst = append(dst, m)
	}
	return dst
}

// Score computes the heuristic priority of playing at cell for player p: a
// positional bonus, a proximity-kernel bonus over player's nearby stones, and the
// summed pattern bonuses of every window through cell.
func (s *State) Score(p board.Player, cell int) Priority {
	c := board.CoordFromIndex(cell, s.n)
	centre := board.Coord{Row: s.n / 2, Col: s.n / 2}
	dist := c.ManhattanDistance(centre)

	score := Priority(s.eval.PositionalBonusScale * int64(s.n-dist))
	score += s.proximityScore(p, c)
	score += s.patternScore(p, cell)
	return score
}

func (s *State) proximityScore(p board.Player, c board.Coord) Priority {
	r := s.eval.ProximityKernelSize / 2
	plane := s.planes[planeIndex(p)]

	var total Priority
	for dr := -r; dr <= r; dr++ {
		rr := c.Row + dr
		if rr < 0 || rr >= s.n {
			continue
		}
		for dc := -r; dc <= r; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			cc := c.Col + dc
			if cc < 0 || cc >= s.n {
				continue
			}
			idx := board.Coord{Row: rr, Col: cc}.Index(s.n)
			if plane.IsSet(idx) {
				dist := absInt(dr) + absInt(dc)
				total += Priority(s.eval.ProximityScale) / Priority(dist+1)
			}
		}
	}
	return total
}

func (s *State) patternScore(p board.Player, cell int) Priority {
	var total Priority
	for _, w := range s.idx.WindowsThroughCell(cell) {
		if !w.IsEmpty(cell) {
			continue
		}
		own, opp := w.P1Count, w.P2Count
		if p == board.P2 {
			own, opp = w.P2Count, w.P1Count
		}
		total += s.eval.patternBonus(own, opp, s.k)
	}
	return total
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Clone returns an independent, deep copy for exclusive use by a search worker.
// The Zobrist table and evaluation constants are immutable and shared; the board
// geometry is rebuilt for the clone because it owns mutable scratch buffers.
func (s *State) Clone() *State {
	c := &State{
		n:    s.n,
		k:    s.k,
		geom: board.NewGeometry(s.n), // Geometry owns mutable scratch, never shared across workers
		idx:  s.idx.Clone(),
		zt:   s.zt,
		eval: s.eval,
		turn: s.turn,
		hash: s.hash,
	}
	c.planes[0] = s.planes[0].Clone()
	c.planes[1] = s.planes[1].Clone()
	c.candidates = s.candidates.Clone()
	c.history = append([]historyEntry(nil), s.history...)
	return c
}
