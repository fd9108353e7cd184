package board

// Player identifies a side. P1 moves first and is the OR player in proof-number
// search (tries to prove a forced win); P2 is the AND player (tries to disprove).
type Player uint8

const (
	Empty Player = iota
	P1
	P2
)

// Opponent returns the other player. Opponent of Empty is Empty.
func (p Player) Opponent() Player {
	switch p {
	case P1:
		return P2
	case P2:
		return P1
	default:
		return Empty
	}
}

// IsOR reports whether p is the OR (proving) player, i.e. P1.
func (p Player) IsOR() bool {
	return p == P1
}

func (p Player) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	default:
		return "."
	}
}
