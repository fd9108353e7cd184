package pns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/pns"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

func TestTranspositionTable_GetPut(t *testing.T) {
	tt := pns.NewTranspositionTable()

	_, ok := tt.Get(42, board.P1)
	assert.False(t, ok)

	tt.Put(42, board.P1, pns.TTEntry{PN: 0, DN: 9, WinLen: 3})
	e, ok := tt.Get(42, board.P1)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), e.PN)
	assert.Equal(t, uint64(3), e.WinLen)

	// Keyed by player too: same hash, other player is a miss.
	_, ok = tt.Get(42, board.P2)
	assert.False(t, ok)

	assert.Equal(t, 1, tt.Len())
}

func TestTranspositionTable_LastWriterWins(t *testing.T) {
	tt := pns.NewTranspositionTable()
	tt.Put(1, board.P1, pns.TTEntry{PN: 0, DN: 9})
	tt.Put(1, board.P1, pns.TTEntry{PN: 9, DN: 0})

	e, ok := tt.Get(1, board.P1)
	assert.True(t, ok)
	assert.Equal(t, uint64(9), e.PN)
	assert.Equal(t, uint64(0), e.DN)
}

func TestNodeTable_GetOrCreate(t *testing.T) {
	nt := pns.NewNodeTable()

	var created int
	fn := func() *pns.Node {
		created++
		return pns.NewNode(board.P1, 1, 7)
	}

	n1, hit1 := nt.GetOrCreate(7, 1, fn)
	assert.False(t, hit1)
	n2, hit2 := nt.GetOrCreate(7, 1, fn)
	assert.True(t, hit2)
	assert.Same(t, n1, n2)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, nt.Len())
}

func TestNodeTable_DistinctDepthIsDistinctNode(t *testing.T) {
	nt := pns.NewNodeTable()
	fn := func() *pns.Node { return pns.NewNode(board.P1, 0, 7) }

	n1, _ := nt.GetOrCreate(7, 1, fn)
	n2, _ := nt.GetOrCreate(7, 2, fn)
	assert.NotSame(t, n1, n2)
	assert.Equal(t, 2, nt.Len())
}

func TestNodeTable_ManyKeysSpreadAcrossShards(t *testing.T) {
	nt := pns.NewNodeTable()
	for i := 0; i < 500; i++ {
		h := zobrist.Hash(i)
		nt.GetOrCreate(h, 0, func() *pns.Node { return pns.NewNode(board.P1, 0, h) })
	}
	assert.Equal(t, 500, nt.Len())
}
