package prover_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/prover"
)

func TestLaunch_CompletesAndHaltReturnsFinalResult(t *testing.T) {
	n, k := 5, 4
	stones := map[int]board.Player{
		board.Coord{Row: 0, Col: 0}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 1}.Index(n): board.P1,
		board.Coord{Row: 0, Col: 2}.Index(n): board.P1,
	}
	s := newTestState(t, n, k, stones, board.P1)
	cfg := prover.NewConfig(n, k, prover.WithNumWorkers(2), prover.WithDepthLimit(1))

	h, out := prover.Launch(context.Background(), s, cfg, nil, nil)

	select {
	case res, ok := <-out:
		require.True(t, ok)
		assert.True(t, res.Found)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first result")
	}

	final := h.Halt()
	assert.True(t, final.Found)
}

func TestLaunch_HaltIsIdempotent(t *testing.T) {
	n, k := 5, 4
	s := newTestState(t, n, k, nil, board.P1)
	cfg := prover.NewConfig(n, k, prover.WithNumWorkers(1), prover.WithDepthLimit(1))

	h, out := prover.Launch(context.Background(), s, cfg, nil, nil)
	<-out

	first := h.Halt()
	second := h.Halt()
	assert.Equal(t, first.Found, second.Found)
	assert.Equal(t, first.Move, second.Move)
}
