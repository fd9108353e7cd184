// Command pnsolve is a thin CLI over pkg/prover: it flag-parses a board, win
// length and worker count, runs the proof-number prover to completion and prints
// the returned move (or "none"). It is the one contractual touchpoint with the
// out-of-scope interactive UI named in spec.md section 1 -- it is not that UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	uatomic "go.uber.org/atomic"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"

	"github.com/herohde/pnsolve/pkg/board"
	"github.com/herohde/pnsolve/pkg/game"
	"github.com/herohde/pnsolve/pkg/prover"
	"github.com/herohde/pnsolve/pkg/zobrist"
)

var version = build.NewVersion(0, 1, 0)

var (
	size       = flag.Int("n", 15, "Board side N")
	winLength  = flag.Int("k", 5, "Win length K")
	workers    = flag.Int("workers", 4, "Number of parallel PNS workers")
	depthLimit = flag.Int("depth", 0, "Iterative-deepening horizon cap (0 = unbounded)")
	boardStr   = flag.String("board", "", "Board as N*N characters row-major: '.'=empty, 'X'=P1, 'O'=P2")
	turnStr    = flag.String("turn", "X", "Side to move: X or O")
	seed       = flag.Int64("seed", 0, "Zobrist random seed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: pnsolve [options]

PNSOLVE is a parallel connect-K proof-number prover.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "pnsolve %v", version)

	turn, err := parsePlayer(*turnStr)
	if err != nil {
		logw.Exitf(ctx, "Invalid -turn: %v", err)
	}

	stones, err := parseBoard(*boardStr, *size)
	if err != nil {
		logw.Exitf(ctx, "Invalid -board: %v", err)
	}

	// A depth limit of 0 means "unbounded" to the user, but the solver's iterative
	// deepening never stops on its own short of a proof (spec.md section 7: an
	// unproven root at a given horizon is not an error, the caller may raise it
	// further). Cap at the board's own ply count so a genuinely drawn position still
	// terminates instead of spinning the horizon past what the board can hold.
	limit := *depthLimit
	if limit <= 0 {
		limit = *size * *size
	}
	cfg := prover.NewConfig(*size, *winLength,
		prover.WithNumWorkers(*workers),
		prover.WithZobristSeed(*seed),
		prover.WithDepthLimit(uint(limit)))

	zt := zobrist.NewTable(*size, *seed)
	state, err := game.NewState(*size, *winLength, zt, cfg.Evaluation, stones, turn)
	if err != nil {
		logw.Exitf(ctx, "Invalid position: %v", err)
	}

	stop := uatomic.NewBool(false)
	res, err := prover.Solve(ctx, state, cfg, stop, nil, nil, nil)
	if err != nil {
		logw.Exitf(ctx, "Solve failed: %v", err)
	}

	logw.Infof(ctx, "Result: %v", res)
	if res.Found {
		fmt.Println(res.Move.String(*size))
	} else {
		fmt.Println("none")
	}
}

func parsePlayer(s string) (board.Player, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X", "P1":
		return board.P1, nil
	case "O", "P2":
		return board.P2, nil
	default:
		return board.Empty, fmt.Errorf("unknown player %q", s)
	}
}

// parseBoard decodes a row-major N*N string ('.'=empty, 'X'=P1, 'O'=P2, whitespace
// ignored) into a cell-index -> player stone map. An empty string is a valid empty
// board.
func parseBoard(s string, n int) (map[int]board.Player, error) {
	stones := make(map[int]board.Player)
	if strings.TrimSpace(s) == "" {
		return stones, nil
	}

	cells := strings.Fields(s)
	flat := strings.Join(cells, "")
	if len(flat) != n*n {
		return nil, fmt.Errorf("expected %d cells, got %d", n*n, len(flat))
	}

	for i, ch := range flat {
		switch ch {
		case '.', '-', '_':
			// empty
		case 'X', 'x':
			stones[i] = board.P1
		case 'O', 'o':
			stones[i] = board.P2
		default:
			return nil, fmt.Errorf("unexpected board character %q at cell %d", ch, i)
		}
	}
	return stones, nil
}
