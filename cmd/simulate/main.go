package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/blackjack"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CLI plays bot rounds against the engine and checks that no chips are created or lost
type CLI struct {
	Tables   int   `default:"4" help:"Number of tables to run concurrently"`
	Rounds   int   `default:"1000" help:"Rounds to play per table"`
	Players  int   `default:"4" help:"Bots seated at each table"`
	HitBelow int   `default:"17" help:"Bots hit while their score is below this"`
	Stake    int   `default:"10" help:"Fixed bet per round"`
	Chips    int   `default:"100" help:"Starting chips per bot"`
	Seed     int64 `default:"0" help:"RNG seed (0 for random)"`
	Verbose  bool  `short:"v" help:"Verbose logging"`
}

type tableResult struct {
	table     int
	rounds    int
	dealt     int
	forfeited int
	balances  map[string]int
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("simulate"),
		kong.Description("Simulate bot blackjack tables"))

	if cli.Seed == 0 {
		cli.Seed = time.Now().UnixNano()
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cli.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	fmt.Printf("Starting simulation: %d tables x %d rounds, %d bots each (seed: %d)\n",
		cli.Tables, cli.Rounds, cli.Players, cli.Seed)

	start := time.Now()
	results, err := runSimulation(context.Background(), cli, logger)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}

	ctx.FatalIfErrorf(printResults(os.Stdout, cli, results, time.Since(start)))
	ctx.Exit(0)
}

func runSimulation(ctx context.Context, cli CLI, logger logrus.FieldLogger) ([]*tableResult, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make([]*tableResult, 0, cli.Tables)

	for i := 0; i < cli.Tables; i++ {
		table := i
		g.Go(func() error {
			res, err := playTable(ctx, cli, table, logger.WithField("table", table))
			if err != nil {
				return fmt.Errorf("table %d: %w", table, err)
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func playTable(ctx context.Context, cli CLI, table int, logger logrus.FieldLogger) (*tableResult, error) {
	opts := blackjack.DefaultOptions()
	opts.Stake = cli.Stake
	opts.StartingChips = cli.Chips
	opts.Generator = rng.NewSeeded(cli.Seed + int64(table))

	e, err := blackjack.NewEngine(logger, opts)
	if err != nil {
		return nil, err
	}

	roster := make([]blackjack.Seat, cli.Players)
	for i := range roster {
		roster[i] = blackjack.Seat{
			ID:          fmt.Sprintf("bot-%d-%d", table, i),
			DisplayName: fmt.Sprintf("Bot %d", i+1),
		}
	}

	res := &tableResult{table: table, balances: make(map[string]int, len(roster))}
	for round := 0; round < cli.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if round == 0 {
			err = e.StartRound(roster)
		} else {
			err = e.StartNextRound()
		}

		if err != nil {
			return nil, err
		}

		if err := playRound(e, cli.HitBelow); err != nil {
			return nil, err
		}

		result := e.Result()
		res.rounds++
		res.dealt += result.Pot
		res.forfeited += result.Forfeited
	}

	for _, seat := range roster {
		balance, _ := e.Balance(seat.ID)
		res.balances[seat.ID] = balance
	}

	return res, nil
}

// playRound lets the acting bot hit until it reaches hitBelow
func playRound(e *blackjack.Engine, hitBelow int) error {
	for !e.IsRoundOver() {
		id := e.CurrentTurn()
		if id == "" {
			return errors.New("round is in progress but nobody can act")
		}

		if score(e, id) < hitBelow {
			if _, err := e.RequestHit(id); err != nil {
				return err
			}

			continue
		}

		if err := e.RequestStand(id); err != nil {
			return err
		}
	}

	return nil
}

func score(e *blackjack.Engine, id string) int {
	for _, p := range e.ProjectState() {
		if p.ID == id {
			return p.Score
		}
	}

	return 0
}

func printResults(w io.Writer, cli CLI, results []*tableResult, duration time.Duration) error {
	expected := cli.Players * cli.Chips
	rounds := 0
	failed := 0

	for _, res := range results {
		rounds += res.rounds

		total := res.forfeited
		for _, balance := range res.balances {
			total += balance
		}

		status := "ok"
		if total != expected {
			status = "MISMATCH"
			failed++
		}

		fmt.Fprintf(w, "table %d: %d rounds, %d chips bet, %d forfeited, %d + %d = %d chips [%s]\n",
			res.table, res.rounds, res.dealt, res.forfeited, total-res.forfeited, res.forfeited, total, status)
	}

	fmt.Fprintf(w, "\n%d rounds in %s (%.0f rounds/sec)\n", rounds, duration.Round(time.Millisecond), float64(rounds)/duration.Seconds())

	if failed > 0 {
		return fmt.Errorf("%d tables did not conserve chips", failed)
	}

	return nil
}
