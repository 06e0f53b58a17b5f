package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/bot"
	"github.com/lox/pokertable/internal/fileutil"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/handhistory"
	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/internal/runner"
	"github.com/lox/pokertable/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// SimulateCmd plays bots against each other on independent tables.
type SimulateCmd struct {
	Hands      int      `default:"10000" help:"Hands to play at each table"`
	Tables     int      `default:"2" help:"Tables to run concurrently"`
	Players    int      `default:"6" help:"Players per table"`
	Bots       []string `default:"call,random,maniac,fold" help:"Bot kinds, assigned to seats in turn"`
	Stack      int      `default:"1000" help:"Starting stack, topped up when a bot busts"`
	SmallBlind int      `default:"5" help:"Small blind"`
	BigBlind   int      `default:"10" help:"Big blind"`
	Ante       int      `help:"Ante"`
	Structure  string   `default:"no-limit" enum:"no-limit,pot-limit,fixed-limit" help:"Betting structure"`
	Rake       int      `help:"Rake percent"`
	RakeCap    int      `help:"Rake cap in chips"`
	Seed       int64    `help:"RNG seed (0 for random)"`
	HistoryDir string   `help:"Write PHH hand histories to this directory"`
	Output     string   `short:"o" help:"Write a JSON report to this file"`
	Verbose    bool     `short:"V" help:"Verbose logging"`
}

func (c *SimulateCmd) Run() error {
	level := "warn"
	if c.Verbose {
		level = "debug"
	}
	logger := newLogger(level)

	ctx, cancel := signalContext(logger)
	defer cancel()

	start := time.Now()
	res, err := c.simulate(ctx, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	renderSummary(os.Stdout, res, elapsed)
	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, res.report(elapsed)); err != nil {
			return err
		}
		logger.Info("wrote report", "path", c.Output)
	}
	return nil
}

// simulation is everything the summary needs.
type simulation struct {
	Seed    int64
	Summary statistics.Summary
	Kinds   map[string]string // player ID to bot kind
	Rebuys  int
}

func (c *SimulateCmd) simulate(ctx context.Context, logger *log.Logger) (*simulation, error) {
	if c.Tables < 1 || c.Players < 2 {
		return nil, fmt.Errorf("need at least one table and two players, got %d and %d", c.Tables, c.Players)
	}
	if len(c.Bots) == 0 {
		return nil, fmt.Errorf("no bot kinds given")
	}
	structure, err := game.ParseStructure(c.Structure)
	if err != nil {
		return nil, err
	}
	cfg := game.Config{
		SmallBlind:  c.SmallBlind,
		BigBlind:    c.BigBlind,
		Ante:        c.Ante,
		Structure:   structure,
		MaxSeats:    c.Players,
		RakePercent: c.Rake,
		RakeCap:     c.RakeCap,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	logger.Info("starting simulation", "seed", seed, "tables", c.Tables, "hands", c.Hands)

	var history *handhistory.Manager
	if c.HistoryDir != "" {
		history = handhistory.NewManager(logger.WithPrefix("history"), handhistory.ManagerConfig{
			BaseDir:          c.HistoryDir,
			IncludeHoleCards: true,
		})
		defer history.Shutdown()
	}

	stats := statistics.NewCollector()
	sim := &simulation{Seed: seed, Kinds: make(map[string]string)}
	tables := make([]*simTable, c.Tables)
	for i := range tables {
		t, err := c.newSimTable(i, cfg, randutil.Derive(seed, i), stats, history, logger)
		if err != nil {
			return nil, err
		}
		for id, kind := range t.kinds {
			sim.Kinds[id] = kind
		}
		tables[i] = t
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tables {
		g.Go(func() error {
			return t.play(ctx, c.Hands, c.Stack)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range tables {
		sim.Rebuys += t.rebuys
	}
	sim.Summary = stats.Summary()
	return sim, nil
}

// report is the JSON form of a simulation.
type report struct {
	Seed      int64                   `json:"seed"`
	Hands     int                     `json:"hands"`
	Showdowns int                     `json:"showdowns"`
	Rake      int                     `json:"rake"`
	Rebuys    int                     `json:"rebuys"`
	Seconds   float64                 `json:"seconds"`
	Players   map[string]playerReport `json:"players"`
}

type playerReport struct {
	Bot           string          `json:"bot"`
	Hands         int             `json:"hands"`
	BBPer100      float64         `json:"bb_per_100"`
	CI95          [2]float64      `json:"ci_95"`
	Median        float64         `json:"median_bb"`
	ShowdownBB    float64         `json:"showdown_bb"`
	NonShowdownBB float64         `json:"non_showdown_bb"`
	Positions     map[int]float64 `json:"positions_bb_per_hand"`
	Actions       map[string]int  `json:"actions"`
}

func (s *simulation) report(elapsed time.Duration) report {
	sum := s.Summary
	r := report{
		Seed:      s.Seed,
		Hands:     sum.Hands,
		Showdowns: sum.Showdowns,
		Rake:      sum.Rake,
		Rebuys:    s.Rebuys,
		Seconds:   elapsed.Seconds(),
		Players:   make(map[string]playerReport, len(sum.Players)),
	}
	for id, st := range sum.Players {
		lo, hi := st.ConfidenceInterval95()
		pr := playerReport{
			Bot:           s.Kinds[id],
			Hands:         st.Hands,
			BBPer100:      st.Mean() * 100,
			CI95:          [2]float64{lo * 100, hi * 100},
			Median:        st.Median(),
			ShowdownBB:    st.ShowdownBB,
			NonShowdownBB: st.NonShowdownBB,
			Positions:     make(map[int]float64, len(st.Positions)),
			Actions:       make(map[string]int),
		}
		for pos, ps := range st.Positions {
			pr.Positions[pos] = ps.Mean()
		}
		for a, n := range sum.Actions[id] {
			pr.Actions[a.String()] = n
		}
		r.Players[id] = pr
	}
	return r
}

type simTable struct {
	name   string
	runner *runner.Runner
	kinds  map[string]string
	names  map[string]string
	seats  map[string]int
	chips  int // chips that should be on the table, rake included
	rebuys int
}

func (c *SimulateCmd) newSimTable(
	n int,
	cfg game.Config,
	seed int64,
	stats *statistics.Collector,
	history *handhistory.Manager,
	logger *log.Logger,
) (*simTable, error) {
	name := fmt.Sprintf("sim%d", n+1)

	recorders := []game.HandHistoryRecorder{stats}
	if history != nil {
		rec, err := history.CreateRecorder(name)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, rec)
	}

	tableLogger := logger.With("table", name)
	table, err := game.NewTable(cfg,
		game.WithSeed(seed),
		game.WithRecorder(game.Recorders(recorders...)),
		game.WithLogger(tableLogger),
	)
	if err != nil {
		return nil, err
	}

	t := &simTable{
		name:   name,
		runner: runner.New(name, table, runner.WithLogger(tableLogger)),
		kinds:  make(map[string]string),
		names:  make(map[string]string),
		seats:  make(map[string]int),
	}
	rng := randutil.New(seed)
	for seat := range c.Players {
		kind := c.Bots[seat%len(c.Bots)]
		agent, err := bot.New(kind, rng, tableLogger)
		if err != nil {
			return nil, err
		}
		id := fmt.Sprintf("%s-%d-%s", name, seat+1, kind)
		if _, err := t.runner.Seat(id, id, c.Stack, seat, agent); err != nil {
			return nil, err
		}
		t.kinds[id] = kind
		t.names[id] = id
		t.seats[id] = seat
		t.chips += c.Stack
	}
	return t, nil
}

// play runs hands, topping up busted players between hands and checking
// that no chips appear or vanish.
func (t *simTable) play(ctx context.Context, hands, stack int) error {
	for range hands {
		if err := t.runner.Do(func(table *game.Table) error {
			return t.rebuy(table, stack)
		}); err != nil {
			return err
		}
		if _, err := t.runner.PlayHand(ctx); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		if err := t.runner.Do(t.checkChips); err != nil {
			return err
		}
	}
	return nil
}

func (t *simTable) rebuy(table *game.Table, stack int) error {
	for _, p := range table.Players() {
		if p.Chips > 0 {
			continue
		}
		id := p.ID
		if err := table.RemovePlayer(id); err != nil {
			return err
		}
		if _, err := table.AddPlayerAt(id, t.names[id], stack, t.seats[id]); err != nil {
			return err
		}
		t.chips += stack
		t.rebuys++
	}
	return nil
}

func (t *simTable) checkChips(table *game.Table) error {
	if got := table.TotalChips() + table.RakeCollected(); got != t.chips {
		return fmt.Errorf("%s: chip count %d after hand %d, want %d", t.name, got, table.HandNumber(), t.chips)
	}
	return nil
}
