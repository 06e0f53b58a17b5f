package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/bot"
	"github.com/lox/pokertable/internal/config"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/handhistory"
	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/internal/runner"
	"github.com/lox/pokertable/internal/server"
	"github.com/lox/pokertable/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// ServeCmd runs every configured table behind the websocket server.
type ServeCmd struct {
	Config    string        `short:"c" default:"pokertable.hcl" help:"Path to HCL configuration file"`
	Addr      string        `short:"a" help:"Address to listen on (overrides config)"`
	LogLevel  string        `short:"l" help:"Log level (overrides config)"`
	Bots      int           `default:"0" help:"Built-in bots seated at each table"`
	BotKind   string        `default:"call" enum:"call,fold,random,maniac" help:"Strategy for built-in bots"`
	BuyIn     int           `default:"1000" help:"Chips for bots and players who join without a buy-in"`
	HandDelay time.Duration `default:"1s" help:"Pause between hands"`
	HoleCards bool          `help:"Write every player's hole cards to hand histories"`
	Seed      int64         `help:"Deterministic RNG seed (0 for random)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}
	timeout, err := cfg.Server.Timeout()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Server.LogLevel)
	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	logger.Info("starting pokertable server", "addr", addr, "tables", len(cfg.Tables), "seed", seed)

	var history *handhistory.Manager
	if cfg.Server.HandHistoryDir != "" {
		history = handhistory.NewManager(logger.WithPrefix("history"), handhistory.ManagerConfig{
			BaseDir:          cfg.Server.HandHistoryDir,
			IncludeHoleCards: c.HoleCards,
		})
		defer history.Shutdown()
	}
	stats := statistics.NewCollector()

	srv := server.New(logger.WithPrefix("server"),
		server.WithActionTimeout(timeout),
		server.WithDefaultBuyIn(c.BuyIn),
	)

	runners := make([]*runner.Runner, 0, len(cfg.Tables))
	for i, tc := range cfg.Tables {
		r, err := c.buildRunner(tc, randutil.Derive(seed, i), timeout, history, stats, logger)
		if err != nil {
			return err
		}
		srv.AddTable(r)
		runners = append(runners, r)
		logger.Info("created table",
			"table", tc.Name,
			"stakes", fmt.Sprintf("%d/%d", tc.SmallBlind, tc.BigBlind),
			"structure", tc.Structure,
			"max_seats", tc.MaxSeats)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, addr)
	})
	for _, r := range runners {
		g.Go(func() error {
			err := r.Run(ctx, 0)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	summary := stats.Summary()
	logger.Info("server stopped", "hands", summary.Hands, "showdowns", summary.Showdowns, "rake", summary.Rake)
	return err
}

func (c *ServeCmd) buildRunner(
	tc config.TableConfig,
	seed int64,
	timeout time.Duration,
	history *handhistory.Manager,
	stats *statistics.Collector,
	logger *log.Logger,
) (*runner.Runner, error) {
	gc, err := tc.GameConfig()
	if err != nil {
		return nil, err
	}

	recorders := []game.HandHistoryRecorder{stats}
	if history != nil {
		rec, err := history.CreateRecorder(tc.Name)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, rec)
	}

	tableLogger := logger.With("table", tc.Name)
	table, err := game.NewTable(gc,
		game.WithSeed(seed),
		game.WithRecorder(game.Recorders(recorders...)),
		game.WithLogger(tableLogger),
	)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", tc.Name, err)
	}

	r := runner.New(tc.Name, table,
		runner.WithLogger(tableLogger),
		runner.WithActionTimeout(timeout),
		runner.WithHandDelay(c.HandDelay),
		runner.WithWaitForPlayers(),
	)

	rng := randutil.New(seed)
	for n := range c.Bots {
		agent, err := bot.New(c.BotKind, rng, tableLogger)
		if err != nil {
			return nil, err
		}
		id := fmt.Sprintf("%s-%s-%d", c.BotKind, tc.Name, n+1)
		if _, err := r.Seat(id, id, c.BuyIn, -1, agent); err != nil {
			return nil, fmt.Errorf("seating %s: %w", id, err)
		}
	}
	return r, nil
}
