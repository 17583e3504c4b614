package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swingbot/config"
	"github.com/rustyeddy/swingbot/journal"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/notify"
	"github.com/rustyeddy/swingbot/strategy"
	"github.com/rustyeddy/swingbot/venue"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision loop against a paper exchange",
	Long: `Run the trading decision loop from a configuration file.

Orders go to an in-memory paper exchange seeded with a synthetic price
history, so this is safe to leave running. With --live the paper price
is driven by the venue's public ticker stream instead of a random walk.

Example:
  swingbot run -f swingbot.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runLive       bool
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runLive, "live", false, "feed paper prices from the public ticker stream")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "debug logging")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if runVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	opts, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts, err = config.ApplyEnv(opts)
	if err != nil {
		return err
	}
	store, err := config.NewStore(opts)
	if err != nil {
		return err
	}

	var jnl journal.Journal = journal.Nop{}
	if opts.JournalPath != "" {
		j, err := journal.NewSQLite(opts.JournalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		jnl = j
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paper := seedPaper()
	exchange := venue.NewRetrier(paper, log)

	hub := notify.NewHub(log, notify.LogNotifier{Log: log})
	go hub.Run(ctx)

	engine, err := strategy.NewEngine(exchange, store, jnl, hub, log)
	if err != nil {
		return err
	}

	if runLive {
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}
		if !creds.Set() {
			log.Warn("no venue credentials in environment; running on public market data only")
		}

		stream := venue.NewTickerStream(venue.PublicWSURL, opts.Symbol, log)
		go stream.Run(ctx)
		go func() {
			for price := range stream.Prices() {
				paper.SetPrice(price)
			}
		}()
	}

	log.Info("starting", "symbol", opts.Symbol, "variant", opts.Variant,
		"interval", opts.CheckInterval, "live", runLive)
	return strategy.NewRunner(engine, store, log).Run(ctx)
}

// seedPaper builds a paper exchange with a random-walk history on
// every timeframe so indicators have something to chew on.
func seedPaper() *venue.Paper {
	const price = 60000.0
	paper := venue.NewPaper(price)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	const bars = 120
	now := time.Now()

	frames := map[market.Timeframe]time.Duration{
		market.M15: 15 * time.Minute,
		market.H1:  time.Hour,
		market.H4:  4 * time.Hour,
		market.D1:  24 * time.Hour,
	}
	for tf, step := range frames {
		p := price
		candles := make([]market.Candle, bars)
		for i := range candles {
			drift := p * 0.01 * (rng.Float64() - 0.5)
			open := p
			close := p + drift
			high := math.Max(open, close) * (1 + 0.003*rng.Float64())
			low := math.Min(open, close) * (1 - 0.003*rng.Float64())
			candles[i] = market.Candle{
				Time:   now.Add(-time.Duration(bars-i) * step),
				Open:   open,
				High:   high,
				Low:    low,
				Close:  close,
				Volume: 100 + 50*rng.Float64(),
			}
			p = close
		}
		paper.SetCandles(tf, candles)
		if tf == market.M15 {
			paper.SetPrice(p)
		}
	}
	return paper
}
