package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vnquant/internal/app"
	"vnquant/internal/broker"
	"vnquant/internal/domain"
	"vnquant/internal/env"
	"vnquant/internal/feed"
	"vnquant/internal/infra"
	"vnquant/internal/infra/storage"
	"vnquant/internal/portfolio"
	"vnquant/internal/reward"
	"vnquant/internal/risk"
)

func main() {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config
	logger := bootstrap.Logger
	journal := bootstrap.Journal

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Price plumbing: simulated prices by default, live quote stream
	// when the feed is enabled.
	static := feed.NewStatic(nil)
	priceSource := static.Source()
	if cfg.Feed.Enabled {
		client := feed.NewClient(cfg.Feed.WSURL, cfg.Trading.Symbols)
		if err := client.Connect(ctx); err != nil {
			slog.Error("failed to start quote feed", slog.Any("error", err))
		} else {
			defer client.Disconnect()
			priceSource = client.Source()
		}
	}

	// Execution layer: simulated gateway behind the coordinator.
	gateway := broker.NewSimulatedGateway(cfg.Trading.InitialCash)
	gateway.SetRates(cfg.Trading.FeeRate, cfg.Trading.TaxRate)
	if !gateway.Login() {
		slog.Error("gateway login failed")
		os.Exit(1)
	}
	coordinator := broker.NewOrderCoordinator(
		gateway,
		cfg.Coordinator.MaxRetries,
		time.Duration(cfg.Coordinator.RetryDelayMS)*time.Millisecond,
		logger,
	)

	positions := portfolio.NewTracker(priceSource, logger)

	provider := syntheticProvider(cfg.Trading.Symbols, cfg.Trading.EpisodeSteps+1)
	rewards := reward.NewEngine(cfg.Trading.FeeRate, cfg.Trading.TaxRate)
	limiter := risk.NewLimiter(cfg.Risk.VaRConfidence, cfg.Risk.VaRLimit, cfg.Risk.MinSamples)

	episodeID := uuid.NewString()
	recorder := func(step int, trade domain.Trade) {
		if err := journal.SaveTrade(episodeID, step, trade); err != nil {
			slog.Warn("failed to journal trade", slog.Any("error", err))
		}

		// Mirror the episode trade through the execution layer so the
		// gateway ledger and position tracker stay in sync.
		static.Set(trade.Symbol, trade.Price)
		gateway.UpdatePrice(trade.Symbol, trade.Price)
		order := domain.NewOrder(trade.Symbol, trade.Side, trade.Shares, domain.OrderTypeMarket)
		result := coordinator.ExecuteOrder(order)
		positions.ApplyFilledOrder(result)
		if err := journal.SaveOrder(result); err != nil {
			slog.Warn("failed to journal order", slog.Any("error", err))
		}
	}

	episode := env.NewEpisode(env.Config{
		Symbols:      cfg.Trading.Symbols,
		InitialCash:  cfg.Trading.InitialCash,
		EpisodeSteps: cfg.Trading.EpisodeSteps,
		StartDate:    time.Now().UTC(),
		BuyFraction:  cfg.Trading.BuyFraction,
		RiskFreeRate: cfg.Trading.RiskFreeRate,
	}, provider, rewards, limiter, recorder, logger)

	slog.Info("episode started",
		slog.String("episode_id", episodeID),
		slog.Int("steps", cfg.Trading.EpisodeSteps),
		slog.Int("symbols", len(cfg.Trading.Symbols)))

	totalReward := 0.0
	violations := 0
	var lastValue decimal.Decimal

	for !episode.Done() {
		select {
		case <-ctx.Done():
			slog.Info("interrupted, stopping episode")
			episodeDone(journal, episodeID, episode, totalReward, violations, lastValue)
			return
		default:
		}

		actions := demoPolicy(cfg.Trading.Symbols, episode)
		result, err := episode.Step(actions)
		if err != nil {
			slog.Error("episode step failed", slog.Any("error", err))
			break
		}
		totalReward += result.Reward
		violations += len(result.Info.Violations)
		lastValue = result.Info.PortfolioValue
	}

	episodeDone(journal, episodeID, episode, totalReward, violations, lastValue)

	snapshot := infra.GlobalMetrics.GetSnapshot()
	slog.Info("run complete",
		slog.Uint64("orders_placed", snapshot.OrdersPlaced),
		slog.Uint64("orders_filled", snapshot.OrdersFilled),
		slog.Uint64("violations", snapshot.Violations),
		slog.Uint64("steps", snapshot.EpisodeSteps))
}

// demoPolicy is a naive rotation: buy when flat, sell once settled
// shares exist, hold otherwise. It exists to exercise the pipeline,
// not to make money.
func demoPolicy(symbols []string, episode *env.Episode) []env.Action {
	holdings := episode.Holdings()
	actions := make([]env.Action, len(symbols))
	for i, sym := range symbols {
		switch {
		case holdings[sym] == 0:
			actions[i] = env.ActionBuy
		case episode.AvailableToSell(sym) > 0:
			actions[i] = env.ActionSell
		default:
			actions[i] = env.ActionHold
		}
	}
	return actions
}

func episodeDone(journal *storage.Journal, episodeID string, episode *env.Episode, totalReward float64, violations int, lastValue decimal.Decimal) {
	record := &domain.EpisodeRecord{
		ID:          episodeID,
		StartDate:   time.Now().UTC(),
		Steps:       len(episode.Returns()),
		FinalValue:  lastValue.String(),
		TotalReward: totalReward,
		Violations:  violations,
	}
	if err := journal.SaveEpisode(record); err != nil {
		slog.Warn("failed to save episode summary", slog.Any("error", err))
	}
	slog.Info("episode finished",
		slog.Int("steps", record.Steps),
		slog.String("final_value", record.FinalValue),
		slog.Float64("total_reward", totalReward),
		slog.Int("violations", violations))
}

// syntheticProvider builds a random-walk frame series per symbol so
// the simulator runs without a market data backend.
func syntheticProvider(symbols []string, steps int) *env.FrameProvider {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	frames := make(map[string][]env.Frame, len(symbols))
	for _, sym := range symbols {
		price := 20_000 + rng.Float64()*80_000
		series := make([]env.Frame, steps)
		for i := range series {
			drift := price * (rng.Float64()*0.04 - 0.02)
			open := price
			price += drift
			high := open
			if price > high {
				high = price
			}
			low := open
			if price < low {
				low = price
			}
			series[i] = env.Frame{
				Open:   open,
				High:   high,
				Low:    low,
				Close:  price,
				Volume: 1_000_000 * rng.Float64(),
			}
		}
		frames[sym] = series
	}
	return env.NewFrameProvider(frames)
}
