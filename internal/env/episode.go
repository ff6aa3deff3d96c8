package env

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
	"vnquant/internal/infra"
	"vnquant/internal/reward"
	"vnquant/internal/risk"
	"vnquant/internal/settlement"
)

// Action is one per-symbol decision inside a step.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

// Config holds episode parameters.
type Config struct {
	Symbols      []string
	InitialCash  decimal.Decimal
	EpisodeSteps int
	StartDate    time.Time
	BuyFraction  decimal.Decimal // fraction of cash spent per buy
	RiskFreeRate float64
}

// Info is the auxiliary data returned with every observation.
type Info struct {
	PortfolioValue decimal.Decimal
	Cash           decimal.Decimal
	Violations     []domain.ViolationKind
	Step           int
}

// StepResult bundles the outcome of one environment step.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// TradeRecorder receives executed trades for journaling. May be nil.
type TradeRecorder func(step int, trade domain.Trade)

// Episode orchestrates one discrete time-stepped trading episode with
// T+2.5 settlement enforcement. State machine: Reset -> Stepping
// (repeats) -> Done, reached only by step-count exhaustion.
//
// The episode owns its ledger (cash, holdings, settlement tracker)
// exclusively; it is single-threaded by contract.
type Episode struct {
	cfg      Config
	provider FeatureProvider
	rewards  *reward.Engine
	limiter  *risk.Limiter
	recorder TradeRecorder
	logger   *slog.Logger

	tracker     *settlement.Tracker
	cash        decimal.Decimal
	holdings    map[string]int64
	currentStep int
	currentDate time.Time
	returns     []float64
	prevValue   decimal.Decimal
	done        bool
}

// NewEpisode creates an environment. Provider and rewards are
// required; limiter, recorder and logger may be nil.
func NewEpisode(cfg Config, provider FeatureProvider, rewards *reward.Engine, limiter *risk.Limiter, recorder TradeRecorder, logger *slog.Logger) *Episode {
	if cfg.EpisodeSteps <= 0 {
		cfg.EpisodeSteps = 252
	}
	if cfg.BuyFraction.IsZero() {
		cfg.BuyFraction = decimal.NewFromFloat(0.05)
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = time.Now().UTC()
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Episode{
		cfg:      cfg,
		provider: provider,
		rewards:  rewards,
		limiter:  limiter,
		recorder: recorder,
		logger:   logger,
	}
	e.Reset()
	return e
}

// Reset reinitializes all episode state and returns the initial
// observation. Callable from any state, including Done.
func (e *Episode) Reset() ([]float64, Info) {
	e.tracker = settlement.NewTracker()
	e.cash = e.cfg.InitialCash
	e.holdings = make(map[string]int64, len(e.cfg.Symbols))
	for _, sym := range e.cfg.Symbols {
		e.holdings[sym] = 0
	}
	e.currentStep = 0
	e.currentDate = settlement.Day(e.cfg.StartDate)
	if !settlement.IsTradingDay(e.currentDate) {
		e.currentDate = settlement.NextTradingDay(e.currentDate)
	}
	e.returns = e.returns[:0]
	e.prevValue = e.cfg.InitialCash
	e.done = false

	return e.observation(), Info{
		PortfolioValue: e.cfg.InitialCash,
		Cash:           e.cash,
		Violations:     nil,
		Step:           0,
	}
}

// Step executes one trading step: one action per tracked symbol, in
// the configured symbol order. Domain failures (blocked sells,
// unaffordable buys) never surface as errors; the episode always
// advances. The only error is a malformed action vector, which is
// caller misuse.
func (e *Episode) Step(actions []Action) (StepResult, error) {
	if len(actions) != len(e.cfg.Symbols) {
		return StepResult{}, fmt.Errorf("action vector length %d, want %d", len(actions), len(e.cfg.Symbols))
	}

	var violations []domain.ViolationKind
	var trades []domain.Trade

	mask := settlement.BuildActionMask(e.cfg.Symbols, e.holdings, e.currentDate, e.tracker)

	for i, sym := range e.cfg.Symbols {
		price := e.provider.Price(sym, e.currentStep)

		switch actions[i] {
		case ActionBuy:
			shares := e.buyShares(price)
			if shares <= 0 {
				continue // silently skipped: not a violation, not a trade
			}
			cost := price.Mul(decimal.NewFromInt(shares))
			e.cash = e.cash.Sub(cost)
			e.holdings[sym] += shares
			e.tracker.RecordBuy(sym, shares, e.currentDate)
			trades = append(trades, domain.Trade{
				Symbol: sym,
				Side:   domain.SideBuy,
				Shares: shares,
				Price:  price,
				Value:  cost,
			})

		case ActionSell:
			if !mask[i].Sell {
				violations = append(violations, domain.ViolationSettlement)
				infra.GlobalMetrics.RecordViolation()
				e.logger.Debug("sell blocked by settlement",
					slog.String("symbol", sym),
					slog.Int("step", e.currentStep))
				continue
			}
			shares := e.tracker.AvailableShares(sym, e.currentDate)
			if shares > e.holdings[sym] {
				shares = e.holdings[sym]
			}
			if shares <= 0 || !e.tracker.Consume(sym, shares, e.currentDate) {
				continue
			}
			proceeds := price.Mul(decimal.NewFromInt(shares))
			e.holdings[sym] -= shares
			e.cash = e.cash.Add(proceeds)
			trades = append(trades, domain.Trade{
				Symbol: sym,
				Side:   domain.SideSell,
				Shares: shares,
				Price:  price,
				Value:  proceeds,
			})
		}
	}

	if e.recorder != nil {
		for _, trade := range trades {
			e.recorder(e.currentStep, trade)
		}
	}

	value := e.portfolioValue()
	stepReturn := e.stepReturn(value)
	e.returns = append(e.returns, stepReturn)
	e.prevValue = value

	if e.limiter.Enabled() && e.limiter.Check(e.returns) {
		violations = append(violations, domain.ViolationVaR)
		infra.GlobalMetrics.RecordViolation()
	}

	stepReward, err := e.rewards.TotalReward([]float64{stepReturn}, trades, violations, e.cfg.RiskFreeRate)
	if err != nil {
		// Unreachable with the kinds this environment emits; a defect
		// here must not stall training.
		infra.GlobalMetrics.RecordError()
		e.logger.Error("reward computation failed", slog.Any("error", err))
	}

	e.currentStep++
	e.currentDate = settlement.NextTradingDay(e.currentDate)
	e.done = e.currentStep >= e.cfg.EpisodeSteps
	infra.GlobalMetrics.RecordStep()

	return StepResult{
		Observation: e.observation(),
		Reward:      stepReward,
		Terminated:  e.done,
		Truncated:   false,
		Info: Info{
			PortfolioValue: value,
			Cash:           e.cash,
			Violations:     violations,
			Step:           e.currentStep,
		},
	}, nil
}

// Done reports whether the episode has exhausted its step budget.
func (e *Episode) Done() bool {
	return e.done
}

// CurrentDate returns the simulated trading date.
func (e *Episode) CurrentDate() time.Time {
	return e.currentDate
}

// Holdings returns a copy of the current share holdings.
func (e *Episode) Holdings() map[string]int64 {
	out := make(map[string]int64, len(e.holdings))
	for sym, qty := range e.holdings {
		out[sym] = qty
	}
	return out
}

// AvailableToSell returns the settled share count for a symbol as of
// the current simulated date.
func (e *Episode) AvailableToSell(symbol string) int64 {
	return e.tracker.AvailableShares(symbol, e.currentDate)
}

// Returns exposes the accumulated per-step return series.
func (e *Episode) Returns() []float64 {
	out := make([]float64, len(e.returns))
	copy(out, e.returns)
	return out
}

// buyShares computes the bounded order size: a fixed fraction of
// current cash divided by price, floored to whole shares.
func (e *Episode) buyShares(price decimal.Decimal) int64 {
	if price.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	budget := e.cash.Mul(e.cfg.BuyFraction)
	return budget.Div(price).IntPart()
}

// portfolioValue is cash plus the marked value of all holdings.
func (e *Episode) portfolioValue() decimal.Decimal {
	value := e.cash
	for _, sym := range e.cfg.Symbols {
		qty := e.holdings[sym]
		if qty == 0 {
			continue
		}
		price := e.provider.Price(sym, e.currentStep)
		value = value.Add(price.Mul(decimal.NewFromInt(qty)))
	}
	return value
}

// stepReturn is the change relative to the previous portfolio value,
// with the denominator floored at one to avoid division blow-up.
func (e *Episode) stepReturn(value decimal.Decimal) float64 {
	denom := e.prevValue
	if denom.LessThan(decimal.NewFromInt(1)) {
		denom = decimal.NewFromInt(1)
	}
	return value.Sub(e.prevValue).Div(denom).InexactFloat64()
}

// observation concatenates, per symbol in fixed order, the feature
// vector, followed by one portfolio weight per symbol.
func (e *Episode) observation() []float64 {
	n := len(e.cfg.Symbols)
	obs := make([]float64, 0, n*FeatureSize+n)

	for _, sym := range e.cfg.Symbols {
		features := e.provider.Features(sym, e.currentStep)
		if len(features) != FeatureSize {
			padded := make([]float64, FeatureSize)
			copy(padded, features)
			features = padded
		}
		obs = append(obs, features...)
	}

	total := e.portfolioValue()
	if total.LessThan(decimal.NewFromInt(1)) {
		total = decimal.NewFromInt(1)
	}
	for _, sym := range e.cfg.Symbols {
		price := e.provider.Price(sym, e.currentStep)
		weight := price.Mul(decimal.NewFromInt(e.holdings[sym])).Div(total)
		obs = append(obs, weight.InexactFloat64())
	}
	return obs
}
