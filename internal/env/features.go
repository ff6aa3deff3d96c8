package env

import (
	"github.com/shopspring/decimal"
)

// FeatureSize is the fixed per-symbol observation width: five raw
// OHLCV fields plus five derived indicator fields.
const FeatureSize = 10

// Frame is one bar of per-symbol market data with precomputed
// indicators. Indicator computation itself lives upstream; the
// environment only consumes the values.
type Frame struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	MACD       float64
	SignalLine float64
	BBUpper    float64
	BBLower    float64
	ATR        float64
}

// FeatureProvider supplies observation features and reference prices
// for a symbol at a given step index.
type FeatureProvider interface {
	// Features returns a fixed-length vector of FeatureSize values.
	Features(symbol string, step int) []float64

	// Price returns the reference price used for fills and valuation.
	Price(symbol string, step int) decimal.Decimal
}

// FrameProvider implements FeatureProvider over preloaded frames.
// Steps beyond the last frame clamp to it; unknown symbols yield a
// zero feature vector and a unit price so the episode can continue.
type FrameProvider struct {
	frames map[string][]Frame
}

// NewFrameProvider creates a provider over per-symbol frame series.
func NewFrameProvider(frames map[string][]Frame) *FrameProvider {
	return &FrameProvider{frames: frames}
}

// Features returns the observation vector for a symbol at a step.
func (p *FrameProvider) Features(symbol string, step int) []float64 {
	frame, ok := p.frame(symbol, step)
	if !ok {
		return make([]float64, FeatureSize)
	}
	return []float64{
		frame.Open, frame.High, frame.Low, frame.Close, frame.Volume,
		frame.MACD, frame.SignalLine, frame.BBUpper, frame.BBLower, frame.ATR,
	}
}

// Price returns the close price for a symbol at a step, or 1 when no
// data exists.
func (p *FrameProvider) Price(symbol string, step int) decimal.Decimal {
	frame, ok := p.frame(symbol, step)
	if !ok || frame.Close <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(frame.Close)
}

func (p *FrameProvider) frame(symbol string, step int) (Frame, bool) {
	series := p.frames[symbol]
	if len(series) == 0 {
		return Frame{}, false
	}
	if step >= len(series) {
		step = len(series) - 1
	}
	if step < 0 {
		step = 0
	}
	return series[step], true
}
