package entities

// AnalysisRequest carries the market parameters for one analysis call.
// Immutable for the duration of the call.
type AnalysisRequest struct {
	SolUsdPrice        float64
	TokenAddress       string // compared case-insensitively
	TotalSupply        float64
	MarketCapThreshold float64
}

// Metric is a derived USD figure that may be not applicable for a row
// (wrong-direction swap, unparsable amount, zero divisor). The numeric
// path stays type-safe; the "N/A" string exists only on the wire.
type Metric struct {
	Value      float64
	Applicable bool
}

// ApplicableMetric wraps a computed value.
func ApplicableMetric(v float64) Metric {
	return Metric{Value: v, Applicable: true}
}

// NotApplicable returns the sentinel metric.
func NotApplicable() Metric {
	return Metric{}
}

// TransactionResult is the per-row valuation outcome. One instance per
// input row, in input order.
type TransactionResult struct {
	Signature      string
	HumanTime      string
	Token2UsdPrice Metric // rounded to 4 decimal places when applicable
	MarketCapUsd   Metric // rounded to 2 decimal places when applicable
}

// WalletContribution is emitted for a qualifying row whose market cap
// sits below the early-buyer threshold.
type WalletContribution struct {
	Wallet       string // lower-cased, or "unknown"
	SolAmount    float64
	MarketCapUsd float64 // unrounded observation
}

// WalletAccumulator folds contributions for a single wallet. Created on
// the wallet's first qualifying row, never deleted within a call.
type WalletAccumulator struct {
	Wallet      string
	SolInvested float64
	MarketCaps  []float64
}

// Add folds one contribution into the accumulator.
func (a *WalletAccumulator) Add(c WalletContribution) {
	a.SolInvested += c.SolAmount
	a.MarketCaps = append(a.MarketCaps, c.MarketCapUsd)
}

// AvgMarketCap returns the mean observed market cap, 0 when no
// observations were recorded.
func (a *WalletAccumulator) AvgMarketCap() float64 {
	if len(a.MarketCaps) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range a.MarketCaps {
		sum += m
	}
	return sum / float64(len(a.MarketCaps))
}
