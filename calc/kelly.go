package calc

import (
	"math"

	"github.com/TFMV/tenlab/mathx"
)

// KellyParams describes a repeated binary bet
type KellyParams struct {
	// WinProb is the win probability in percent
	WinProb float64 `json:"win_prob" yaml:"p" validate:"gte=0,lte=100"`
	// Odds are decimal odds; the net payout per unit staked is Odds-1
	Odds     float64 `json:"odds" yaml:"o" validate:"gte=1,lte=100"`
	Bankroll float64 `json:"bankroll" yaml:"b" validate:"gte=0"`
}

// DefaultKelly returns the tool's opening configuration
func DefaultKelly() KellyParams {
	return KellyParams{WinProb: 55, Odds: 2.0, Bankroll: 1_000_000}
}

// Normalize clamps the record to usable ranges
func (p KellyParams) Normalize() KellyParams {
	p.WinProb = mathx.Percent(p.WinProb)
	p.Odds = mathx.Clamp(p.Odds, 1, 100)
	p.Bankroll = mathx.Clamp(p.Bankroll, 0, math.MaxFloat64)
	return p
}

// KellyResult is the recommended stake
type KellyResult struct {
	// ExpectedValue is the edge per unit staked
	ExpectedValue float64 `json:"expected_value"`
	// Fraction is the share of bankroll to stake, never negative
	Fraction float64 `json:"fraction"`
	Bet      float64 `json:"bet"`
	// BreakEvenOdds are only meaningful when the edge is positive
	BreakEvenOdds float64 `json:"break_even_odds"`
}

// Kelly computes f* = (b*p - q) / b with b = odds - 1
func Kelly(p KellyParams) KellyResult {
	p = p.Normalize()
	win := p.WinProb / 100
	lose := 1 - win
	b := p.Odds - 1

	res := KellyResult{ExpectedValue: win*b - lose}
	if b > 0 {
		res.Fraction = math.Max(0, (b*win-lose)/b)
	}
	res.Bet = math.Floor(p.Bankroll * res.Fraction)
	if res.ExpectedValue > 0 {
		res.BreakEvenOdds = mathx.SafeDiv(p.Odds, lose, 0)
	}
	return res
}
