package calc

import (
	"math"

	"github.com/TFMV/tenlab/mathx"
)

// FrenzyParams describe a market quote
type FrenzyParams struct {
	Price      float64 `json:"price" yaml:"price" validate:"gte=0"`
	FairValue  float64 `json:"fair_value" yaml:"fair" validate:"gt=0"`
	Volatility float64 `json:"volatility" yaml:"vol" validate:"gte=0,lte=100"`
}

// DefaultFrenzy returns the tool's opening configuration
func DefaultFrenzy() FrenzyParams {
	return FrenzyParams{Price: 100, FairValue: 100, Volatility: 20}
}

// Normalize clamps the record to usable ranges
func (p FrenzyParams) Normalize() FrenzyParams {
	p.Price = mathx.Clamp(p.Price, 0, math.MaxFloat64)
	p.FairValue = mathx.Clamp(p.FairValue, 0, math.MaxFloat64)
	p.Volatility = mathx.Percent(p.Volatility)
	return p
}

// FrenzyResult is the heat of the market
type FrenzyResult struct {
	// Deviation of price from fair value, in percent of fair value
	Deviation float64 `json:"deviation"`
	// Amplifier is the volatility multiplier shown to the user
	Amplifier float64 `json:"amplifier"`
	// Heat is 0 (panic) .. 50 (calm) .. 100 (mania)
	Heat float64 `json:"heat"`
}

// Frenzy scores 50 + deviation*(1+vol/50), clamped to [0,100].
// A zero fair value has no reference point and reads as calm.
func Frenzy(p FrenzyParams) FrenzyResult {
	p = p.Normalize()
	dev := mathx.SafeDiv(p.Price-p.FairValue, p.FairValue, 0) * 100
	return FrenzyResult{
		Deviation: dev,
		Amplifier: p.Volatility/20 + 1,
		Heat:      mathx.Percent(50 + dev*(1+p.Volatility/50)),
	}
}
