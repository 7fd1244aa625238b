package calc

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TFMV/tenlab/mathx"
)

// DefaultLevel is the two-sided confidence level of the interval.
const DefaultLevel = 0.95

// ConfidenceParams describe an observed proportion
type ConfidenceParams struct {
	SampleSize int `json:"sample_size" yaml:"n" validate:"gte=0"`
	Successes  int `json:"successes" yaml:"k" validate:"gte=0"`
	// Level defaults to DefaultLevel when zero
	Level float64 `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// DefaultConfidence returns the tool's opening configuration
func DefaultConfidence() ConfidenceParams {
	return ConfidenceParams{SampleSize: 100, Successes: 60, Level: DefaultLevel}
}

// Normalize keeps successes within the sample and fills in the level
func (p ConfidenceParams) Normalize() ConfidenceParams {
	if p.SampleSize < 0 {
		p.SampleSize = 0
	}
	if p.Successes < 0 {
		p.Successes = 0
	}
	if p.Successes > p.SampleSize {
		p.Successes = p.SampleSize
	}
	if !(p.Level > 0 && p.Level < 1) {
		p.Level = DefaultLevel
	}
	return p
}

// ConfidenceResult is a normal-approximation interval, in percent
type ConfidenceResult struct {
	Proportion float64 `json:"proportion"`
	Margin     float64 `json:"margin"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Z          float64 `json:"z"`
}

// ZScore returns the two-sided standard normal quantile for level
func ZScore(level float64) float64 {
	return distuv.UnitNormal.Quantile(1 - (1-level)/2)
}

// Confidence computes p +/- z*sqrt(p(1-p)/n) clamped to [0,100].
// An empty sample yields the zero result.
func Confidence(p ConfidenceParams) ConfidenceResult {
	p = p.Normalize()
	if p.SampleSize == 0 {
		return ConfidenceResult{}
	}

	n := float64(p.SampleSize)
	prop := float64(p.Successes) / n
	z := ZScore(p.Level)
	moe := z * math.Sqrt(prop*(1-prop)/n)

	return ConfidenceResult{
		Proportion: prop * 100,
		Margin:     moe * 100,
		Lower:      mathx.Percent((prop - moe) * 100),
		Upper:      mathx.Percent((prop + moe) * 100),
		Z:          z,
	}
}
