package calc

import "github.com/TFMV/tenlab/mathx"

// BayesParams are percentages in [0,100]
type BayesParams struct {
	Prior         float64 `json:"prior" yaml:"prior" validate:"gte=0,lte=100"`
	Likelihood    float64 `json:"likelihood" yaml:"likelihood" validate:"gte=0,lte=100"`
	FalsePositive float64 `json:"false_positive" yaml:"false_positive" validate:"gte=0,lte=100"`
}

// DefaultBayes returns the tool's opening configuration
func DefaultBayes() BayesParams {
	return BayesParams{Prior: 50, Likelihood: 80, FalsePositive: 10}
}

// Normalize clamps every field to [0,100]
func (p BayesParams) Normalize() BayesParams {
	p.Prior = mathx.Percent(p.Prior)
	p.Likelihood = mathx.Percent(p.Likelihood)
	p.FalsePositive = mathx.Percent(p.FalsePositive)
	return p
}

// BayesResult is the updated belief
type BayesResult struct {
	Posterior float64 `json:"posterior"`
	// Evidence is P(B), the overall chance of seeing the evidence, in percent
	Evidence float64 `json:"evidence"`
}

// Bayes computes P(A|B) = P(B|A)P(A) / (P(B|A)P(A) + P(B|!A)(1-P(A)))
func Bayes(p BayesParams) BayesResult {
	p = p.Normalize()
	pa := p.Prior / 100
	pba := p.Likelihood / 100
	pbn := p.FalsePositive / 100

	num := pba * pa
	den := num + pbn*(1-pa)
	return BayesResult{
		Posterior: mathx.SafeDiv(num, den, 0) * 100,
		Evidence:  den * 100,
	}
}
