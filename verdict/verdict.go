// Package verdict maps engine results to the canned one-line conclusions the
// dashboard shows next to each visualization. Every table is a plain
// threshold lookup.
package verdict

import (
	"fmt"
	"math"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/markov"
	"github.com/TFMV/tenlab/ranking"
	"github.com/TFMV/tenlab/rules"
)

// Tone colors a verdict
type Tone string

const (
	Good    Tone = "good"
	Caution Tone = "caution"
	Bad     Tone = "bad"
	Neutral Tone = "neutral"
	Info    Tone = "info"
)

// Verdict is a short conclusion plus an explanation
type Verdict struct {
	Tone   Tone   `json:"tone"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Bayes judges a posterior in percent
func Bayes(r calc.BayesResult) Verdict {
	switch {
	case r.Posterior > 80:
		return Verdict{Good, "Believe it and act", "Confidence is very high. The time for doubt is over."}
	case r.Posterior > 50:
		return Verdict{Caution, "Possible", "Better than a coin flip, but look for one more piece of evidence."}
	default:
		return Verdict{Bad, "Wait and watch", "Confidence is low. The evidence is weak or the starting belief was too optimistic."}
	}
}

// Kelly judges a bet
func Kelly(r calc.KellyResult) Verdict {
	switch {
	case r.ExpectedValue <= 0:
		return Verdict{Bad, "Walk away: this bet has no edge", "The expected value is zero or negative. Any stake is a slow loss."}
	case r.Fraction > 0.4:
		return Verdict{Good, "Press the edge",
			fmt.Sprintf("Stake %d%% of the bankroll. The math supports a bold position.", int(math.Round(r.Fraction*100)))}
	default:
		return Verdict{Info, "Small stake approved", "The edge is positive but thin. Keep risk small and wait for a better spot."}
	}
}

// Confidence judges an interval over a sample of size n
func Confidence(n int, r calc.ConfidenceResult) Verdict {
	switch {
	case n < 30:
		return Verdict{Bad, "Too early to believe", "The sample is too small. This may just be noise."}
	case r.Margin > 10:
		return Verdict{Caution, "Use as a rough guide", "A trend is visible, but the number can still swing widely."}
	default:
		return Verdict{Good, "This holds up", "There is enough data for the figure to reflect reality."}
	}
}

// Markov judges the long-run share of the good state
func Markov(s markov.Stationary) Verdict {
	switch {
	case s.A > 75:
		return Verdict{Good, "Built to thrive", "Most of the time is spent in the good state. Trust your momentum."}
	case s.A > 40:
		return Verdict{Caution, "A life of waves", "Good and bad spells alternate. The key is how fast you bounce back."}
	default:
		return Verdict{Bad, "Structural change needed", "Stagnation becomes the default. Change the environment or the habit."}
	}
}

// Ranking names the most trusted node
func Ranking(results []ranking.Result) Verdict {
	top, ok := ranking.Top(results)
	if !ok {
		return Verdict{Neutral, "No network yet", "Add people and trust links to see who holds the influence."}
	}
	return Verdict{Good, fmt.Sprintf("%s is the hidden hub", top.Label),
		fmt.Sprintf("%s holds %.1f%% of the influence. The score comes from the quality of incoming trust, not the amount of visibility.",
			top.Label, top.Score*100)}
}

// Frenzy judges a market heat score
func Frenzy(r calc.FrenzyResult) Verdict {
	switch {
	case r.Heat > 80:
		return Verdict{Bad, "Sell: peak euphoria", "The market ignores value. Head for the exit while the crowd still believes."}
	case r.Heat < 20:
		return Verdict{Good, "Buy: peak panic", "Fear rules and good assets are dumped cheaply. This is the opportunity."}
	default:
		return Verdict{Neutral, "Hold", "Price matches value. Wait for the next distortion."}
	}
}

// Correlation judges Pearson's r
func Correlation(r calc.CorrelationResult) Verdict {
	abs := math.Abs(r.R)
	switch {
	case abs > 0.8:
		detail := "When one rises the other falls, like a perfect seesaw."
		if r.R > 0 {
			detail = "When one rises so does the other. They move as if chained."
		}
		return Verdict{Bad, "Fully synced", detail}
	case abs > 0.4:
		return Verdict{Caution, "Pattern found", "There is a loose link. Your habits connect these two without you noticing."}
	default:
		return Verdict{Good, "Unpredictable", "No mathematical thread ties these behaviors together."}
	}
}

// Bandit judges an exploration rate
func Bandit(p bandit.Params) Verdict {
	switch {
	case p.Epsilon > 50:
		return Verdict{Bad, "Wandering", "Too much experimenting leaves no time to harvest results."}
	case p.Epsilon < 5:
		return Verdict{Caution, "Evolution has stopped", "Clinging to past wins hides future chances. Make room for risk."}
	default:
		return Verdict{Good, "Balanced evolution", "Exploit your strengths while still probing new options."}
	}
}

// Descent judges a descent run
func Descent(s descent.State) Verdict {
	switch {
	case s.Params.LearningRate > 0.45:
		return Verdict{Bad, "Steps are too large", "Each update overshoots the valley and lands on the opposite slope."}
	case s.Params.LearningRate < 0.03:
		return Verdict{Caution, "Too timid", "Steps are so small that nothing changes."}
	case math.Abs(s.Gradient) < 0.1:
		return Verdict{Good, "This is the optimum", "The loss is as low as it gets here. Hold the position."}
	default:
		return Verdict{Info, "On the way down", "The direction is right. Keep improving toward the valley floor."}
	}
}

// Rules judges a protocol by its size
func Rules(p *rules.Protocol) Verdict {
	switch n := len(p.Rules); {
	case n == 0:
		return Verdict{Neutral, "Fill the logic gap", "Hesitation burns energy. Turn decisions into simple if-then rules."}
	case n < 3:
		return Verdict{Caution, "Sharpen the protocol", "There is still room for doubt. Cover more situations with rules."}
	default:
		return Verdict{Good, "Execute the protocol", "The rule tree is complete. Follow it without deliberating."}
	}
}
