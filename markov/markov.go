// Package markov solves the two-state chain used by the "good state / bad
// state" tool and generates an illustrative random walk over it.
package markov

import (
	"math/rand/v2"

	"github.com/TFMV/tenlab/mathx"
)

// WalkSteps is the number of transitions in an illustrative walk.
const WalkSteps = 40

// State is one of the two chain states
type State int

const (
	// StateA is the "good" state; every walk starts here.
	StateA State = iota
	// StateB is the "bad" state.
	StateB
)

func (s State) String() string {
	if s == StateA {
		return "A"
	}
	return "B"
}

// Params is the immutable parameter record of the solver.
// Probabilities are percentages in [0,100].
type Params struct {
	NameA     string  `json:"name_a" yaml:"name_a"`
	NameB     string  `json:"name_b" yaml:"name_b"`
	Retention float64 `json:"retention" yaml:"paa" validate:"gte=0,lte=100"`
	Recovery  float64 `json:"recovery" yaml:"pba" validate:"gte=0,lte=100"`
}

// DefaultParams returns the tool's opening configuration
func DefaultParams() Params {
	return Params{NameA: "Thriving", NameB: "Stalled", Retention: 70, Recovery: 30}
}

// Normalize clamps both probabilities to [0,100]
func (p Params) Normalize() Params {
	p.Retention = mathx.Percent(p.Retention)
	p.Recovery = mathx.Percent(p.Recovery)
	return p
}

// Stationary is the long-run share of time spent in each state, in percent
type Stationary struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	// Degenerate is set when neither state can leave itself toward the
	// other. The split is then a compatibility tie-break, not a derived
	// stationary distribution.
	Degenerate bool `json:"degenerate"`
}

// Solve computes the stationary distribution in closed form
func Solve(p Params) Stationary {
	p = p.Normalize()
	leave := (100 - p.Retention) / 100
	back := p.Recovery / 100
	den := leave + back

	if den == 0 {
		// both states absorbing: keep the historical tie-break
		if p.Retention > 0 {
			return Stationary{A: 100, B: 0, Degenerate: true}
		}
		return Stationary{A: 0, B: 100, Degenerate: true}
	}

	piA := back / den
	return Stationary{A: piA * 100, B: (1 - piA) * 100}
}

// Uniform yields draws in [0,1)
type Uniform interface {
	Float64() float64
}

// Walk simulates WalkSteps transitions starting in StateA.
// The returned slice holds the start state followed by one state per step.
func Walk(p Params, src Uniform) []State {
	return WalkN(p, src, WalkSteps)
}

// WalkN simulates steps transitions starting in StateA
func WalkN(p Params, src Uniform, steps int) []State {
	p = p.Normalize()
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if steps < 0 {
		steps = 0
	}

	current := StateA
	history := make([]State, 0, steps+1)
	history = append(history, current)
	for i := 0; i < steps; i++ {
		u := src.Float64() * 100
		if current == StateA {
			if u > p.Retention {
				current = StateB
			}
		} else if u < p.Recovery {
			current = StateA
		}
		history = append(history, current)
	}
	return history
}

// Occupancy returns the fraction of the walk spent in StateA, in percent
func Occupancy(walk []State) float64 {
	if len(walk) == 0 {
		return 0
	}
	a := 0
	for _, s := range walk {
		if s == StateA {
			a++
		}
	}
	return float64(a) / float64(len(walk)) * 100
}
