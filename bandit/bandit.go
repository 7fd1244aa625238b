// Package bandit implements the epsilon-greedy value updater behind the
// "explore or exploit" tool.
package bandit

import (
	"math/rand/v2"

	"github.com/TFMV/tenlab/mathx"
)

// Alpha is the fixed learning-rate blend of the running estimate.
const Alpha = 0.1

// NoiseSpan is the width of the symmetric uniform reward noise.
const NoiseSpan = 30.0

// Action is one of the fixed choices the learner can make
type Action struct {
	ID   string  `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Mean float64 `json:"mean" yaml:"mean"`
}

// Actions returns the fixed action list. Exploitation ties go to the
// latest entry.
func Actions() []Action {
	return []Action{
		{ID: "safe", Name: "Keep the status quo", Mean: 40},
		{ID: "growth", Name: "Sharpen a skill", Mean: 60},
		{ID: "venture", Name: "Try the unknown", Mean: 85},
	}
}

// Params is the immutable configuration of the learner
type Params struct {
	// Epsilon is the exploration rate in percent
	Epsilon float64 `json:"epsilon" yaml:"epsilon" validate:"gte=0,lte=100"`
}

// DefaultParams returns the tool's opening configuration
func DefaultParams() Params {
	return Params{Epsilon: 20}
}

// Normalize clamps epsilon to [0,100]
func (p Params) Normalize() Params {
	p.Epsilon = mathx.Percent(p.Epsilon)
	return p
}

// Random is the uniform source used for exploration decisions
type Random interface {
	Float64() float64
	IntN(n int) int
}

// RewardSource produces the observed reward for an action
type RewardSource interface {
	Reward(a Action) float64
}

// Environment draws rewards as the action mean plus uniform noise in
// [-NoiseSpan/2, NoiseSpan/2)
type Environment struct {
	rng Random
}

// NewEnvironment creates a simulated environment over rng
func NewEnvironment(rng Random) *Environment {
	return &Environment{rng: rng}
}

// Reward implements RewardSource
func (e *Environment) Reward(a Action) float64 {
	return a.Mean + (e.rng.Float64()-0.5)*NoiseSpan
}

// Trial records one decision and its outcome
type Trial struct {
	Step     int     `json:"step"`
	Action   string  `json:"action"`
	Explored bool    `json:"explored"`
	Reward   float64 `json:"reward"`
	Estimate float64 `json:"estimate"`
}

// Learner keeps one running estimate per action
type Learner struct {
	params    Params
	actions   []Action
	estimates []float64
	pulls     []int
	steps     int
	rng       Random
	rewards   RewardSource
}

// New creates a learner. A nil rng uses a freshly seeded PCG source and a
// nil reward source uses the simulated Environment over that rng.
func New(p Params, rng Random, rewards RewardSource) *Learner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if rewards == nil {
		rewards = NewEnvironment(rng)
	}
	actions := Actions()
	return &Learner{
		params:    p.Normalize(),
		actions:   actions,
		estimates: make([]float64, len(actions)),
		pulls:     make([]int, len(actions)),
		rng:       rng,
		rewards:   rewards,
	}
}

// SetParams changes epsilon without forgetting what was learned
func (l *Learner) SetParams(p Params) {
	l.params = p.Normalize()
}

// Params returns the normalized parameters
func (l *Learner) Params() Params { return l.params }

// Reset forgets all estimates
func (l *Learner) Reset() {
	for i := range l.estimates {
		l.estimates[i] = 0
		l.pulls[i] = 0
	}
	l.steps = 0
}

// Greedy returns the index of the highest estimate; ties go to the highest index
func (l *Learner) Greedy() int {
	best := 0
	for i := 1; i < len(l.estimates); i++ {
		if l.estimates[i] >= l.estimates[best] {
			best = i
		}
	}
	return best
}

// Choose picks an action index and reports whether it was exploratory
func (l *Learner) Choose() (int, bool) {
	if l.rng.Float64()*100 < l.params.Epsilon {
		return l.rng.IntN(len(l.actions)), true
	}
	return l.Greedy(), false
}

// Update blends an observed reward into the estimate of action i
func (l *Learner) Update(i int, reward float64) float64 {
	reward = mathx.OrZero(reward)
	l.estimates[i] += Alpha * (reward - l.estimates[i])
	l.pulls[i]++
	return l.estimates[i]
}

// Step runs one trial: choose, observe, update
func (l *Learner) Step() Trial {
	i, explored := l.Choose()
	action := l.actions[i]
	reward := l.rewards.Reward(action)
	estimate := l.Update(i, reward)
	l.steps++
	return Trial{
		Step:     l.steps,
		Action:   action.ID,
		Explored: explored,
		Reward:   reward,
		Estimate: estimate,
	}
}

// Estimate is the learner's view of one action
type Estimate struct {
	Action Action  `json:"action"`
	Value  float64 `json:"value"`
	Pulls  int     `json:"pulls"`
}

// Snapshot is a copy of the learner state
type Snapshot struct {
	Params    Params     `json:"params"`
	Steps     int        `json:"steps"`
	Estimates []Estimate `json:"estimates"`
	Best      string     `json:"best"`
}

// Snapshot copies the learner state
func (l *Learner) Snapshot() Snapshot {
	est := make([]Estimate, len(l.actions))
	for i, a := range l.actions {
		est[i] = Estimate{Action: a, Value: l.estimates[i], Pulls: l.pulls[i]}
	}
	return Snapshot{
		Params:    l.params,
		Steps:     l.steps,
		Estimates: est,
		Best:      l.actions[l.Greedy()].ID,
	}
}
