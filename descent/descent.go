// Package descent simulates single-variable gradient descent on a fixed
// quartic loss with two valleys.
//
// The Stepper is a plain state machine. Timers and animation cadence belong
// to the caller (see package scheduler); the stepper only decides whether to
// continue or halt.
package descent

import (
	"fmt"
	"math"

	"github.com/TFMV/tenlab/mathx"
)

const (
	// Bound is the position magnitude past which a step counts as divergence.
	Bound = 2.2
	// Epsilon is the displacement below which a step counts as convergence.
	Epsilon = 1e-4

	// MinRate and MaxRate bound the learning rate.
	MinRate = 0.01
	MaxRate = 0.6
	// MinPosition and MaxPosition bound the start position.
	MinPosition = -2.1
	MaxPosition = 2.1
)

// Loss is f(x) = x^4 - 2x^2 + 0.5x
func Loss(x float64) float64 {
	return math.Pow(x, 4) - 2*x*x + 0.5*x
}

// Gradient is f'(x) = 4x^3 - 4x + 0.5
func Gradient(x float64) float64 {
	return 4*x*x*x - 4*x + 0.5
}

// Params is the immutable configuration of a descent run
type Params struct {
	LearningRate float64 `json:"learning_rate" yaml:"rate" validate:"gte=0.01,lte=0.6"`
	Initial      float64 `json:"initial" yaml:"x" validate:"gte=-2.1,lte=2.1"`
}

// DefaultParams returns the tool's opening configuration
func DefaultParams() Params {
	return Params{LearningRate: 0.1, Initial: -1.8}
}

// Normalize clamps the rate and start position to their allowed ranges
func (p Params) Normalize() Params {
	p.LearningRate = mathx.Clamp(p.LearningRate, MinRate, MaxRate)
	p.Initial = mathx.Clamp(p.Initial, MinPosition, MaxPosition)
	return p
}

// Status is the stepper state
type Status int

const (
	// Idle is a stepper that is not animating and has not halted.
	Idle Status = iota
	// Running is a stepper being advanced on the animation interval.
	Running
	// Converged means the last step moved less than Epsilon.
	Converged
	// Diverged means the last step would have left [-Bound, Bound].
	Diverged
)

// String returns the lowercase status name
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// Halted reports whether the status is terminal
func (s Status) Halted() bool {
	return s == Converged || s == Diverged
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(b []byte) error {
	for _, st := range []Status{Idle, Running, Converged, Diverged} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// State is a read-only snapshot of a stepper
type State struct {
	Params   Params    `json:"params"`
	Position float64   `json:"position"`
	Loss     float64   `json:"loss"`
	Gradient float64   `json:"gradient"`
	Steps    int       `json:"steps"`
	Status   Status    `json:"status"`
	History  []float64 `json:"history"`
}

// Stepper walks downhill one update at a time.
// It is not safe for concurrent use; callers that drive it from a timer
// serialize access themselves.
type Stepper struct {
	params  Params
	x       float64
	history []float64
	steps   int
	status  Status
}

// New creates an idle stepper positioned at the configured start
func New(p Params) *Stepper {
	s := &Stepper{}
	s.Configure(p)
	return s
}

// Configure replaces the parameters and resets the run
func (s *Stepper) Configure(p Params) {
	s.params = p.Normalize()
	s.Reset()
}

// Reset returns to Idle at the configured start with a one-entry history
func (s *Stepper) Reset() {
	s.x = s.params.Initial
	s.history = []float64{s.x}
	s.steps = 0
	s.status = Idle
}

// Start moves an idle stepper to Running. Halted steppers need a Reset first.
func (s *Stepper) Start() bool {
	if s.status != Idle {
		return s.status == Running
	}
	s.status = Running
	return true
}

// Pause stops automatic stepping without losing the position
func (s *Stepper) Pause() {
	if s.status == Running {
		s.status = Idle
	}
}

// Step applies one update x <- x - rate*f'(x) and returns the new status.
// A step that would leave [-Bound, Bound] or move less than Epsilon halts the
// run and leaves the position where it was.
func (s *Stepper) Step() Status {
	if s.status.Halted() {
		return s.status
	}

	prev := s.x
	next := prev - s.params.LearningRate*Gradient(prev)

	switch {
	case !mathx.Finite(next) || math.Abs(next) > Bound:
		s.status = Diverged
		return s.status
	case math.Abs(next-prev) < Epsilon:
		s.status = Converged
		return s.status
	}

	s.x = next
	s.history = append(s.history, next)
	s.steps++
	return s.status
}

// Run starts the stepper and steps until it halts or maxSteps updates have
// been applied. It returns the final status.
func (s *Stepper) Run(maxSteps int) Status {
	s.Start()
	for i := 0; i < maxSteps && !s.status.Halted(); i++ {
		s.Step()
	}
	return s.status
}

// Position returns the current x
func (s *Stepper) Position() float64 { return s.x }

// Status returns the current state
func (s *Stepper) Status() Status { return s.status }

// Params returns the normalized parameters
func (s *Stepper) Params() Params { return s.params }

// Steps returns how many updates have been applied since the last reset
func (s *Stepper) Steps() int { return s.steps }

// Snapshot copies the stepper state
func (s *Stepper) Snapshot() State {
	return State{
		Params:   s.params,
		Position: s.x,
		Loss:     Loss(s.x),
		Gradient: Gradient(s.x),
		Steps:    s.steps,
		Status:   s.status,
		History:  append([]float64(nil), s.history...),
	}
}
