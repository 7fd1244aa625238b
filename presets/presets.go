// Package presets holds the canned scenarios of every tool.
//
// A preset is a complete parameter record. Applying one replaces the tool's
// configuration as a whole; there is no field-by-field merge, so a preset can
// never be half applied.
package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/markov"
	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/rules"
	"github.com/TFMV/tenlab/tools"
)

//go:embed presets.yaml
var builtin []byte

// ErrUnknownPreset is returned when no preset matches a name or index.
var ErrUnknownPreset = errors.New("unknown preset")

// Bayes is a Bayes scenario
type Bayes struct {
	Name             string `yaml:"name" json:"name"`
	calc.BayesParams `yaml:",inline" json:"params"`
}

// Kelly is a Kelly scenario
type Kelly struct {
	Name             string `yaml:"name" json:"name"`
	Insight          string `yaml:"insight" json:"insight"`
	calc.KellyParams `yaml:",inline" json:"params"`
}

// Confidence is a sample scenario
type Confidence struct {
	Name                  string `yaml:"name" json:"name"`
	calc.ConfidenceParams `yaml:",inline" json:"params"`
}

// Markov is a two-state habit scenario
type Markov struct {
	Name          string `yaml:"name" json:"name"`
	Insight       string `yaml:"insight" json:"insight"`
	markov.Params `yaml:",inline" json:"params"`
}

// Ranking is a trust network scenario
type Ranking struct {
	Name    string        `yaml:"name" json:"name"`
	Insight string        `yaml:"insight" json:"insight"`
	Nodes   []models.Node `yaml:"nodes" json:"nodes"`
	Edges   []models.Edge `yaml:"edges" json:"edges"`
}

// Frenzy is a market scenario
type Frenzy struct {
	Name              string `yaml:"name" json:"name"`
	Insight           string `yaml:"insight" json:"insight"`
	calc.FrenzyParams `yaml:",inline" json:"params"`
}

// Correlation is a point set scenario
type Correlation struct {
	Name                   string `yaml:"name" json:"name"`
	Insight                string `yaml:"insight" json:"insight"`
	calc.CorrelationParams `yaml:",inline" json:"params"`
}

// Bandit is an exploration scenario
type Bandit struct {
	Name          string `yaml:"name" json:"name"`
	bandit.Params `yaml:",inline" json:"params"`
}

// Descent is a descent scenario
type Descent struct {
	Name           string `yaml:"name" json:"name"`
	XLabel         string `yaml:"x_label" json:"x_label"`
	TargetLabel    string `yaml:"target_label" json:"target_label"`
	Insight        string `yaml:"insight" json:"insight"`
	descent.Params `yaml:",inline" json:"params"`
}

// Rules is a protocol scenario
type Rules struct {
	Name           string `yaml:"name" json:"name"`
	rules.Protocol `yaml:",inline" json:"protocol"`
}

// Set is the full preset catalog
type Set struct {
	Bayes       []Bayes       `yaml:"bayes" json:"bayes"`
	Kelly       []Kelly       `yaml:"kelly" json:"kelly"`
	Confidence  []Confidence  `yaml:"confidence" json:"confidence"`
	Markov      []Markov      `yaml:"markov" json:"markov"`
	Ranking     []Ranking     `yaml:"ranking" json:"ranking"`
	Frenzy      []Frenzy      `yaml:"frenzy" json:"frenzy"`
	Correlation []Correlation `yaml:"correlation" json:"correlation"`
	Bandit      []Bandit      `yaml:"bandit" json:"bandit"`
	Descent     []Descent     `yaml:"descent" json:"descent"`
	Rules       []Rules       `yaml:"rules" json:"rules"`
}

// Builtin returns the embedded catalog
func Builtin() (*Set, error) {
	return Parse(builtin)
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error parsing presets: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every preset is named, in range, and that every
// ranking scenario builds a valid graph
func (s *Set) Validate() error {
	for _, id := range tools.All() {
		names := s.Names(id)
		for i, n := range names {
			if strings.TrimSpace(n) == "" {
				return fmt.Errorf("%s preset %d: missing name", id, i)
			}
		}
	}
	for _, p := range s.Markov {
		if p.Params != p.Params.Normalize() {
			return fmt.Errorf("markov preset %q: probabilities out of range", p.Name)
		}
	}
	for _, p := range s.Descent {
		if p.Params != p.Params.Normalize() {
			return fmt.Errorf("descent preset %q: parameters out of range", p.Name)
		}
	}
	for _, p := range s.Bandit {
		if p.Params != p.Params.Normalize() {
			return fmt.Errorf("bandit preset %q: epsilon out of range", p.Name)
		}
	}
	for _, p := range s.Ranking {
		if _, err := p.Graph(); err != nil {
			return fmt.Errorf("ranking preset %q: %w", p.Name, err)
		}
	}
	return nil
}

// Names lists the preset names of a tool in catalog order
func (s *Set) Names(id tools.ID) []string {
	var names []string
	add := func(n string) { names = append(names, n) }
	switch id {
	case tools.Bayes:
		for _, p := range s.Bayes {
			add(p.Name)
		}
	case tools.Kelly:
		for _, p := range s.Kelly {
			add(p.Name)
		}
	case tools.Confidence:
		for _, p := range s.Confidence {
			add(p.Name)
		}
	case tools.Markov:
		for _, p := range s.Markov {
			add(p.Name)
		}
	case tools.Ranking:
		for _, p := range s.Ranking {
			add(p.Name)
		}
	case tools.Frenzy:
		for _, p := range s.Frenzy {
			add(p.Name)
		}
	case tools.Correlation:
		for _, p := range s.Correlation {
			add(p.Name)
		}
	case tools.Bandit:
		for _, p := range s.Bandit {
			add(p.Name)
		}
	case tools.Descent:
		for _, p := range s.Descent {
			add(p.Name)
		}
	case tools.Rules:
		for _, p := range s.Rules {
			add(p.Name)
		}
	}
	return names
}

// Index resolves a preset by 1-based position or case-insensitive name
func (s *Set) Index(id tools.ID, key string) (int, error) {
	names := s.Names(id)
	var pos int
	if _, err := fmt.Sscanf(key, "%d", &pos); err == nil && fmt.Sprint(pos) == strings.TrimSpace(key) {
		if pos >= 1 && pos <= len(names) {
			return pos - 1, nil
		}
		return 0, fmt.Errorf("%w: %s #%d", ErrUnknownPreset, id, pos)
	}
	for i, n := range names {
		if strings.EqualFold(n, strings.TrimSpace(key)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownPreset, id, key)
}

// Graph builds a fresh graph from the scenario. Either every node and edge
// is accepted or an error is returned and nothing is kept.
func (r Ranking) Graph() (*models.Graph, error) {
	g := models.NewGraph(r.Name)
	for _, n := range r.Nodes {
		node := n
		if err := g.AddNode(&node); err != nil {
			return nil, err
		}
	}
	for _, e := range r.Edges {
		if err := g.AddEdge(e.Source, e.Target); err != nil {
			return nil, err
		}
	}
	return g, nil
}
