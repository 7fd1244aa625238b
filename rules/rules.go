// Package rules implements the if-then protocol editor: an ordered list of
// trigger/action rules under a protocol name.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrRuleNotFound is returned when a rule id is unknown.
var ErrRuleNotFound = errors.New("rule not found")

// Rule says: when If happens do Then, otherwise keep doing Else
type Rule struct {
	ID   string `json:"id" yaml:"id"`
	If   string `json:"if" yaml:"if"`
	Then string `json:"then" yaml:"then"`
	Else string `json:"else" yaml:"else"`
}

// Protocol is a named, ordered rule list
type Protocol struct {
	Name  string `json:"name" yaml:"protocol"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// NormalizeName upper-cases a protocol name and replaces whitespace with underscores
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return unicode.ToUpper(r)
	}, name)
}

// New creates a protocol with a normalized name and no rules
func New(name string) *Protocol {
	return &Protocol{Name: NormalizeName(name), Rules: []Rule{}}
}

// Rename sets a normalized protocol name
func (p *Protocol) Rename(name string) {
	p.Name = NormalizeName(name)
}

// Add appends a rule and returns it. An empty id gets a fresh one.
func (p *Protocol) Add(r Rule) Rule {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	p.Rules = append(p.Rules, r)
	return r
}

// Update replaces the rule with the same id
func (p *Protocol) Update(r Rule) error {
	for i := range p.Rules {
		if p.Rules[i].ID == r.ID {
			p.Rules[i] = r
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, r.ID)
}

// Remove deletes the rule with the given id
func (p *Protocol) Remove(id string) error {
	for i := range p.Rules {
		if p.Rules[i].ID == id {
			p.Rules = append(p.Rules[:i:i], p.Rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

// Complete returns the rules whose three fields are all filled in
func (p *Protocol) Complete() []Rule {
	var out []Rule
	for _, r := range p.Rules {
		if strings.TrimSpace(r.If) != "" && strings.TrimSpace(r.Then) != "" && strings.TrimSpace(r.Else) != "" {
			out = append(out, r)
		}
	}
	return out
}

// Decision is the outcome of evaluating a protocol against a situation
type Decision struct {
	Rule    Rule   `json:"rule"`
	Matched bool   `json:"matched"`
	Action  string `json:"action"`
}

// Evaluate checks every rule against the situation in order. A rule matches
// when its trigger text appears in the situation, ignoring case. Matched
// rules yield their Then action and the rest yield Else.
func (p *Protocol) Evaluate(situation string) []Decision {
	s := strings.ToLower(situation)
	out := make([]Decision, 0, len(p.Rules))
	for _, r := range p.Rules {
		trigger := strings.ToLower(strings.TrimSpace(r.If))
		d := Decision{Rule: r, Action: r.Else}
		if trigger != "" && strings.Contains(s, trigger) {
			d.Matched = true
			d.Action = r.Then
		}
		out = append(out, d)
	}
	return out
}

// Clone returns a deep copy
func (p *Protocol) Clone() *Protocol {
	return &Protocol{Name: p.Name, Rules: append([]Rule{}, p.Rules...)}
}

// Script renders the protocol as pseudo-code
func (p *Protocol) Script() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROTOCOL %s\n", p.Name)
	for i, r := range p.Rules {
		fmt.Fprintf(&b, "%02d IF %q\n   THEN %q\n   ELSE %q\n", i+1, r.If, r.Then, r.Else)
	}
	return b.String()
}
