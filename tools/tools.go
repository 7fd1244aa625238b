// Package tools enumerates the calculators of the dashboard.
package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTool is returned when a name does not match any tool.
var ErrUnknownTool = errors.New("unknown tool")

// ID identifies one calculator. The set is closed; switches over ID are
// expected to list every value.
type ID int

const (
	Bayes ID = iota
	Kelly
	Confidence
	Markov
	Ranking
	Frenzy
	Correlation
	Bandit
	Descent
	Rules

	count
)

// Info is the static description of a tool
type Info struct {
	ID       ID     `json:"-"`
	Slug     string `json:"slug"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Formula  string `json:"formula"`
}

var catalog = [count]Info{
	Bayes:       {Bayes, "bayes", "01", "Bayes' theorem", "Update a belief with evidence", "P(A|B) = P(B|A)P(A) / P(B)"},
	Kelly:       {Kelly, "kelly", "02", "Kelly criterion", "Size a bet to the edge", "f* = (bp - q) / b"},
	Confidence:  {Confidence, "confidence", "03", "Confidence interval", "How far to trust a sample", "p ± z·√(p(1-p)/n)"},
	Markov:      {Markov, "markov", "04", "Markov chain", "Where habits settle in the long run", "π_A = p_BA / (p_BA + p_AB)"},
	Ranking:     {Ranking, "ranking", "05", "PageRank", "Who is trusted by the trusted", "PR(i) = (1-d)/N + d·Σ PR(j)/L(j)"},
	Frenzy:      {Frenzy, "frenzy", "06", "Market frenzy", "Price against value under stress", "heat = 50 + dev·(1 + σ/50)"},
	Correlation: {Correlation, "correlation", "07", "Correlation", "Do two behaviors move together", "r = Σ(dx·dy) / √(Σdx²·Σdy²)"},
	Bandit:      {Bandit, "bandit", "08", "Q-learning", "Explore or exploit", "Q ← Q + α(r - Q)"},
	Descent:     {Descent, "descent", "09", "Gradient descent", "Walk downhill to the optimum", "x ← x - η·f'(x)"},
	Rules:       {Rules, "rules", "10", "If-then rules", "Replace willpower with protocol", "IF trigger THEN action ELSE routine"},
}

// All returns every tool in display order
func All() []ID {
	ids := make([]ID, 0, count)
	for i := ID(0); i < count; i++ {
		ids = append(ids, i)
	}
	return ids
}

// Info returns the static description of the tool
func (id ID) Info() Info {
	if !id.Valid() {
		return Info{ID: id, Slug: "unknown"}
	}
	return catalog[id]
}

// Valid reports whether id names a tool
func (id ID) Valid() bool {
	return id >= 0 && id < count
}

func (id ID) String() string {
	return id.Info().Slug
}

// MarshalText implements encoding.TextMarshaler
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTool, int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// aliases keeps the slugs of the original dashboard views working
var aliases = map[string]ID{
	"bayesian":  Bayes,
	"betting":   Kelly,
	"logistic":  Kelly,
	"pagerank":  Ranking,
	"market":    Frenzy,
	"qlearning": Bandit,
	"gradient":  Descent,
	"ifthen":    Rules,
}

// Parse resolves a slug, alias, or number ("05") to a tool
func Parse(s string) (ID, error) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "-tool"))
	for _, info := range catalog {
		if info.Slug == key || info.Number == key {
			return info.ID, nil
		}
	}
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}
