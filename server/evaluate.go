package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/markov"
	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/presets"
	"github.com/TFMV/tenlab/ranking"
	"github.com/TFMV/tenlab/render"
	"github.com/TFMV/tenlab/rules"
	"github.com/TFMV/tenlab/tools"
	"github.com/TFMV/tenlab/verdict"
)

// ErrNoChart is returned for tools that have no chart
var ErrNoChart = errors.New("tool has no chart")

// Request bodies for the tools that take more than their parameter record

type markovRequest struct {
	markov.Params
	Seed  uint64 `json:"seed"`
	Steps int    `json:"steps" validate:"gte=0,lte=1000"`
}

type rankingRequest struct {
	Nodes []models.Node `json:"nodes" validate:"dive"`
	Edges []models.Edge `json:"edges"`
}

type banditRequest struct {
	bandit.Params
	Trials int    `json:"trials" validate:"gte=0,lte=10000"`
	Seed   uint64 `json:"seed"`
}

type descentRequest struct {
	descent.Params
	MaxSteps int `json:"max_steps" validate:"gte=0,lte=10000"`
}

type rulesRequest struct {
	Protocol  rules.Protocol `json:"protocol"`
	Situation string         `json:"situation"`
}

// Results for the tools whose engine output needs company

// MarkovResult is the stationary split plus one sample walk
type MarkovResult struct {
	Stationary markov.Stationary `json:"stationary"`
	Walk       string            `json:"walk"`
	Occupancy  float64           `json:"occupancy"`
}

// RankingResult is the ranked node list
type RankingResult struct {
	Results []ranking.Result `json:"results"`
}

// BanditResult is the learner after a run of trials
type BanditResult struct {
	Snapshot bandit.Snapshot `json:"snapshot"`
	Recent   []bandit.Trial  `json:"recent"`
}

// RulesResult is the protocol outcome for one situation
type RulesResult struct {
	Protocol  string           `json:"protocol"`
	Decisions []rules.Decision `json:"decisions"`
	Script    string           `json:"script"`
}

// EvaluateResponse is returned by the evaluate and preset endpoints
type EvaluateResponse struct {
	Tool    tools.Info      `json:"tool"`
	Preset  string          `json:"preset,omitempty"`
	Result  any             `json:"result"`
	Verdict verdict.Verdict `json:"verdict"`
}

const recentTrials = 50

// seeded returns a deterministic source for a non-zero seed, else nil so
// that the engine seeds itself
func seeded(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// evaluate decodes the request for tool id with decode and runs the engine
func (s *Server) evaluate(id tools.ID, decode func(any) error) (any, verdict.Verdict, error) {
	switch id {
	case tools.Bayes:
		p := calc.DefaultBayes()
		if err := decode(&p); err != nil {
			return nil, verdict.Verdict{}, err
		}
		r := calc.Bayes(p)
		return r, verdict.Bayes(r), nil

	case tools.Kelly:
		p := calc.DefaultKelly()
		if err := decode(&p); err != nil {
			return nil, verdict.Verdict{}, err
		}
		r := calc.Kelly(p)
		return r, verdict.Kelly(r), nil

	case tools.Confidence:
		p := calc.DefaultConfidence()
		if err := decode(&p); err != nil {
			return nil, verdict.Verdict{}, err
		}
		r := calc.Confidence(p)
		return r, verdict.Confidence(p.Normalize().SampleSize, r), nil

	case tools.Markov:
		req := markovRequest{Params: markov.DefaultParams(), Steps: markov.WalkSteps}
		if err := decode(&req); err != nil {
			return nil, verdict.Verdict{}, err
		}
		st := markov.Solve(req.Params)
		var src markov.Uniform
		if r := seeded(req.Seed); r != nil {
			src = r
		}
		walk := markov.WalkN(req.Params, src, req.Steps)
		return MarkovResult{Stationary: st, Walk: render.WalkStrip(walk), Occupancy: markov.Occupancy(walk)}, verdict.Markov(st), nil

	case tools.Ranking:
		var req rankingRequest
		if err := decode(&req); err != nil {
			return nil, verdict.Verdict{}, err
		}
		g, err := presets.Ranking{Name: "request", Nodes: req.Nodes, Edges: req.Edges}.Graph()
		if err != nil {
			return nil, verdict.Verdict{}, err
		}
		results := ranking.Rank(g)
		return RankingResult{Results: results}, verdict.Ranking(results), nil

	case tools.Frenzy:
		p := calc.DefaultFrenzy()
		if err := decode(&p); err != nil {
			return nil, verdict.Verdict{}, err
		}
		r := calc.Frenzy(p)
		return r, verdict.Frenzy(r), nil

	case tools.Correlation:
		var p calc.CorrelationParams
		if err := decode(&p); err != nil {
			return nil, verdict.Verdict{}, err
		}
		r := calc.Correlation(p)
		return r, verdict.Correlation(r), nil

	case tools.Bandit:
		req := banditRequest{Params: bandit.DefaultParams(), Trials: s.cfg.Animation.BatchSize}
		if err := decode(&req); err != nil {
			return nil, verdict.Verdict{}, err
		}
		var rng bandit.Random
		if r := seeded(req.Seed); r != nil {
			rng = r
		}
		l := bandit.New(req.Params, rng, nil)
		var recent []bandit.Trial
		for i := 0; i < req.Trials; i++ {
			recent = appendRecent(recent, l.Step())
		}
		return BanditResult{Snapshot: l.Snapshot(), Recent: recent}, verdict.Bandit(l.Params()), nil

	case tools.Descent:
		req := descentRequest{Params: descent.DefaultParams(), MaxSteps: s.cfg.Animation.MaxSteps}
		if err := decode(&req); err != nil {
			return nil, verdict.Verdict{}, err
		}
		st := descent.New(req.Params)
		st.Run(req.MaxSteps)
		state := st.Snapshot()
		return state, verdict.Descent(state), nil

	case tools.Rules:
		var req rulesRequest
		if err := decode(&req); err != nil {
			return nil, verdict.Verdict{}, err
		}
		p := req.Protocol.Clone()
		p.Rename(p.Name)
		return RulesResult{Protocol: p.Name, Decisions: p.Evaluate(req.Situation), Script: p.Script()}, verdict.Rules(p), nil
	}
	return nil, verdict.Verdict{}, fmt.Errorf("%w: %d", tools.ErrUnknownTool, int(id))
}

func appendRecent(recent []bandit.Trial, t bandit.Trial) []bandit.Trial {
	recent = append(recent, t)
	if len(recent) > recentTrials {
		recent = recent[len(recent)-recentTrials:]
	}
	return recent
}

// bindJSON decodes the request body into dst and validates it
func (s *Server) bindJSON(c *gin.Context) func(any) error {
	return func(dst any) error {
		if c.Request.ContentLength == 0 {
			return s.check(dst)
		}
		if err := c.ShouldBindJSON(dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return s.check(dst)
	}
}

// bindBytes decodes a JSON document into dst and validates it
func (s *Server) bindBytes(data []byte) func(any) error {
	return func(dst any) error {
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return s.check(dst)
	}
}

func (s *Server) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// HandleTools handles GET /api/tools
func (s *Server) HandleTools(c *gin.Context) {
	ids := tools.All()
	infos := make([]tools.Info, len(ids))
	for i, id := range ids {
		infos[i] = id.Info()
	}
	c.JSON(http.StatusOK, gin.H{"tools": infos})
}

// HandleEvaluate handles POST /api/tools/:tool/evaluate.
//
// The body is the parameter record of the tool. Missing fields keep the
// tool's opening values.
func (s *Server) HandleEvaluate(c *gin.Context) {
	logger := s.log(c, "HandleEvaluate")

	id, err := tools.Parse(c.Param("tool"))
	if err != nil {
		fail(c, logger, err)
		return
	}

	start := time.Now()
	result, v, err := s.evaluate(id, s.bindJSON(c))
	evaluationDuration.WithLabelValues(id.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		fail(c, logger, err)
		return
	}
	evaluationsTotal.WithLabelValues(id.String(), string(v.Tone)).Inc()

	logger.Info("evaluated", "tool", id.String(), "tone", v.Tone)
	c.JSON(http.StatusOK, EvaluateResponse{Tool: id.Info(), Result: result, Verdict: v})
}
