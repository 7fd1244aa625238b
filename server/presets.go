package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/markov"
	"github.com/TFMV/tenlab/render"
	"github.com/TFMV/tenlab/tools"
)

// presetSeed makes preset walks and trial runs repeatable so they can be cached
const presetSeed = 1

// presetRequest returns the evaluate body equivalent to preset idx of tool id
func (s *Server) presetRequest(id tools.ID, idx int) (string, any) {
	set := s.presets
	switch id {
	case tools.Bayes:
		p := set.Bayes[idx]
		return p.Name, p.BayesParams
	case tools.Kelly:
		p := set.Kelly[idx]
		return p.Name, p.KellyParams
	case tools.Confidence:
		p := set.Confidence[idx]
		return p.Name, p.ConfidenceParams
	case tools.Markov:
		p := set.Markov[idx]
		return p.Name, markovRequest{Params: p.Params, Seed: presetSeed, Steps: markov.WalkSteps}
	case tools.Ranking:
		p := set.Ranking[idx]
		return p.Name, rankingRequest{Nodes: p.Nodes, Edges: p.Edges}
	case tools.Frenzy:
		p := set.Frenzy[idx]
		return p.Name, p.FrenzyParams
	case tools.Correlation:
		p := set.Correlation[idx]
		return p.Name, p.CorrelationParams
	case tools.Bandit:
		p := set.Bandit[idx]
		return p.Name, banditRequest{Params: p.Params, Trials: s.cfg.Animation.BatchSize, Seed: presetSeed}
	case tools.Descent:
		p := set.Descent[idx]
		return p.Name, descentRequest{Params: p.Params, MaxSteps: s.cfg.Animation.MaxSteps}
	case tools.Rules:
		p := set.Rules[idx]
		return p.Name, rulesRequest{Protocol: *p.Protocol.Clone()}
	}
	return "", nil
}

// resolvePreset parses the :tool and :preset path parameters
func (s *Server) resolvePreset(c *gin.Context) (tools.ID, int, error) {
	id, err := tools.Parse(c.Param("tool"))
	if err != nil {
		return 0, 0, err
	}
	idx, err := s.presets.Index(id, c.Param("preset"))
	if err != nil {
		return 0, 0, err
	}
	return id, idx, nil
}

// HandlePresetNames handles GET /api/presets/:tool
func (s *Server) HandlePresetNames(c *gin.Context) {
	logger := s.log(c, "HandlePresetNames")
	id, err := tools.Parse(c.Param("tool"))
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": id.Info(), "presets": s.presets.Names(id)})
}

// HandlePreset handles GET /api/presets/:tool/:preset.
//
// The preset is evaluated through the same path as a POSTed body, so the
// response has the shape of HandleEvaluate plus the request it stands for.
func (s *Server) HandlePreset(c *gin.Context) {
	logger := s.log(c, "HandlePreset")

	id, idx, err := s.resolvePreset(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	name, body := s.presetRequest(id, idx)
	data, err := json.Marshal(body)
	if err != nil {
		fail(c, logger, fmt.Errorf("encode preset: %w", err))
		return
	}
	result, v, err := s.evaluate(id, s.bindBytes(data))
	if err != nil {
		fail(c, logger, fmt.Errorf("preset %s/%s: %w", id, name, err))
		return
	}
	evaluationsTotal.WithLabelValues(id.String(), string(v.Tone)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"request":  json.RawMessage(data),
		"response": EvaluateResponse{Tool: id.Info(), Preset: name, Result: result, Verdict: v},
	})
}

// HandlePresetSVG handles GET /api/presets/:tool/:preset/svg
func (s *Server) HandlePresetSVG(c *gin.Context) {
	logger := s.log(c, "HandlePresetSVG")

	id, idx, err := s.resolvePreset(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	key := fmt.Sprintf("preset/%s/%d", id, idx)
	svg, err := s.cached(key, func() ([]byte, error) { return s.presetChart(id, idx) })
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (s *Server) presetChart(id tools.ID, idx int) ([]byte, error) {
	opts := s.renderOptions("svg")
	set := s.presets
	switch id {
	case tools.Ranking:
		g, err := set.Ranking[idx].Graph()
		if err != nil {
			return nil, err
		}
		return render.Generate(g, opts)
	case tools.Markov:
		p := set.Markov[idx].Params
		walk := markov.Walk(p, seeded(presetSeed))
		return render.MarkovSVG(walk, markov.Solve(p), opts), nil
	case tools.Correlation:
		p := set.Correlation[idx].CorrelationParams
		return render.ScatterSVG(p, calc.Correlation(p), opts), nil
	case tools.Descent:
		st := descent.New(set.Descent[idx].Params)
		st.Run(s.cfg.Animation.MaxSteps)
		return render.DescentSVG(st.Snapshot(), opts), nil
	case tools.Bandit:
		l := bandit.New(set.Bandit[idx].Params, seeded(presetSeed), nil)
		for i := 0; i < s.cfg.Animation.BatchSize; i++ {
			l.Step()
		}
		return render.BanditSVG(l.Snapshot(), opts), nil
	case tools.Bayes, tools.Kelly, tools.Confidence, tools.Frenzy, tools.Rules:
		return nil, fmt.Errorf("%w: %s", ErrNoChart, id)
	}
	return nil, fmt.Errorf("%w: %s", tools.ErrUnknownTool, id)
}
