package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/TFMV/tenlab/ingest"
	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/physics"
	"github.com/TFMV/tenlab/ranking"
	"github.com/TFMV/tenlab/render"
	"github.com/TFMV/tenlab/tools"
	"github.com/TFMV/tenlab/verdict"
)

// ErrEdgeNotFound is returned when removing an edge that does not exist
var ErrEdgeNotFound = errors.New("edge not found")

// graphEntry is one editable trust graph
type graphEntry struct {
	mu     sync.Mutex
	graph  *models.Graph
	placer *physics.Placer
	// rev counts successful edits and keys the render cache
	rev int
}

// GraphResponse is a graph with its current ranking
type GraphResponse struct {
	ID      string           `json:"id"`
	Graph   *models.Graph    `json:"graph"`
	Ranking []ranking.Result `json:"ranking"`
	Verdict verdict.Verdict  `json:"verdict"`
}

type createGraphRequest struct {
	Name   string `json:"name" validate:"max=128"`
	Preset string `json:"preset"`
	Format string `json:"format" validate:"omitempty,oneof=json csv yaml yml"`
	Data   string `json:"data"`
}

type addNodeRequest struct {
	Label string   `json:"label" validate:"required,max=64"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type moveNodeRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type edgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

type layoutRequest struct {
	Algorithm string `json:"algorithm" validate:"omitempty,oneof=force circle jitter"`
	Steps     int    `json:"steps" validate:"gte=0,lte=1000"`
}

func respondGraph(c *gin.Context, status int, id string, g *models.Graph) {
	results := ranking.Rank(g)
	c.JSON(status, GraphResponse{ID: id, Graph: g, Ranking: results, Verdict: verdict.Ranking(results)})
}

// withGraph runs fn on the graph named by :id while holding its lock.
// A successful fn that edits the graph bumps its revision.
func (s *Server) withGraph(c *gin.Context, handler string, edit bool, fn func(e *graphEntry) (int, error)) {
	logger := s.log(c, handler)
	id := c.Param("id")
	e, err := s.graphs.Get(id)
	if err != nil {
		fail(c, logger, err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	status, err := fn(e)
	if err != nil {
		fail(c, logger.With("graph_id", id), err)
		return
	}
	if edit {
		e.rev++
	}
	if status != 0 {
		respondGraph(c, status, id, e.graph)
	}
}

// HandleCreateGraph handles POST /api/graphs.
//
// With a preset name or number the graph is a copy of that scenario. With
// data it is imported in the given format (json by default). Otherwise it
// starts empty.
func (s *Server) HandleCreateGraph(c *gin.Context) {
	logger := s.log(c, "HandleCreateGraph")

	var req createGraphRequest
	if err := s.bindJSON(c)(&req); err != nil {
		fail(c, logger, err)
		return
	}

	var (
		g   *models.Graph
		err error
	)
	switch {
	case req.Preset != "":
		var idx int
		if idx, err = s.presets.Index(tools.Ranking, req.Preset); err == nil {
			g, err = s.presets.Ranking[idx].Graph()
		}
	case req.Data != "":
		format := req.Format
		if format == "" {
			format = "json"
		}
		var proc ingest.DataProcessor
		if proc, err = ingest.GetProcessor(format); err == nil {
			if g, err = proc.ProcessData([]byte(req.Data)); err != nil {
				err = fmt.Errorf("%w: import %s: %w", ErrInvalidRequest, format, err)
			}
		}
	default:
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = "Untitled"
		}
		g = models.NewGraph(name)
	}
	if err != nil {
		fail(c, logger, err)
		return
	}
	if req.Name != "" {
		g.Name = req.Name
	}

	id, err := s.graphs.Add(&graphEntry{graph: g, placer: physics.NewPlacer(int64(len(g.Nodes)) + 1)})
	if err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("graph created", "graph_id", id, "nodes", len(g.Nodes), "edges", len(g.Edges))
	respondGraph(c, http.StatusCreated, id, g)
}

// HandleGetGraph handles GET /api/graphs/:id
func (s *Server) HandleGetGraph(c *gin.Context) {
	s.withGraph(c, "HandleGetGraph", false, func(e *graphEntry) (int, error) {
		return http.StatusOK, nil
	})
}

// HandleDeleteGraph handles DELETE /api/graphs/:id
func (s *Server) HandleDeleteGraph(c *gin.Context) {
	logger := s.log(c, "HandleDeleteGraph")
	if _, err := s.graphs.Delete(c.Param("id")); err != nil {
		fail(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAddNode handles POST /api/graphs/:id/nodes.
// Without coordinates the node is dropped near the center.
func (s *Server) HandleAddNode(c *gin.Context) {
	s.withGraph(c, "HandleAddNode", true, func(e *graphEntry) (int, error) {
		var req addNodeRequest
		if err := s.bindJSON(c)(&req); err != nil {
			return 0, err
		}
		x, y := e.placer.Next()
		if req.X != nil {
			x = *req.X
		}
		if req.Y != nil {
			y = *req.Y
		}
		if err := e.graph.AddNode(models.NewNode(req.Label, x, y)); err != nil {
			return 0, err
		}
		return http.StatusCreated, nil
	})
}

// HandleRemoveNode handles DELETE /api/graphs/:id/nodes/:node
func (s *Server) HandleRemoveNode(c *gin.Context) {
	s.withGraph(c, "HandleRemoveNode", true, func(e *graphEntry) (int, error) {
		return http.StatusOK, e.graph.RemoveNode(c.Param("node"))
	})
}

// HandleMoveNode handles PUT /api/graphs/:id/nodes/:node/position.
// Coordinates are clamped to the view box.
func (s *Server) HandleMoveNode(c *gin.Context) {
	s.withGraph(c, "HandleMoveNode", true, func(e *graphEntry) (int, error) {
		var req moveNodeRequest
		if err := s.bindJSON(c)(&req); err != nil {
			return 0, err
		}
		return http.StatusOK, e.graph.MoveNode(c.Param("node"), *req.X, *req.Y)
	})
}

// HandleAddEdge handles POST /api/graphs/:id/edges
func (s *Server) HandleAddEdge(c *gin.Context) {
	s.withGraph(c, "HandleAddEdge", true, func(e *graphEntry) (int, error) {
		var req edgeRequest
		if err := s.bindJSON(c)(&req); err != nil {
			return 0, err
		}
		if err := e.graph.AddEdge(req.Source, req.Target); err != nil {
			return 0, err
		}
		return http.StatusCreated, nil
	})
}

// HandleRemoveEdge handles DELETE /api/graphs/:id/edges?source=&target=
func (s *Server) HandleRemoveEdge(c *gin.Context) {
	s.withGraph(c, "HandleRemoveEdge", true, func(e *graphEntry) (int, error) {
		source, target := c.Query("source"), c.Query("target")
		if !e.graph.RemoveEdge(source, target) {
			return 0, fmt.Errorf("%w: %s -> %s", ErrEdgeNotFound, source, target)
		}
		return http.StatusOK, nil
	})
}

// HandleLayout handles POST /api/graphs/:id/layout
func (s *Server) HandleLayout(c *gin.Context) {
	s.withGraph(c, "HandleLayout", true, func(e *graphEntry) (int, error) {
		req := layoutRequest{Algorithm: "force", Steps: 200}
		if err := s.bindJSON(c)(&req); err != nil {
			return 0, err
		}
		physics.Run(physics.GetLayoutAlgorithm(req.Algorithm), e.graph, req.Steps)
		return http.StatusOK, nil
	})
}

var contentTypes = map[string]string{
	"svg":   "image/svg+xml",
	"json":  "application/json",
	"dot":   "text/vnd.graphviz; charset=utf-8",
	"ascii": "text/plain; charset=utf-8",
}

// HandleRenderGraph handles GET /api/graphs/:id/render?format=svg
func (s *Server) HandleRenderGraph(c *gin.Context) {
	id := c.Param("id")
	s.withGraph(c, "HandleRenderGraph", false, func(e *graphEntry) (int, error) {
		format := strings.ToLower(c.DefaultQuery("format", "svg"))
		contentType, ok := contentTypes[format]
		if !ok {
			return 0, fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, format)
		}

		key := fmt.Sprintf("graph/%s/%d/%s", id, e.rev, format)
		out, err := s.cached(key, func() ([]byte, error) {
			return render.Generate(e.graph, s.renderOptions(format))
		})
		if err != nil {
			return 0, err
		}
		c.Data(http.StatusOK, contentType, out)
		return 0, nil
	})
}
