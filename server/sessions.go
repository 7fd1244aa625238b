package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/render"
	"github.com/TFMV/tenlab/scheduler"
	"github.com/TFMV/tenlab/verdict"
)

// ErrHalted is returned when starting a stepper that already halted
var ErrHalted = errors.New("stepper halted")

// descentSession is one stepper plus its optional animation task
type descentSession struct {
	mu      sync.Mutex
	stepper *descent.Stepper
	task    *scheduler.Task
	// gen changes on every stop so a tick already waiting on mu can tell
	// that its animation is over
	gen int
}

// DescentResponse describes a descent session
type DescentResponse struct {
	ID        string          `json:"id"`
	State     descent.State   `json:"state"`
	Animating bool            `json:"animating"`
	Verdict   verdict.Verdict `json:"verdict"`
}

func (d *descentSession) response(id string) DescentResponse {
	state := d.stepper.Snapshot()
	return DescentResponse{ID: id, State: state, Animating: d.task.Running(), Verdict: verdict.Descent(state)}
}

func (d *descentSession) stop() {
	d.task.Stop()
	d.task = nil
	d.gen++
}

// advance is one animation tick of the task started at gen
func (d *descentSession) advance(gen, limit int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen || d.stepper.Status() != descent.Running {
		return false
	}
	status := d.stepper.Step()
	simulationSteps.WithLabelValues("descent").Inc()
	if status.Halted() {
		return false
	}
	if d.stepper.Steps() >= limit {
		d.stepper.Pause()
		return false
	}
	return true
}

// withDescent runs fn on the session named by :id while holding its lock
func (s *Server) withDescent(c *gin.Context, handler string, fn func(d *descentSession) error) {
	logger := s.log(c, handler)
	id := c.Param("id")
	d, err := s.descents.Get(id)
	if err != nil {
		fail(c, logger, err)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(d); err != nil {
		fail(c, logger.With("session_id", id), err)
		return
	}
	c.JSON(http.StatusOK, d.response(id))
}

// HandleCreateDescent handles POST /api/descent/sessions
func (s *Server) HandleCreateDescent(c *gin.Context) {
	logger := s.log(c, "HandleCreateDescent")

	p := descent.DefaultParams()
	if err := s.bindJSON(c)(&p); err != nil {
		fail(c, logger, err)
		return
	}

	d := &descentSession{stepper: descent.New(p)}
	id, err := s.descents.Add(d)
	if err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("descent session created", "session_id", id, "rate", p.LearningRate, "x", p.Initial)
	c.JSON(http.StatusCreated, d.response(id))
}

// HandleGetDescent handles GET /api/descent/sessions/:id
func (s *Server) HandleGetDescent(c *gin.Context) {
	s.withDescent(c, "HandleGetDescent", func(d *descentSession) error { return nil })
}

// HandleDeleteDescent handles DELETE /api/descent/sessions/:id
func (s *Server) HandleDeleteDescent(c *gin.Context) {
	logger := s.log(c, "HandleDeleteDescent")
	d, err := s.descents.Delete(c.Param("id"))
	if err != nil {
		fail(c, logger, err)
		return
	}
	d.mu.Lock()
	d.stop()
	d.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// HandleConfigureDescent handles PUT /api/descent/sessions/:id/params.
// New parameters stop any animation and reset the run.
func (s *Server) HandleConfigureDescent(c *gin.Context) {
	s.withDescent(c, "HandleConfigureDescent", func(d *descentSession) error {
		p := d.stepper.Params()
		if err := s.bindJSON(c)(&p); err != nil {
			return err
		}
		d.stop()
		d.stepper.Configure(p)
		return nil
	})
}

// HandleStepDescent handles POST /api/descent/sessions/:id/step
func (s *Server) HandleStepDescent(c *gin.Context) {
	s.withDescent(c, "HandleStepDescent", func(d *descentSession) error {
		if d.task.Running() {
			return fmt.Errorf("%w: pause the animation to step by hand", ErrBusy)
		}
		d.stepper.Step()
		simulationSteps.WithLabelValues("descent").Inc()
		return nil
	})
}

// HandleStartDescent handles POST /api/descent/sessions/:id/start.
//
// The stepper advances once per animation interval until it halts, reaches
// the configured step limit, or is paused.
func (s *Server) HandleStartDescent(c *gin.Context) {
	s.withDescent(c, "HandleStartDescent", func(d *descentSession) error {
		if d.task.Running() {
			return nil
		}
		if !d.stepper.Start() {
			return fmt.Errorf("%w: status is %s, reset first", ErrHalted, d.stepper.Status())
		}

		gen, limit := d.gen, s.cfg.Animation.MaxSteps
		d.task = scheduler.Every(s.ctx, s.cfg.Animation.Interval, func() bool {
			return d.advance(gen, limit)
		})
		return nil
	})
}

// HandlePauseDescent handles POST /api/descent/sessions/:id/pause
func (s *Server) HandlePauseDescent(c *gin.Context) {
	s.withDescent(c, "HandlePauseDescent", func(d *descentSession) error {
		d.stop()
		d.stepper.Pause()
		return nil
	})
}

// HandleResetDescent handles POST /api/descent/sessions/:id/reset
func (s *Server) HandleResetDescent(c *gin.Context) {
	s.withDescent(c, "HandleResetDescent", func(d *descentSession) error {
		d.stop()
		d.stepper.Reset()
		return nil
	})
}

// HandleDescentSVG handles GET /api/descent/sessions/:id/svg
func (s *Server) HandleDescentSVG(c *gin.Context) {
	logger := s.log(c, "HandleDescentSVG")
	d, err := s.descents.Get(c.Param("id"))
	if err != nil {
		fail(c, logger, err)
		return
	}
	d.mu.Lock()
	state := d.stepper.Snapshot()
	d.mu.Unlock()
	c.Data(http.StatusOK, "image/svg+xml", render.DescentSVG(state, s.renderOptions("svg")))
}

// banditSession is one learner plus its optional batch task
type banditSession struct {
	mu      sync.Mutex
	learner *bandit.Learner
	task    *scheduler.Task
	recent  []bandit.Trial
	// gen changes on every stop so a tick already waiting on mu can tell
	// that its batch is over
	gen int
}

// BanditResponse describes a bandit session
type BanditResponse struct {
	ID       string          `json:"id"`
	Snapshot bandit.Snapshot `json:"snapshot"`
	Recent   []bandit.Trial  `json:"recent"`
	Running  bool            `json:"running"`
	Verdict  verdict.Verdict `json:"verdict"`
}

func (b *banditSession) response(id string) BanditResponse {
	return BanditResponse{
		ID:       id,
		Snapshot: b.learner.Snapshot(),
		Recent:   append([]bandit.Trial{}, b.recent...),
		Running:  b.task.Running(),
		Verdict:  verdict.Bandit(b.learner.Params()),
	}
}

func (b *banditSession) step() {
	b.recent = appendRecent(b.recent, b.learner.Step())
	simulationSteps.WithLabelValues("bandit").Inc()
}

func (b *banditSession) stop() {
	b.task.Stop()
	b.task = nil
	b.gen++
}

type createBanditRequest struct {
	bandit.Params
	Seed uint64 `json:"seed"`
}

type batchRequest struct {
	Trials int `json:"trials" validate:"gte=1,lte=10000"`
}

// withBandit runs fn on the session named by :id while holding its lock
func (s *Server) withBandit(c *gin.Context, handler string, status int, fn func(b *banditSession) error) {
	logger := s.log(c, handler)
	id := c.Param("id")
	b, err := s.bandits.Get(id)
	if err != nil {
		fail(c, logger, err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := fn(b); err != nil {
		fail(c, logger.With("session_id", id), err)
		return
	}
	c.JSON(status, b.response(id))
}

// HandleCreateBandit handles POST /api/bandit/sessions.
// A non-zero seed makes the trials repeatable.
func (s *Server) HandleCreateBandit(c *gin.Context) {
	logger := s.log(c, "HandleCreateBandit")

	req := createBanditRequest{Params: bandit.DefaultParams()}
	if err := s.bindJSON(c)(&req); err != nil {
		fail(c, logger, err)
		return
	}

	var rng bandit.Random
	if r := seeded(req.Seed); r != nil {
		rng = r
	}
	b := &banditSession{learner: bandit.New(req.Params, rng, nil)}
	id, err := s.bandits.Add(b)
	if err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("bandit session created", "session_id", id, "epsilon", req.Epsilon)
	c.JSON(http.StatusCreated, b.response(id))
}

// HandleGetBandit handles GET /api/bandit/sessions/:id
func (s *Server) HandleGetBandit(c *gin.Context) {
	s.withBandit(c, "HandleGetBandit", http.StatusOK, func(b *banditSession) error { return nil })
}

// HandleDeleteBandit handles DELETE /api/bandit/sessions/:id
func (s *Server) HandleDeleteBandit(c *gin.Context) {
	logger := s.log(c, "HandleDeleteBandit")
	b, err := s.bandits.Delete(c.Param("id"))
	if err != nil {
		fail(c, logger, err)
		return
	}
	b.mu.Lock()
	b.stop()
	b.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// HandleConfigureBandit handles PUT /api/bandit/sessions/:id/params.
// Estimates are kept; only epsilon changes.
func (s *Server) HandleConfigureBandit(c *gin.Context) {
	s.withBandit(c, "HandleConfigureBandit", http.StatusOK, func(b *banditSession) error {
		p := b.learner.Params()
		if err := s.bindJSON(c)(&p); err != nil {
			return err
		}
		b.learner.SetParams(p)
		return nil
	})
}

// HandleStepBandit handles POST /api/bandit/sessions/:id/step
func (s *Server) HandleStepBandit(c *gin.Context) {
	s.withBandit(c, "HandleStepBandit", http.StatusOK, func(b *banditSession) error {
		if b.task.Running() {
			return fmt.Errorf("%w: a batch is in progress", ErrBusy)
		}
		b.step()
		return nil
	})
}

// HandleBatchBandit handles POST /api/bandit/sessions/:id/batch.
// The trials run in the background, one per animation interval.
func (s *Server) HandleBatchBandit(c *gin.Context) {
	s.withBandit(c, "HandleBatchBandit", http.StatusAccepted, func(b *banditSession) error {
		req := batchRequest{Trials: s.cfg.Animation.BatchSize}
		if err := s.bindJSON(c)(&req); err != nil {
			return err
		}
		if b.task.Running() {
			return fmt.Errorf("%w: a batch is in progress", ErrBusy)
		}
		gen := b.gen
		b.task = scheduler.Batch(s.ctx, req.Trials, s.cfg.Animation.BatchInterval, func() bool {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.gen != gen {
				return false
			}
			b.step()
			return true
		})
		return nil
	})
}

// HandleStopBandit handles POST /api/bandit/sessions/:id/stop
func (s *Server) HandleStopBandit(c *gin.Context) {
	s.withBandit(c, "HandleStopBandit", http.StatusOK, func(b *banditSession) error {
		b.stop()
		return nil
	})
}

// HandleResetBandit handles POST /api/bandit/sessions/:id/reset
func (s *Server) HandleResetBandit(c *gin.Context) {
	s.withBandit(c, "HandleResetBandit", http.StatusOK, func(b *banditSession) error {
		b.stop()
		b.learner.Reset()
		b.recent = nil
		return nil
	})
}

// HandleBanditSVG handles GET /api/bandit/sessions/:id/svg
func (s *Server) HandleBanditSVG(c *gin.Context) {
	logger := s.log(c, "HandleBanditSVG")
	b, err := s.bandits.Get(c.Param("id"))
	if err != nil {
		fail(c, logger, err)
		return
	}
	b.mu.Lock()
	snap := b.learner.Snapshot()
	b.mu.Unlock()
	c.Data(http.StatusOK, "image/svg+xml", render.BanditSVG(snap, s.renderOptions("svg")))
}
