package server

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the dashboard API under rg.
//
//	GET    /tools                              - Tool catalog
//	POST   /tools/:tool/evaluate               - Evaluate a parameter record
//	GET    /presets/:tool                      - Preset names
//	GET    /presets/:tool/:preset              - One preset, evaluated
//	GET    /presets/:tool/:preset/svg          - Chart of a preset
//
//	POST   /graphs                             - New graph (empty, preset, or import)
//	GET    /graphs/:id                         - Graph with ranking
//	DELETE /graphs/:id                         - Drop graph
//	POST   /graphs/:id/nodes                   - Add node
//	DELETE /graphs/:id/nodes/:node             - Remove node and its edges
//	PUT    /graphs/:id/nodes/:node/position    - Move node
//	POST   /graphs/:id/edges                   - Add edge
//	DELETE /graphs/:id/edges                   - Remove edge (?source=&target=)
//	POST   /graphs/:id/layout                  - Run a layout
//	GET    /graphs/:id/render                  - Render (?format=svg|json|dot|ascii)
//
//	POST   /descent/sessions                   - New stepper
//	GET    /descent/sessions/:id               - State
//	PUT    /descent/sessions/:id/params        - Reconfigure (resets)
//	POST   /descent/sessions/:id/step          - One step
//	POST   /descent/sessions/:id/start         - Animate on the configured interval
//	POST   /descent/sessions/:id/pause         - Stop animation
//	POST   /descent/sessions/:id/reset         - Back to the start
//	GET    /descent/sessions/:id/svg           - Chart
//	DELETE /descent/sessions/:id               - Drop session
//
//	POST   /bandit/sessions                    - New learner
//	GET    /bandit/sessions/:id                - Snapshot
//	PUT    /bandit/sessions/:id/params         - Change epsilon
//	POST   /bandit/sessions/:id/step           - One trial
//	POST   /bandit/sessions/:id/batch          - Simulate N trials in the background
//	POST   /bandit/sessions/:id/stop           - Stop a batch
//	POST   /bandit/sessions/:id/reset          - Forget estimates
//	GET    /bandit/sessions/:id/svg            - Chart
//	DELETE /bandit/sessions/:id                - Drop session
func RegisterRoutes(rg *gin.RouterGroup, s *Server) {
	rg.GET("/tools", s.HandleTools)
	rg.POST("/tools/:tool/evaluate", s.HandleEvaluate)

	p := rg.Group("/presets")
	{
		p.GET("/:tool", s.HandlePresetNames)
		p.GET("/:tool/:preset", s.HandlePreset)
		p.GET("/:tool/:preset/svg", s.HandlePresetSVG)
	}

	g := rg.Group("/graphs")
	{
		g.POST("", s.HandleCreateGraph)
		g.GET("/:id", s.HandleGetGraph)
		g.DELETE("/:id", s.HandleDeleteGraph)
		g.POST("/:id/nodes", s.HandleAddNode)
		g.DELETE("/:id/nodes/:node", s.HandleRemoveNode)
		g.PUT("/:id/nodes/:node/position", s.HandleMoveNode)
		g.POST("/:id/edges", s.HandleAddEdge)
		g.DELETE("/:id/edges", s.HandleRemoveEdge)
		g.POST("/:id/layout", s.HandleLayout)
		g.GET("/:id/render", s.HandleRenderGraph)
	}

	d := rg.Group("/descent/sessions")
	{
		d.POST("", s.HandleCreateDescent)
		d.GET("/:id", s.HandleGetDescent)
		d.DELETE("/:id", s.HandleDeleteDescent)
		d.PUT("/:id/params", s.HandleConfigureDescent)
		d.POST("/:id/step", s.HandleStepDescent)
		d.POST("/:id/start", s.HandleStartDescent)
		d.POST("/:id/pause", s.HandlePauseDescent)
		d.POST("/:id/reset", s.HandleResetDescent)
		d.GET("/:id/svg", s.HandleDescentSVG)
	}

	b := rg.Group("/bandit/sessions")
	{
		b.POST("", s.HandleCreateBandit)
		b.GET("/:id", s.HandleGetBandit)
		b.DELETE("/:id", s.HandleDeleteBandit)
		b.PUT("/:id/params", s.HandleConfigureBandit)
		b.POST("/:id/step", s.HandleStepBandit)
		b.POST("/:id/batch", s.HandleBatchBandit)
		b.POST("/:id/stop", s.HandleStopBandit)
		b.POST("/:id/reset", s.HandleResetBandit)
		b.GET("/:id/svg", s.HandleBanditSVG)
	}
}
