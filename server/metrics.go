package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts requests by method, route and status class
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenlab_http_requests_total",
		Help: "Total HTTP requests by method, route and status class",
	}, []string{"method", "route", "status"})

	// evaluationsTotal counts tool evaluations by tool and verdict tone
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenlab_evaluations_total",
		Help: "Total tool evaluations by tool and verdict tone",
	}, []string{"tool", "tone"})

	// evaluationDuration tracks evaluation latency
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenlab_evaluation_duration_seconds",
		Help:    "Tool evaluation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	}, []string{"tool"})

	// sessionsActive tracks live sessions by kind
	sessionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tenlab_sessions_active",
		Help: "Live simulation sessions by kind",
	}, []string{"kind"})

	// simulationSteps counts stepper and learner ticks by kind
	simulationSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenlab_simulation_steps_total",
		Help: "Total simulation steps by kind",
	}, []string{"kind"})

	// renderCacheTotal counts render cache lookups by result
	renderCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenlab_render_cache_total",
		Help: "Render cache lookups by result",
	}, []string{"result"})
)
