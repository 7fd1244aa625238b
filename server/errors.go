package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/presets"
	"github.com/TFMV/tenlab/rules"
	"github.com/TFMV/tenlab/tools"
)

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrGraphNotFound is returned for an unknown graph id.
	ErrGraphNotFound = errors.New("graph not found")
	// ErrTooManySessions is returned when a store is full.
	ErrTooManySessions = errors.New("too many sessions")
	// ErrBusy is returned when a session already runs a background task.
	ErrBusy = errors.New("session is running")
	// ErrInvalidRequest wraps body binding and validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a domain error to an HTTP status and a stable code
func statusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound, "UNKNOWN_TOOL"
	case errors.Is(err, ErrNoChart):
		return http.StatusNotFound, "NO_CHART"
	case errors.Is(err, presets.ErrUnknownPreset):
		return http.StatusNotFound, "UNKNOWN_PRESET"
	case errors.Is(err, ErrGraphNotFound):
		return http.StatusNotFound, "GRAPH_NOT_FOUND"
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, ErrEdgeNotFound):
		return http.StatusNotFound, "EDGE_NOT_FOUND"
	case errors.Is(err, models.ErrNodeNotFound):
		return http.StatusNotFound, "NODE_NOT_FOUND"
	case errors.Is(err, rules.ErrRuleNotFound):
		return http.StatusNotFound, "RULE_NOT_FOUND"
	case errors.Is(err, models.ErrDuplicateNode):
		return http.StatusConflict, "DUPLICATE_NODE"
	case errors.Is(err, models.ErrDuplicateEdge):
		return http.StatusConflict, "DUPLICATE_EDGE"
	case errors.Is(err, ErrHalted):
		return http.StatusConflict, "HALTED"
	case errors.Is(err, ErrBusy):
		return http.StatusConflict, "SESSION_BUSY"
	case errors.Is(err, models.ErrSelfLoop):
		return http.StatusUnprocessableEntity, "SELF_LOOP"
	case errors.Is(err, models.ErrEmptyLabel):
		return http.StatusUnprocessableEntity, "EMPTY_LABEL"
	case errors.Is(err, ErrTooManySessions):
		return http.StatusTooManyRequests, "TOO_MANY_SESSIONS"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// fail writes err as an ErrorResponse and logs it at a level matching the status
func fail(c *gin.Context, logger *slog.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "code", code)
	} else {
		logger.Warn("request rejected", "error", err, "code", code)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
