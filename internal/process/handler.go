package process

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillsearch-backend/internal/shared/server/middleware"
	"skillsearch-backend/internal/shared/server/respond"
)

type processRequest struct {
	Data json.RawMessage `json:"data"`
	Task string          `json:"task"`
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the process route to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/process", h.process)
}

func (h *Handler) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, ErrInvalidInput)
		return
	}

	result, err := h.Svc.Process(c.Request.Context(), req.Task, req.Data)
	if err != nil {
		if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
			c.Set(middleware.OutcomeKey, "CANCELED")
			c.AbortWithStatus(499)
			return
		}
		h.fail(c, err)
		return
	}
	c.Set(middleware.OutcomeKey, "ok")
	respond.OK(c, result)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		c.Set(middleware.OutcomeKey, "INVALID_INPUT")
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Data and task are required", "")
	case errors.Is(err, ErrTooManyRequests):
		c.Set(middleware.OutcomeKey, "TOO_MANY_REQUESTS")
		c.Header("Retry-After", "1")
		respond.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests in progress, retry shortly", "")
	default:
		c.Set(middleware.OutcomeKey, "PROCESSING_FAILED")
		respond.Error(c, http.StatusInternalServerError, "PROCESSING_FAILED", "Processing failed", "The model provider did not return a usable response")
	}
}
