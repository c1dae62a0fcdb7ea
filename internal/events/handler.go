package events

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/errs"
	"github.com/reindeer-games/backend/internal/middleware"
	"github.com/reindeer-games/backend/pkg/response"
)

// CreateEventRequest is the body for POST /events. Pointer fields distinguish
// an absent field from an empty string.
type CreateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Handler exposes the event board over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /events. Works signed-out: the response then carries
// authenticated=false and no events rather than an error.
func (h *Handler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Name and description are required")
		return
	}
	if req.Name == nil || req.Description == nil {
		response.BadRequest(c, "Name and description are required")
		return
	}

	event, err := h.service.Create(c.Request.Context(), middleware.SessionFrom(c), *req.Name, *req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, event)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

func respondError(c *gin.Context, err error) {
	msg := errs.MessageOf(err)
	switch errs.KindOf(err) {
	case errs.KindInvalidInput:
		response.BadRequest(c, msg)
	case errs.KindUnauthenticated:
		response.Unauthorized(c, msg)
	case errs.KindForbidden:
		response.Forbidden(c, msg)
	case errs.KindNotFound:
		response.NotFound(c, msg)
	default:
		response.Internal(c, msg)
	}
}
