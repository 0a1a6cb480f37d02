// Package api is the admin HTTP surface of the roster server: events,
// attendee registration, live stats and attendance export.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registrationSvc interface {
	CreateEvent(ctx context.Context, id, name string) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	Register(ctx context.Context, eventID string, in models.NewRegistration) (*models.Registration, error)
}

type statsSvc interface {
	Get(ctx context.Context, eventID string) (models.EventStats, error)
}

type exportSvc interface {
	Export(ctx context.Context, eventID string) (*services.ExportResult, error)
}

type Handler struct {
	registrations registrationSvc
	stats         statsSvc
	export        exportSvc
	logger        logging.Logger
}

func NewHandler(r registrationSvc, s statsSvc, e exportSvc, l logging.Logger) *Handler {
	return &Handler{registrations: r, stats: s, export: e, logger: l.With("module", "http_api")}
}

type createEventRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type eventResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type registrationResponse struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	OrbitID        string `json:"orbit_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	College        string `json:"college,omitempty"`
	QRSignature    string `json:"qr_signature"`
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(c.Request.Context(), err.Error(), "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.registrations.CreateEvent(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, eventResponse{ID: event.ID, Name: event.Name, CreatedAt: event.CreatedAt})
}

func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.registrations.GetEvent(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, eventResponse{ID: event.ID, Name: event.Name, CreatedAt: event.CreatedAt})
}

// Register issues a pass. The response carries the signature the pass
// renderer encodes into the QR code.
func (h *Handler) Register(c *gin.Context) {
	var req models.NewRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.registrations.Register(c.Request.Context(), c.Param("eventID"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registrationResponse{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		OrbitID:        reg.OrbitID,
		Name:           reg.Name,
		Email:          reg.Email,
		College:        reg.College,
		QRSignature:    reg.QRSignature,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Export(c *gin.Context) {
	res, err := h.export.Export(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
