package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unitcost/backend/internal/domain"
	"github.com/unitcost/backend/internal/units"
	"github.com/unitcost/backend/internal/usecase"
)

const serviceVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions *usecase.SessionService
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *usecase.SessionService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// PathRequest names a session document on the server's filesystem
type PathRequest struct {
	Path string `json:"path"`
}

// FamilyRequest selects the measurement family of a row
type FamilyRequest struct {
	Family string `json:"family" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "unitcost-backend",
		"version": serviceVersion,
	})
}

// GetSession returns the live session with its lock state and capabilities
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Snapshot())
}

// NewSession starts a fresh untitled session
func (h *Handler) NewSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.New())
}

// ResetSession discards all rows and unlocks the measurement family
func (h *Handler) ResetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Reset())
}

// LoadSession replaces the live session with a document from disk
func (h *Handler) LoadSession(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	snapshot, err := h.sessions.Load(c.Request.Context(), req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SaveSession writes the live session. An empty body saves to the current document.
func (h *Handler) SaveSession(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	snapshot, err := h.sessions.Save(c.Request.Context(), req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// AddRow appends a blank product row
func (h *Handler) AddRow(c *gin.Context) {
	snapshot, err := h.sessions.AddRow()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// UpdateRow changes the fields present in the request body
func (h *Handler) UpdateRow(c *gin.Context) {
	row, ok := rowIndex(c)
	if !ok {
		return
	}

	var patch usecase.RowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	snapshot, err := h.sessions.UpdateRow(row, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// RemoveRow deletes a product row
func (h *Handler) RemoveRow(c *gin.Context) {
	row, ok := rowIndex(c)
	if !ok {
		return
	}

	snapshot, err := h.sessions.RemoveRow(row)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SelectFamily picks the measurement family on a row
func (h *Handler) SelectFamily(c *gin.Context) {
	row, ok := rowIndex(c)
	if !ok {
		return
	}

	var req FamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "family is required"})
		return
	}

	family, err := domain.ParseFamily(req.Family)
	if err != nil {
		h.respondError(c, err)
		return
	}

	snapshot, err := h.sessions.SelectFamily(row, family)
	if err != nil {
		if errors.Is(err, domain.ErrTypeMismatch) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   err.Error(),
				"session": snapshot,
			})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Calculate ranks the session's products by price per unit
func (h *Handler) Calculate(c *gin.Context) {
	evaluation, err := h.sessions.Calculate()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, evaluation)
}

// ListFamilies returns the selectable measurement families with their base units
func (h *Handler) ListFamilies(c *gin.Context) {
	families := make([]gin.H, 0, len(domain.Families))
	for _, family := range domain.Families {
		families = append(families, gin.H{
			"unitType": family,
			"baseUnit": units.BaseUnit(family),
		})
	}
	c.JSON(http.StatusOK, gin.H{"families": families})
}

// ListUnits returns the unit picker choices and output units of a family
func (h *Handler) ListUnits(c *gin.Context) {
	family, err := domain.ParseFamily(c.Param("family"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unitType":    family,
		"baseUnit":    units.BaseUnit(family),
		"units":       units.Units(family),
		"outputUnits": units.OutputUnits(family),
	})
}

func rowIndex(c *gin.Context) (int, bool) {
	row, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row index must be an integer"})
		return 0, false
	}
	return row, true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingUnitType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTypeMismatch), errors.Is(err, domain.ErrLastRow):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRowIndex):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownFamily),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrParse),
		errors.Is(err, domain.ErrNoSessionPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
