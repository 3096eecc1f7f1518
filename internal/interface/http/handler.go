package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tripplanner/internal/domain/export"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/session"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	trips    trip.Service
	exporter export.Service
	sessions session.Manager
	commands *CommandHandler
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler. sessions may be nil, in which case no handles are issued.
func NewHandler(trips trip.Service, exporter export.Service, sessions session.Manager, commands *CommandHandler, logger *slog.Logger) *Handler {
	return &Handler{
		trips:    trips,
		exporter: exporter,
		sessions: sessions,
		commands: commands,
		logger:   logger.With("component", "http.handler"),
	}
}

// PlannedTrip is returned when a trip is created.
type PlannedTrip struct {
	Trip   trip.Trip       `json:"trip"`
	Handle *session.Handle `json:"handle,omitempty"`
}

type estimateRequest struct {
	From itinerary.Coordinates `json:"from"`
	To   itinerary.Coordinates `json:"to"`
}

type paceRequest struct {
	Pace string `json:"pace"`
}

type exportRequest struct {
	Email string `json:"email"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EstimateTravel returns the urban travel estimate between two points.
func (h *Handler) EstimateTravel(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	est, err := itinerary.EstimateTravel(req.From, req.To)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, est)
}

// PlanTrip creates a trip and, when sessions are enabled, a handle for it.
func (h *Handler) PlanTrip(c *gin.Context) {
	var req trip.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	t, err := h.trips.Plan(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	resp, err := h.withHandle(t)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetTrip returns the stored trip.
func (h *Handler) GetTrip(c *gin.Context) {
	t, err := h.trips.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, t)
}

// EditDayPace rebuilds one day at a new pace.
func (h *Handler) EditDayPace(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, trip.CodeInvalidDayNumber, "day must be an integer", err))
		return
	}
	var req paceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	res, err := h.trips.EditDay(c.Request.Context(), c.Param("id"), day, req.Pace)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Explain answers why the plan, or a POI matching ?target=, looks the way it does.
func (h *Handler) Explain(c *gin.Context) {
	exp, err := h.trips.Explain(c.Request.Context(), c.Param("id"), c.Query("target"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, exp)
}

// AdjustForWeather rebuilds rainy days.
func (h *Handler) AdjustForWeather(c *gin.Context) {
	adj, err := h.trips.AdjustForWeather(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, adj)
}

// Feasibility runs the feasibility evaluator.
func (h *Handler) Feasibility(c *gin.Context) {
	report, err := h.trips.Feasibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Grounding runs the grounding evaluator.
func (h *Handler) Grounding(c *gin.Context) {
	report, err := h.trips.Grounding(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export sends the trip to the configured webhook.
func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	receipt, err := h.exporter.Export(c.Request.Context(), export.Request{TripID: c.Param("id"), Email: req.Email})
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *Handler) withHandle(t trip.Trip) (PlannedTrip, error) {
	resp := PlannedTrip{Trip: t}
	if h.sessions == nil {
		return resp, nil
	}
	handle, err := h.sessions.Issue(t.ID)
	if err != nil {
		return PlannedTrip{}, apperrors.Wrap(session.CodeSession, "failed to issue trip handle", err)
	}
	resp.Handle = &handle
	return resp, nil
}
