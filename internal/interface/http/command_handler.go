package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tripplanner/internal/domain/intent"
	"github.com/yanqian/ai-tripplanner/internal/domain/session"
	"github.com/yanqian/ai-tripplanner/pkg/metrics"
)

const maxCommandBytes = 64 << 10

// CommandHandler serves structured and free-text commands.
type CommandHandler struct {
	dispatcher *intent.Dispatcher
	classifier intent.Classifier
	sessions   session.Manager
	logger     *slog.Logger
}

// NewCommandHandler wires the command endpoints. sessions may be nil.
func NewCommandHandler(dispatcher *intent.Dispatcher, classifier intent.Classifier, sessions session.Manager, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		dispatcher: dispatcher,
		classifier: classifier,
		sessions:   sessions,
		logger:     logger.With("component", "http.commands"),
	}
}

// CommandResponse wraps a dispatch result with a handle for newly planned trips.
type CommandResponse struct {
	intent.Result
	Handle *session.Handle `json:"handle,omitempty"`
}

type voiceRequest struct {
	Text   string `json:"text" binding:"required"`
	TripID string `json:"tripId"`
}

// Execute runs a tagged command such as {"intent":"EDIT_DAY_PACE","tripId":"...","day":2,"pace":"packed"}.
func (h *CommandHandler) Execute(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCommandBytes))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read command", err))
		return
	}
	cmd, err := intent.ParseCommand(raw)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	h.run(c, cmd, "", nil)
}

// Voice classifies free text into a command and runs it.
func (h *CommandHandler) Voice(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	classified, err := h.classifier.Classify(c.Request.Context(), req.Text, req.TripID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	usage := classified.Usage
	h.run(c, classified.Command, req.Text, &usage)
}

func (h *CommandHandler) run(c *gin.Context, cmd intent.Command, utterance string, usage *metrics.TokenUsage) {
	if h.sessions != nil && intent.Mutates(cmd, utterance) {
		if _, httpErr := authorizeTrip(c, h.sessions, cmd.TripRef()); httpErr != nil {
			abortWithError(c, httpErr)
			return
		}
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), cmd, utterance)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	result.Usage = usage

	resp := CommandResponse{Result: result}
	if result.Intent == intent.OutcomePlan && h.sessions != nil && result.Trip != nil {
		handle, err := h.sessions.Issue(result.Trip.ID)
		if err != nil {
			abortWithError(c, domainError(err))
			return
		}
		resp.Handle = &handle
	}
	h.logger.Info("command executed", "intent", result.Intent, "utterance", utterance != "")
	c.JSON(http.StatusOK, resp)
}
