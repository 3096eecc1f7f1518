package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
	"github.com/yanqian/ai-tripplanner/pkg/util"
)

// Error codes.
const (
	CodeExportUnavailable = "export_unavailable"
	CodeExportFailed      = "export_failed"
	CodeValidation        = itinerary.CodeValidation
)

const archiveTimeLayout = "20060102T150405Z"

// Payload is what the webhook receives.
type Payload struct {
	Email  string              `json:"email"`
	TripID string              `json:"tripId"`
	Trip   itinerary.TripState `json:"trip"`
}

// Webhook delivers an export and returns the receiver's response text.
type Webhook interface {
	Deliver(ctx context.Context, payload Payload) (string, error)
}

// StoredObject describes an archived blob.
type StoredObject struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	ETag string `json:"etag"`
}

// Archive persists exported trips as JSON objects.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error)
}

// Request asks for a trip to be exported.
type Request struct {
	TripID string `json:"-" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

// Receipt reports a completed export.
type Receipt struct {
	Status          string `json:"status"`
	WebhookResponse string `json:"webhookResponse"`
	ArchiveKey      string `json:"archiveKey,omitempty"`
}

// Service exports trips to external automation.
type Service interface {
	Export(ctx context.Context, req Request) (Receipt, error)
}

type service struct {
	trips    trip.Service
	webhook  Webhook
	archive  Archive
	validate *validator.Validate
	logger   *slog.Logger
	now      util.Clock
}

// NewService wires the exporter. webhook may be nil, which disables exports; archive may be nil.
func NewService(trips trip.Service, webhook Webhook, archive Archive, logger *slog.Logger) Service {
	return &service{
		trips:    trips,
		webhook:  webhook,
		archive:  archive,
		validate: validator.New(),
		logger:   logger.With("component", "export.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Export(ctx context.Context, req Request) (Receipt, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return Receipt{}, apperrors.Wrap(CodeValidation, "a valid email is required", err)
	}
	if s.webhook == nil {
		return Receipt{}, apperrors.Newf(CodeExportUnavailable, "export webhook is not configured")
	}

	t, err := s.trips.Get(ctx, req.TripID)
	if err != nil {
		return Receipt{}, err
	}
	payload := Payload{Email: req.Email, TripID: t.ID, Trip: t.State}

	receipt := Receipt{Status: "sent"}
	if s.archive != nil {
		key, err := s.store(ctx, payload)
		if err != nil {
			s.logger.Warn("trip archive failed", "trip_id", t.ID, "error", err)
		} else {
			receipt.ArchiveKey = key
		}
	}

	resp, err := s.webhook.Deliver(ctx, payload)
	if err != nil {
		return Receipt{}, apperrors.Wrap(CodeExportFailed, "failed to deliver export", err)
	}
	receipt.WebhookResponse = resp
	s.logger.Info("trip exported", "trip_id", t.ID, "archive_key", receipt.ArchiveKey)
	return receipt, nil
}

func (s *service) store(ctx context.Context, payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode archive: %w", err)
	}
	key := ArchiveKey(payload.TripID, s.now())
	obj, err := s.archive.Put(ctx, key, data, "application/json")
	if err != nil {
		return "", err
	}
	return obj.Key, nil
}
