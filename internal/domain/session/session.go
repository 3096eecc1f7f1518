package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
	"github.com/yanqian/ai-tripplanner/pkg/util"
)

// Error codes raised by handle verification.
const (
	CodeInvalidHandle = "invalid_handle"
	CodeHandleScope   = "handle_scope_mismatch"
	CodeSession       = "session_error"
)

const issuer = "ai-tripplanner"

// Config drives handle signing.
type Config struct {
	Secret string
	TTL    time.Duration
}

// Handle is a signed capability for a single trip.
type Handle struct {
	Token     string    `json:"token"`
	TripID    string    `json:"tripId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from a verified handle.
type Claims struct {
	TripID    string
	HandleID  string
	ExpiresAt time.Time
}

// Manager issues and verifies trip handles.
type Manager interface {
	Issue(tripID string) (Handle, error)
	Verify(token string) (Claims, error)
	Authorize(token, tripID string) (Claims, error)
}

type manager struct {
	cfg Config
	now util.Clock
}

// NewManager builds an HS256 handle manager.
func NewManager(cfg Config) (Manager, error) {
	return newManager(cfg, util.NowUTC)
}

func newManager(cfg Config, now util.Clock) (*manager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &manager{cfg: cfg, now: now}, nil
}

func (m *manager) Issue(tripID string) (Handle, error) {
	if tripID == "" {
		return Handle{}, apperrors.Newf(CodeSession, "trip id is required")
	}
	now := m.now()
	expires := now.Add(m.cfg.TTL)
	claims := handleClaims{
		TripID: tripID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   tripID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return Handle{}, apperrors.Wrap(CodeSession, "failed to sign trip handle", err)
	}
	return Handle{Token: signed, TripID: tripID, ExpiresAt: expires.Truncate(time.Second)}, nil
}

func (m *manager) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.Newf(CodeInvalidHandle, "trip handle missing")
	}
	parsed, err := jwt.ParseWithClaims(token, &handleClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperrors.Wrap(CodeInvalidHandle, "trip handle expired", err)
		}
		return Claims{}, apperrors.Wrap(CodeInvalidHandle, "trip handle validation failed", err)
	}
	claims, ok := parsed.Claims.(*handleClaims)
	if !ok || !parsed.Valid || claims.TripID == "" {
		return Claims{}, apperrors.Newf(CodeInvalidHandle, "trip handle invalid")
	}
	return Claims{
		TripID:    claims.TripID,
		HandleID:  claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authorize verifies the token and checks that it was issued for tripID.
func (m *manager) Authorize(token, tripID string) (Claims, error) {
	claims, err := m.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TripID != tripID {
		return Claims{}, apperrors.Newf(CodeHandleScope, "handle does not grant access to trip %q", tripID)
	}
	return claims, nil
}

type handleClaims struct {
	jwt.RegisteredClaims
	TripID string `json:"tripId"`
}
