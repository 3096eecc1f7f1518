package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

const tripID = "6a1f3c2e-8b4d-4e5f-9a0b-1c2d3e4f5a6b"

func TestIssueAndVerify(t *testing.T) {
	now := time.Now().UTC()
	m, err := newManager(Config{Secret: "s3cret", TTL: time.Hour}, func() time.Time { return now })
	require.NoError(t, err)

	handle, err := m.Issue(tripID)
	require.NoError(t, err)
	require.NotEmpty(t, handle.Token)
	require.Equal(t, tripID, handle.TripID)

	claims, err := m.Verify(handle.Token)
	require.NoError(t, err)
	require.Equal(t, tripID, claims.TripID)
	require.NotEmpty(t, claims.HandleID)

	_, err = m.Authorize(handle.Token, tripID)
	require.NoError(t, err)
}

func TestAuthorizeRejectsOtherTrip(t *testing.T) {
	m, err := newManager(Config{Secret: "s3cret"}, time.Now)
	require.NoError(t, err)
	handle, err := m.Issue(tripID)
	require.NoError(t, err)

	_, err = m.Authorize(handle.Token, "another-trip")
	require.True(t, apperrors.IsCode(err, CodeHandleScope))
}

func TestVerifyRejectsExpiredAndForeignHandles(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	clock := issuedAt
	m, err := newManager(Config{Secret: "s3cret", TTL: time.Hour}, func() time.Time { return clock })
	require.NoError(t, err)
	handle, err := m.Issue(tripID)
	require.NoError(t, err)

	clock = issuedAt.Add(2 * time.Hour)
	_, err = m.Verify(handle.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidHandle))
	require.Contains(t, err.Error(), "expired")

	other, err := newManager(Config{Secret: "different"}, time.Now)
	require.NoError(t, err)
	fresh, err := other.Issue(tripID)
	require.NoError(t, err)
	_, err = m.Verify(fresh.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidHandle))

	_, err = m.Verify("   ")
	require.True(t, apperrors.IsCode(err, CodeInvalidHandle))
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(Config{})
	require.Error(t, err)
}
