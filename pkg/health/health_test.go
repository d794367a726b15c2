package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyEndpoint_NotReadyUntilSet(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("database", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database")
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestReadyEndpoint_ShutdownGate(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.SetReady(false)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveEndpoint_IgnoresReadinessGate(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLiveEndpoint_CheckTimeout(t *testing.T) {
	h := New()
	h.AddLivenessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "slow")
}

func TestIsReady(t *testing.T) {
	h := New()
	require.False(t, h.IsReady(context.Background()))

	h.SetReady(true)
	assert.True(t, h.IsReady(context.Background()))

	h.AddReadinessCheck("broken", time.Second, func(context.Context) error {
		return errors.New("down")
	})
	assert.False(t, h.IsReady(context.Background()))
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
