package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	ginModeOnce sync.Once
)

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

func TestHealth(t *testing.T) {
	setupGinTestMode()
	router := NewRouter(func(context.Context) (*Status, error) { return &Status{}, nil })

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost} {
		req := httptest.NewRequest(method, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestStatus(t *testing.T) {
	setupGinTestMode()
	router := NewRouter(func(context.Context) (*Status, error) {
		return &Status{
			Predictors:     []string{"A", "C"},
			PendingBackend: "redis",
			ExpertChatID:   -1001,
			StartedAt:      StartedAt(),
		}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	got := new(Status)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), got))
	require.Equal(t, []string{"A", "C"}, got.Predictors)
	require.Equal(t, "redis", got.PendingBackend)
	require.Equal(t, int64(-1001), got.ExpertChatID)
	require.NotEmpty(t, got.StartedAt)
}

func TestStatusError(t *testing.T) {
	setupGinTestMode()
	router := NewRouter(func(context.Context) (*Status, error) {
		return nil, errors.New("registry not loaded")
	})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "status unavailable")
}

func TestRunServerStopsWithContext(t *testing.T) {
	setupGinTestMode()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()

	cancel()
	require.NoError(t, <-done)
}
