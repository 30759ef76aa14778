package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"orbitarena/config"
)

func TestHandleAdminConfig(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		wantCode int
		wantStep float64
	}{
		{name: "get current", method: http.MethodGet, wantCode: http.StatusOK, wantStep: 0.01},
		{name: "update step", method: http.MethodPost, body: `{"step":0.5}`, wantCode: http.StatusOK, wantStep: 0.5},
		{name: "reject non-positive step", method: http.MethodPost, body: `{"step":0}`, wantCode: http.StatusBadRequest, wantStep: 0.01},
		{name: "reject invalid json", method: http.MethodPost, body: `{`, wantCode: http.StatusBadRequest, wantStep: 0.01},
		{name: "reject transport field", method: http.MethodPost, body: `{"maxMessageSize":1}`, wantCode: http.StatusBadRequest, wantStep: 0.01},
		{name: "reject mixed update", method: http.MethodPost, body: `{"step":0.5,"sendQueueSize":8}`, wantCode: http.StatusBadRequest, wantStep: 0.01},
		{name: "method not allowed", method: http.MethodDelete, wantCode: http.StatusMethodNotAllowed, wantStep: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(config.Default(), zaptest.NewLogger(t).Sugar())
			req := httptest.NewRequest(tt.method, "/admin/config", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			hub.HandleAdminConfig(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStep, hub.Room().Step())
		})
	}
}

func TestHandleAdminConfig_GetPayload(t *testing.T) {
	hub := NewHub(config.Default(), nil)
	rec := httptest.NewRecorder()
	hub.HandleAdminConfig(rec, httptest.NewRequest(http.MethodGet, "/admin/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"step":0.01,"maxMessageSize":4096,"sendQueueSize":256}`, rec.Body.String())
}

func TestHandleMetrics(t *testing.T) {
	hub := NewHub(config.Default(), nil)
	hub.Room().Join()
	hub.Metrics().IncReceived()
	hub.Metrics().IncDecodeFailures()

	rec := httptest.NewRecorder()
	hub.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Players     int              `json:"players"`
		Connections int              `json:"connections"`
		Counters    map[string]int64 `json:"counters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Players)
	assert.Equal(t, 0, payload.Connections)
	assert.Equal(t, int64(1), payload.Counters["messages_received"])
	assert.Equal(t, int64(1), payload.Counters["decode_failures"])
	assert.Equal(t, int64(0), payload.Counters["moves_applied"])

	rec = httptest.NewRecorder()
	hub.HandleMetrics(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
