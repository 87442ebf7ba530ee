package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperclay/rfmflow/internal/cleaning"
	"github.com/harperclay/rfmflow/internal/cluster"
	"github.com/harperclay/rfmflow/internal/inference"
	"github.com/harperclay/rfmflow/internal/model"
	"github.com/harperclay/rfmflow/internal/scale"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	scaler := &scale.StandardScaler{
		Mean: []float64{0, 0, 0},
		Std:  []float64{1, 1, 1},
	}
	m := &cluster.Model{
		K: 3,
		Centroids: [][]float64{
			{44, 4, 1300},
			{250, 1, 480},
			{10, 45, 26000},
		},
	}

	ctx, err := inference.NewContext(scaler, m, model.DefaultCatalog(), cleaning.DefaultPolicy(), "run-test")
	require.NoError(t, err)

	return New(inference.NewSwapper(ctx))
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandlePredict_OK(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{
		"recency":   5,
		"frequency": 50,
		"monetary":  25000,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ClusterID)
	assert.Equal(t, "Loyal High-Value", resp.SegmentName)
	assert.NotEmpty(t, resp.Strategy)
	assert.Equal(t, "run-test", resp.RunID)
	assert.Equal(t, 5, resp.RFM.Recency)
}

func TestHandlePredict_MissingFields(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{
		"recency": 5,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "required fields")
}

func TestHandlePredict_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{"zero monetary", map[string]any{"recency": 5, "frequency": 5, "monetary": 0}, "monetary"},
		{"negative monetary", map[string]any{"recency": 5, "frequency": 5, "monetary": -10}, "monetary"},
		{"zero frequency", map[string]any{"recency": 5, "frequency": 0, "monetary": 100}, "frequency"},
		{"negative recency", map[string]any{"recency": -2, "frequency": 5, "monetary": 100}, "recency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodPost, "/api/predict", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantField, resp["field"])
		})
	}
}

func TestHandlePredict_NotJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString("recency=5"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePredict_ModelsNotLoaded(t *testing.T) {
	srv := New(inference.NewSwapper(nil))

	w := doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{
		"recency": 5, "frequency": 5, "monetary": 100,
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["models_loaded"])
	assert.Equal(t, "run-test", resp["run_id"])
}

func TestHandleHealth_Degraded(t *testing.T) {
	srv := New(inference.NewSwapper(nil))

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, false, resp["models_loaded"])
}

func TestHandleSegments(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/segments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Segments []segmentEntry `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Segments, 5)
	assert.Equal(t, 0, resp.Segments[0].ClusterID)
	assert.Equal(t, "Steady Regulars", resp.Segments[0].Segment.Name)
	assert.Equal(t, "Ultra VIP", resp.Segments[4].Segment.Name)
}
