package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handthrottle/internal/app"
	"github.com/ayusman/handthrottle/internal/capture"
	"github.com/ayusman/handthrottle/internal/detector"
	"github.com/ayusman/handthrottle/internal/input"
	"github.com/ayusman/handthrottle/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store, string) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	a := app.New(app.Config{
		Store:             st,
		Camera:            capture.NewMockCamera(nil, false),
		Detector:          detector.NewMockDetector(),
		Keyboard:          input.NewMockKeyboard(),
		MinActionDuration: 50 * time.Millisecond,
	})

	modelPath := filepath.Join(t.TempDir(), "model.json")
	s := New(Config{Store: st, App: a, ModelPath: modelPath})
	return s, st, modelPath
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}
}

func TestStatus(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var status app.Status
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Running {
		t.Error("pipeline should not be running")
	}
	if status.Action != "idle" {
		t.Errorf("expected idle action, got %s", status.Action)
	}
}

func TestConfig(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(t, s, http.MethodPut, "/api/config", map[string]string{
		"confidence_threshold": "0.7",
		"accelerate_key":       "up",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var settings map[string]string
	if err := json.NewDecoder(w.Body).Decode(&settings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if settings["confidence_threshold"] != "0.7" || settings["accelerate_key"] != "up" {
		t.Errorf("settings did not persist: %v", settings)
	}

	w = doRequest(t, s, http.MethodPut, "/api/config", "not a map")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid body, got %d", w.Code)
	}
}

func TestSessions(t *testing.T) {
	s, st, _ := newTestServer(t)

	id, err := st.Sessions().Create()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := st.Sessions().Finish(id, 100, 80, 3, 2); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	w := doRequest(t, s, http.MethodGet, "/api/sessions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Sessions []struct {
			ID            string `json:"id"`
			EndedAt       string `json:"ended_at"`
			Frames        int64  `json:"frames"`
			Accelerations int64  `json:"accelerations"`
		} `json:"sessions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(resp.Sessions))
	}
	if resp.Sessions[0].ID != id || resp.Sessions[0].Frames != 100 || resp.Sessions[0].Accelerations != 3 {
		t.Errorf("unexpected session payload: %+v", resp.Sessions[0])
	}
	if resp.Sessions[0].EndedAt == "" {
		t.Error("finished session should carry an end time")
	}
}

func TestSamples(t *testing.T) {
	s, st, _ := newTestServer(t)

	features := []float64{0.5, 0.01, 0.8, 0.4, 0.55, 0.6, 0.5, 0.45}
	if _, err := st.Samples().Create("open", features); err != nil {
		t.Fatalf("failed to seed sample: %v", err)
	}

	w := doRequest(t, s, http.MethodGet, "/api/samples", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var counts struct {
		Counts map[string]int64 `json:"counts"`
		Total  int64            `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&counts); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if counts.Total != 1 || counts.Counts["open"] != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}

	// Recording control round trip.
	w = doRequest(t, s, http.MethodPost, "/api/samples", map[string]string{"action": "start", "label": "open"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for start, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, s, http.MethodPost, "/api/samples", map[string]string{"action": "stop"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for stop, got %d", w.Code)
	}
	w = doRequest(t, s, http.MethodPost, "/api/samples", map[string]string{"action": "start", "label": "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid label, got %d", w.Code)
	}
	w = doRequest(t, s, http.MethodPost, "/api/samples", map[string]string{"action": "pause"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown action, got %d", w.Code)
	}

	w = doRequest(t, s, http.MethodDelete, "/api/samples", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doRequest(t, s, http.MethodGet, "/api/samples", nil)
	json.NewDecoder(w.Body).Decode(&counts)
	if counts.Total != 0 {
		t.Errorf("expected no samples after delete, got %d", counts.Total)
	}
}

func TestTrain(t *testing.T) {
	s, st, modelPath := newTestServer(t)

	// Too few samples: a single class cannot be trained.
	w := doRequest(t, s, http.MethodPost, "/api/train", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 with no samples, got %d", w.Code)
	}

	// Seed a separable training set.
	for i := 0; i < 10; i++ {
		jitter := float64(i) * 0.005
		open := []float64{0.85 + jitter, 0.02, 0.8, 0.9, 0.85, 0.8, 0.85, 0.9}
		closed := []float64{0.2 + jitter, 0.01, 0.8, 0.2, 0.25, 0.2, 0.25, 0.2}
		if _, err := st.Samples().Create("open", open); err != nil {
			t.Fatalf("failed to seed open sample: %v", err)
		}
		if _, err := st.Samples().Create("closed", closed); err != nil {
			t.Fatalf("failed to seed closed sample: %v", err)
		}
	}

	w = doRequest(t, s, http.MethodPost, "/api/train", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Samples  int     `json:"samples"`
		Open     int     `json:"open"`
		Closed   int     `json:"closed"`
		Accuracy float64 `json:"accuracy"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Samples != 20 || resp.Open != 10 || resp.Closed != 10 {
		t.Errorf("unexpected sample counts: %+v", resp)
	}
	if resp.Accuracy < 0.95 {
		t.Errorf("expected near-perfect training accuracy on separable data, got %f", resp.Accuracy)
	}

	if _, err := os.Stat(modelPath); err != nil {
		t.Errorf("model file was not written: %v", err)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _, _ := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/health"},
		{http.MethodPost, "/api/status"},
		{http.MethodDelete, "/api/config"},
		{http.MethodPost, "/api/sessions"},
		{http.MethodGet, "/api/train"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			w := doRequest(t, s, tc.method, tc.path, nil)
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected 405, got %d", w.Code)
			}
		})
	}
}
