package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	assertString(t, body["session_id"])
	return body["session_id"].(string)
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, sessionID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/sessions/"+sessionID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func sendPointer(t *testing.T, ts *httptest.Server, sessionID, kind string, prev, cur [2]float64) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/sessions/"+sessionID+"/pointer", map[string]any{
		"kind": kind,
		"prev": map[string]float64{"x": prev[0], "y": prev[1]},
		"cur":  map[string]float64{"x": cur[0], "y": cur[1]},
	})
}

func drawStroke(t *testing.T, ts *httptest.Server, sessionID string) {
	t.Helper()
	steps := []struct {
		kind      string
		prev, cur [2]float64
	}{
		{"down", [2]float64{40, 40}, [2]float64{40, 40}},
		{"move", [2]float64{40, 40}, [2]float64{140, 120}},
		{"move", [2]float64{140, 120}, [2]float64{220, 220}},
		{"up", [2]float64{220, 220}, [2]float64{220, 220}},
	}
	for _, step := range steps {
		resp := sendPointer(t, ts, sessionID, step.kind, step.prev, step.cur)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("pointer %s: expected status %d, got %d", step.kind, http.StatusOK, resp.StatusCode)
		}
	}
}

// waitForSnapshot polls until match accepts the snapshot.
func waitForSnapshot(t *testing.T, ts *httptest.Server, sessionID string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		snap := fetchSnapshot(t, ts, sessionID)
		if match(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot never matched, last: %#v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func assertString(t *testing.T, value any) {
	t.Helper()
	if _, ok := value.(string); !ok {
		t.Fatalf("expected string, got %T", value)
	}
}
