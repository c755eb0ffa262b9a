package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sketch-guess/internal/config"
	"sketch-guess/internal/surface"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassifierServer(t *testing.T, classify http.HandlerFunc) (*httptest.Server, *atomic.Bool) {
	t.Helper()
	ready := &atomic.Bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready.Load()})
	})
	if classify != nil {
		mux.HandleFunc("POST /classify", classify)
	}
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, ready
}

func TestHTTPBackendLoadWaitsForReady(t *testing.T) {
	ts, ready := newClassifierServer(t, nil)
	b := NewHTTPBackend(ts.URL+"/", 5, time.Second)

	assert.ErrorIs(t, b.Load(context.Background()), errModelLoading)
	ready.Store(true)
	assert.NoError(t, b.Load(context.Background()))
}

func TestHTTPBackendLoadWithoutURL(t *testing.T) {
	assert.Error(t, NewHTTPBackend("", 5, time.Second).Load(context.Background()))
}

func TestHTTPBackendClassifySendsTensor(t *testing.T) {
	var received httpClassifyRequest
	ts, _ := newClassifierServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"error":null,"results":[{"label":"cat","confidence":0.9}]}`))
	})
	b := NewHTTPBackend(ts.URL, 3, time.Second)

	img := blankImage()
	reply, err := b.Classify(context.Background(), Input{Image: img, Normalized: surface.Normalize(img, surface.InputSize)})
	require.NoError(t, err)
	assert.Equal(t, surface.InputSize, received.Width)
	assert.Len(t, received.Data, surface.InputSize*surface.InputSize)
	assert.Equal(t, 3, received.TopK)
	assert.JSONEq(t, `[{"label":"cat","confidence":0.9}]`, string(reply.Results))
}

func TestHTTPBackendKeepsArrayInErrorSlot(t *testing.T) {
	ts, _ := newClassifierServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":[{"label":"dog","confidence":0.4}]}`))
	})
	b := NewHTTPBackend(ts.URL, 3, time.Second)
	img := blankImage()
	reply, err := b.Classify(context.Background(), Input{Image: img, Normalized: surface.Normalize(img, surface.InputSize)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"dog","confidence":0.4}]`, string(reply.Error))
	assert.Empty(t, reply.Results)
}

func TestHTTPBackendStatusError(t *testing.T) {
	ts, _ := newClassifierServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model evicted"}}`))
	})
	b := NewHTTPBackend(ts.URL, 3, time.Second)
	img := blankImage()
	_, err := b.Classify(context.Background(), Input{Image: img, Normalized: surface.Normalize(img, surface.InputSize)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(503): model evicted")
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "boom", ErrorText(json.RawMessage(`"boom"`)))
	assert.Equal(t, "bad input", ErrorText(json.RawMessage(`{"message":"bad input"}`)))
	assert.Equal(t, "42", ErrorText(json.RawMessage(`42`)))
}

func TestGuessesToReply(t *testing.T) {
	reply, err := guessesToReply(`{"guesses":[{"label":"Ice Cream","confidence":0.2},{"label":"cup","confidence":0.7},{"label":"key","confidence":0.05}]}`, 2)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"cup","confidence":0.7},{"label":"ice_cream","confidence":0.2}]`, string(reply.Results))

	_, err = guessesToReply(`not json`, 2)
	assert.Error(t, err)
}

func TestNewBackendFromConfig(t *testing.T) {
	cfg := config.Default()
	b, err := NewBackend(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "http", b.Name())

	cfg.ClassifierBackend = config.ClassifierBackendOpenAI
	_, err = NewBackend(cfg, nil)
	assert.Error(t, err, "openai backend needs a key")

	cfg.OpenAIAPIKey = "sk-test"
	b, err = NewBackend(cfg, []string{"cat"})
	require.NoError(t, err)
	assert.Equal(t, "openai", b.Name())

	cfg.ClassifierBackend = "tfjs"
	_, err = NewBackend(cfg, nil)
	assert.Error(t, err)
}
