package server

import (
	"context"
	"image"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"sketch-guess/internal/classifier"
	"sketch-guess/internal/config"
	"sketch-guess/internal/game"
	"sketch-guess/internal/logger"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// stubClassifier answers every request with a fixed prediction on its own
// goroutine, the way the real client delivers.
type stubClassifier struct {
	mu         sync.Mutex
	ready      bool
	label      string
	confidence float64
	calls      int
}

func (c *stubClassifier) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *stubClassifier) OnReady(f func()) {
	if c.Ready() {
		f()
	}
}

func (c *stubClassifier) Classify(_ context.Context, _ image.Image, deliver func(classifier.Delivery)) (uint64, error) {
	c.mu.Lock()
	if !c.ready {
		c.mu.Unlock()
		return 0, classifier.ErrNotReady
	}
	c.calls++
	seq := uint64(c.calls)
	raw := []byte(`[{"label":"` + c.label + `","confidence":` + formatFloat(c.confidence) + `}]`)
	c.mu.Unlock()
	go deliver(classifier.Delivery{Seq: seq, Reply: classifier.Reply{Results: raw}})
	return seq, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newGameServer(t *testing.T, words []string, stub *stubClassifier) (*Server, *httptest.Server) {
	t.Helper()
	vocab, err := game.NewVocabulary(words)
	if err != nil {
		t.Fatalf("vocabulary: %v", err)
	}
	srv := New(Options{
		Config:     config.Default(),
		Vocabulary: vocab,
		Classifier: stub,
		Logger:     logger.Nop(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}
