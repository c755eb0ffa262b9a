package game

import (
	"context"
	"encoding/json"
	"image"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"sketch-guess/internal/classifier"
	"sketch-guess/internal/logger"
	"sketch-guess/internal/surface"

	"github.com/stretchr/testify/require"
)

type pendingRequest struct {
	seq     uint64
	img     image.Image
	deliver func(classifier.Delivery)
}

type fakeClassifier struct {
	mu        sync.Mutex
	ready     bool
	seq       uint64
	listeners []func()
	pending   []pendingRequest
}

func (f *fakeClassifier) Classify(_ context.Context, img image.Image, deliver func(classifier.Delivery)) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return 0, classifier.ErrNotReady
	}
	f.seq++
	f.pending = append(f.pending, pendingRequest{seq: f.seq, img: img, deliver: deliver})
	return f.seq, nil
}

func (f *fakeClassifier) OnReady(fn func()) {
	f.mu.Lock()
	if f.ready {
		f.mu.Unlock()
		fn()
		return
	}
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

func (f *fakeClassifier) markReady() {
	f.mu.Lock()
	f.ready = true
	listeners := f.listeners
	f.listeners = nil
	f.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (f *fakeClassifier) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *fakeClassifier) resolve(t *testing.T, index int, reply classifier.Reply, err error) {
	t.Helper()
	f.mu.Lock()
	require.Less(t, index, len(f.pending), "no pending request %d", index)
	p := f.pending[index]
	f.mu.Unlock()
	p.deliver(classifier.Delivery{Seq: p.seq, Reply: reply, Err: err})
}

type manualScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
	m.funcs = append(m.funcs, f)
}

func (m *manualScheduler) scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.funcs)
}

func (m *manualScheduler) fire() {
	m.mu.Lock()
	funcs := m.funcs
	m.funcs = nil
	m.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}

type harness struct {
	session    *Session
	classifier *fakeClassifier
	scheduler  *manualScheduler
}

func newHarness(t *testing.T, words []string, dropStale bool, sinks ...Sinks) *harness {
	t.Helper()
	vocab, err := NewVocabulary(words)
	require.NoError(t, err)
	h := &harness{
		classifier: &fakeClassifier{},
		scheduler:  &manualScheduler{},
	}
	h.session = NewSession(Config{
		Vocabulary:       vocab,
		Classifier:       h.classifier,
		Sinks:            sinks,
		WinDelay:         2 * time.Second,
		DropStaleResults: dropStale,
		Scheduler:        h.scheduler,
		Rand:             rand.New(rand.NewPCG(7, 11)),
		Logger:           logger.Nop(),
	})
	t.Cleanup(h.session.Close)
	h.session.Start()
	return h
}

func (h *harness) ready() *harness {
	h.classifier.markReady()
	return h
}

func (h *harness) drag(t *testing.T, points ...surface.Point) {
	t.Helper()
	require.NotEmpty(t, points)
	require.NoError(t, h.session.Pointer(PointerEvent{Kind: PointerDown, Prev: points[0], Cur: points[0]}))
	for i := 1; i < len(points); i++ {
		require.NoError(t, h.session.Pointer(PointerEvent{Kind: PointerMove, Prev: points[i-1], Cur: points[i]}))
	}
	require.NoError(t, h.session.Pointer(PointerEvent{Kind: PointerUp, Prev: points[len(points)-1], Cur: points[len(points)-1]}))
}

func results(t *testing.T, predictions ...classifier.Prediction) classifier.Reply {
	t.Helper()
	raw, err := json.Marshal(predictions)
	require.NoError(t, err)
	return classifier.Reply{Results: raw}
}

func guess(label string, confidence float64) classifier.Prediction {
	return classifier.Prediction{Label: label, Confidence: confidence}
}

func surfaceBlank(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff {
				return false
			}
		}
	}
	return true
}

func nanValue() float64 { return math.NaN() }
