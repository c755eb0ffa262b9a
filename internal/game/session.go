package game

import (
	"context"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"sketch-guess/internal/classifier"
	"sketch-guess/internal/surface"

	"github.com/rs/zerolog"
)

// Classifier is what a session needs from the classifier client.
type Classifier interface {
	Submitter
	OnReady(f func())
}

type Config struct {
	Vocabulary       Vocabulary
	Classifier       Classifier
	Sinks            []Sinks
	WinDelay         time.Duration
	DropStaleResults bool
	Scheduler        Scheduler
	Rand             *rand.Rand
	Logger           zerolog.Logger
}

type Snapshot struct {
	State      State  `json:"state"`
	Round      int    `json:"round"`
	TargetWord string `json:"target_word"`
	Active     bool   `json:"active"`
	Score      int    `json:"score"`
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
	Overlay    bool   `json:"overlay"`
	ModelReady bool   `json:"model_ready"`
}

// Session is one player's game. Every entry point, including classifier
// deliveries and the post-win timer, runs under one lock, so the controller,
// router and arbiter see a single-threaded world.
type Session struct {
	mu sync.Mutex

	ctrl           *Controller
	router         *Router
	arbiter        *Arbiter
	display        *Display
	displaySurface *surface.Surface
	inputSurface   *surface.Surface
	classifier     Classifier

	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger
}

func NewSession(cfg Config) *Session {
	if cfg.Vocabulary.Len() == 0 {
		cfg.Vocabulary = DefaultVocabulary()
	}
	if cfg.WinDelay <= 0 {
		cfg.WinDelay = DefaultWinDelay
	}
	displaySurface, inputSurface, set := surface.Pair()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		display:        NewDisplay(cfg.Logger, cfg.Sinks...),
		displaySurface: displaySurface,
		inputSurface:   inputSurface,
		classifier:     cfg.Classifier,
		ctx:            ctx,
		cancel:         cancel,
		log:            cfg.Logger,
	}
	s.ctrl = newController(controllerConfig{
		vocab:     cfg.Vocabulary,
		surfaces:  set,
		display:   s.display,
		scheduler: cfg.Scheduler,
		post:      s.post,
		winDelay:  cfg.WinDelay,
		rng:       cfg.Rand,
		log:       cfg.Logger,
	})
	s.arbiter = &Arbiter{
		ctrl:      s.ctrl,
		display:   s.display,
		dropStale: cfg.DropStaleResults,
		log:       cfg.Logger,
	}
	s.router = &Router{
		ctrl:     s.ctrl,
		surfaces: set,
		input:    inputSurface,
		style:    surface.DefaultStyle(),
		ctx:      ctx,
		deliver:  s.deliver,
		log:      cfg.Logger,
	}
	if cfg.Classifier != nil {
		s.router.submitter = cfg.Classifier
	}
	return s
}

// Start waits for the classifier to become ready and then opens the first
// round. It returns immediately.
func (s *Session) Start() {
	if s.classifier == nil {
		return
	}
	s.classifier.OnReady(func() {
		s.post(s.ctrl.ModelReady)
	})
}

// Close cancels in-flight classification requests.
func (s *Session) Close() {
	s.cancel()
	s.log.Debug().Msg("session closed")
}

func (s *Session) Pointer(ev PointerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.router.Handle(ev)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Clear()
}

func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Skip()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	round := s.ctrl.Round()
	return Snapshot{
		State:      s.ctrl.State(),
		Round:      round.Number,
		TargetWord: DisplayWord(round.TargetWord),
		Active:     round.Active,
		Score:      round.Score,
		Label:      s.display.label,
		Confidence: s.display.confidence,
		Overlay:    s.display.overlay,
		ModelReady: s.ctrl.ModelLoaded(),
	}
}

// DisplayImage returns a copy of the visible canvas.
func (s *Session) DisplayImage() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displaySurface.Image()
}

// InputImage returns a copy of the classification surface.
func (s *Session) InputImage() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputSurface.Image()
}

// SurfacesDiff counts pixels that differ between the two surfaces.
func (s *Session) SurfacesDiff() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return surface.Diff(s.displaySurface, s.inputSurface)
}

func (s *Session) deliver(d classifier.Delivery) {
	s.post(func() {
		s.arbiter.Handle(d)
	})
}

func (s *Session) post(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}
