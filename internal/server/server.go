package server

import (
	"net/http"
	"sync"
	"time"

	"sketch-guess/internal/config"
	"sketch-guess/internal/game"
	"sketch-guess/internal/surface"
	"sketch-guess/internal/web"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
)

// Classifier is the shared classifier client every session submits to.
type Classifier interface {
	game.Classifier
	Ready() bool
}

type Options struct {
	Config       config.Config
	Vocabulary   game.Vocabulary
	VocabularyID string
	Classifier   Classifier
	Scheduler    game.Scheduler
	Logger       zerolog.Logger
}

type Server struct {
	cfg        config.Config
	vocab      game.Vocabulary
	vocabID    string
	classifier Classifier
	scheduler  game.Scheduler
	store      *Store
	ws         *wsHub
	log        zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func New(opts Options) *Server {
	vocab := opts.Vocabulary
	if vocab.Len() == 0 {
		vocab = game.DefaultVocabulary()
	}
	vocabID := opts.VocabularyID
	if vocabID == "" {
		vocabID = opts.Config.VocabularyList
	}
	s := &Server{
		cfg:        opts.Config,
		vocab:      vocab,
		vocabID:    vocabID,
		classifier: opts.Classifier,
		scheduler:  opts.Scheduler,
		store:      NewStore(),
		ws:         newWSHub(opts.Logger),
		log:        opts.Logger,
		stop:       make(chan struct{}),
	}
	if idle := s.cfg.SessionIdle(); idle > 0 {
		go s.janitor(idle)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePlay)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/vocabulary", s.handleVocabulary)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/clear", s.handleClear)
	mux.HandleFunc("POST /api/sessions/{id}/skip", s.handleSkip)
	mux.HandleFunc("POST /api/sessions/{id}/pointer", s.handlePointer)
	mux.HandleFunc("GET /api/sessions/{id}/canvas.png", s.handleCanvasPNG)
	mux.HandleFunc("GET /api/sessions/{id}/input.png", s.handleInputPNG)
	mux.HandleFunc("GET /ws/sessions/{id}", s.handleWebsocket)
	return mux
}

// Close stops the idle sweep and ends every live session.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	for _, id := range s.store.IDs() {
		s.closeSession(id)
	}
}

func (s *Server) janitor(idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweepIdle(now.Add(-idle))
		}
	}
}

// sweepIdle closes sessions without sockets that have not been used since cutoff.
func (s *Server) sweepIdle(cutoff time.Time) int {
	closed := 0
	for _, id := range s.store.IdleSince(cutoff) {
		if s.ws.Connected(id) {
			continue
		}
		if s.closeSession(id) {
			s.log.Info().Str("session_id", id).Msg("idle session swept")
			closed++
		}
	}
	return closed
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.Play(web.PlayPage{
		Width:       surface.Width,
		Height:      surface.Height,
		StrokeWidth: int(surface.StrokeWidth),
	})).ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"model_ready": s.classifier != nil && s.classifier.Ready(),
		"sessions":    s.store.Len(),
	})
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"list":  s.vocabID,
		"words": s.vocab.Words(),
	})
}
