package server

import (
	"errors"
	"image"
	"image/png"
	"net/http"

	"sketch-guess/internal/game"
	"sketch-guess/internal/surface"
)

func (s *Server) newSession(id string) *game.Session {
	return game.NewSession(game.Config{
		Vocabulary:       s.vocab,
		Classifier:       s.classifier,
		Sinks:            []game.Sinks{s.ws.sinks(id)},
		WinDelay:         s.cfg.WinDelay(),
		DropStaleResults: s.cfg.DropStaleResults,
		Scheduler:        s.scheduler,
		Logger:           s.log.With().Str("session_id", id).Logger(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, session := s.store.Create(s.newSession)
	session.Start()
	s.log.Info().Str("session_id", id).Msg("session created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": id,
		"snapshot":   session.Snapshot(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *game.Session, bool) {
	id := r.PathValue("id")
	session, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errSessionNotFound.Error())
		return id, nil, false
	}
	return id, session, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	_, session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.closeSession(id) {
		writeError(w, http.StatusNotFound, errSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) closeSession(id string) bool {
	session, err := s.store.Delete(id)
	if err != nil {
		return false
	}
	session.Close()
	s.ws.CloseGroup(id)
	s.log.Info().Str("session_id", id).Msg("session closed")
	return true
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id, session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.clear(id, session)
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	_, session, ok := s.session(w, r)
	if !ok {
		return
	}
	session.Skip()
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	_, session, ok := s.session(w, r)
	if !ok {
		return
	}
	var ev game.PointerEvent
	if err := readJSON(r.Body, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pointer event")
		return
	}
	if err := session.Pointer(ev); err != nil {
		writeError(w, pointerErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) clear(id string, session *game.Session) {
	session.Clear()
	s.ws.Broadcast(id, wsMessage{Type: "cleared", Value: true})
}

func pointerErrorStatus(err error) int {
	if errors.Is(err, surface.ErrInvalidSegment) || errors.Is(err, game.ErrUnknownPointerKind) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleCanvasPNG(w http.ResponseWriter, r *http.Request) {
	_, session, ok := s.session(w, r)
	if !ok {
		return
	}
	switch r.URL.Query().Get("surface") {
	case "", "display":
		writePNG(w, session.DisplayImage())
	case "input", "classification":
		writePNG(w, session.InputImage())
	default:
		writeError(w, http.StatusBadRequest, "unknown surface")
	}
}

// handleInputPNG serves the downscaled grayscale image the classifier sees.
func (s *Server) handleInputPNG(w http.ResponseWriter, r *http.Request) {
	_, session, ok := s.session(w, r)
	if !ok {
		return
	}
	writePNG(w, surface.Normalize(session.InputImage(), surface.InputSize))
}

func writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_ = png.Encode(w, img)
}
