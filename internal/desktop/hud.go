package desktop

import (
	"strconv"
	"sync"

	"sketch-guess/internal/game"
)

// HUD keeps the text panel's values. Its sinks run on classifier and timer
// goroutines while the window reads it every frame.
type HUD struct {
	mu         sync.Mutex
	label      string
	confidence string
	target     string
	score      int
	overlay    bool
}

func NewHUD() *HUD {
	return &HUD{
		label:      game.IdleLabel,
		confidence: game.IdleConfidence,
	}
}

func (h *HUD) Sinks() game.Sinks {
	return game.Sinks{
		Label:      func(text string) { h.set(func() { h.label = text }) },
		Confidence: func(text string) { h.set(func() { h.confidence = text }) },
		Score:      func(score int) { h.set(func() { h.score = score }) },
		TargetWord: func(word string) { h.set(func() { h.target = word }) },
		Overlay:    func(visible bool) { h.set(func() { h.overlay = visible }) },
	}
}

func (h *HUD) set(update func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	update()
}

func (h *HUD) Overlay() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.overlay
}

// Lines renders the panel top to bottom.
func (h *HUD) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	target := h.target
	if target == "" {
		target = "loading model..."
	}
	return []string{
		"Draw: " + target,
		"Guess: " + h.label + " (" + h.confidence + ")",
		"Score: " + strconv.Itoa(h.score),
		"[C] clear  [S] skip",
	}
}
