// Package desktop holds the window-independent parts of the desktop front
// end: turning mouse samples into pointer events and keeping the HUD text.
package desktop

import (
	"sketch-guess/internal/game"
	"sketch-guess/internal/surface"
)

// Input is one frame's mouse sample in canvas coordinates.
type Input struct {
	X, Y         float64
	Held         bool
	JustPressed  bool
	JustReleased bool
}

// Tracker remembers the previous cursor position between frames.
type Tracker struct {
	width, height float64
	pressed       bool
	last          surface.Point
}

func NewTracker(width, height int) *Tracker {
	return &Tracker{width: float64(width), height: float64(height)}
}

func (t *Tracker) Pressed() bool { return t.pressed }

// Step returns the pointer events for one frame. A press only starts a
// stroke inside the canvas; once started, positions are clamped to it.
func (t *Tracker) Step(in Input) []game.PointerEvent {
	var events []game.PointerEvent
	if in.JustPressed && t.inside(in.X, in.Y) {
		t.pressed = true
		t.last = surface.Point{X: in.X, Y: in.Y}
		events = append(events, game.PointerEvent{Kind: game.PointerDown, Prev: t.last, Cur: t.last})
	}
	if !t.pressed {
		return events
	}
	cur := t.clamp(in.X, in.Y)
	if in.Held && !in.JustPressed && cur != t.last {
		events = append(events, game.PointerEvent{Kind: game.PointerMove, Prev: t.last, Cur: cur})
		t.last = cur
	}
	if in.JustReleased || !in.Held {
		events = append(events, game.PointerEvent{Kind: game.PointerUp, Prev: t.last, Cur: cur})
		t.pressed = false
	}
	return events
}

func (t *Tracker) inside(x, y float64) bool {
	return x >= 0 && y >= 0 && x < t.width && y < t.height
}

func (t *Tracker) clamp(x, y float64) surface.Point {
	return surface.Point{X: clampTo(x, t.width-1), Y: clampTo(y, t.height-1)}
}

func clampTo(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
