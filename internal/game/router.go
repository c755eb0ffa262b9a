package game

import (
	"context"
	"errors"
	"image"

	"sketch-guess/internal/classifier"
	"sketch-guess/internal/surface"

	"github.com/rs/zerolog"
)

type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

// PointerEvent carries the previous and current canvas position, like a
// frame of mouse input.
type PointerEvent struct {
	Kind PointerKind   `json:"kind"`
	Prev surface.Point `json:"prev"`
	Cur  surface.Point `json:"cur"`
}

var ErrUnknownPointerKind = errors.New("unknown pointer kind")

// Submitter is the part of the classifier client the router needs.
type Submitter interface {
	Classify(ctx context.Context, img image.Image, deliver func(classifier.Delivery)) (uint64, error)
}

// Router turns pointer input into dual-surface strokes and asks for a
// classification at the end of each stroke.
type Router struct {
	ctrl     *Controller
	surfaces surface.Set
	input    *surface.Surface
	style    surface.Style
	pressed  bool

	ctx       context.Context
	submitter Submitter
	deliver   func(classifier.Delivery)
	log       zerolog.Logger
}

func (r *Router) Pressed() bool { return r.pressed }

func (r *Router) Handle(ev PointerEvent) error {
	switch ev.Kind {
	case PointerDown:
		r.pressed = true
		return r.draw(ev)
	case PointerMove:
		if !r.pressed {
			return nil
		}
		return r.draw(ev)
	case PointerUp:
		r.pressed = false
		if r.ctrl.Active() {
			r.requestClassification()
		}
		return nil
	default:
		return ErrUnknownPointerKind
	}
}

func (r *Router) draw(ev PointerEvent) error {
	if !r.ctrl.Active() {
		return nil
	}
	return r.surfaces.ApplyStroke(surface.Segment{From: ev.Prev, To: ev.Cur}, r.style)
}

func (r *Router) requestClassification() {
	if r.submitter == nil {
		return
	}
	seq, err := r.submitter.Classify(r.ctx, r.input.Image(), r.deliver)
	if errors.Is(err, classifier.ErrNotReady) {
		r.log.Debug().Msg("model not ready; classification skipped")
		return
	}
	if err != nil {
		r.log.Warn().Err(err).Msg("classification request failed")
		return
	}
	r.log.Debug().Uint64("seq", seq).Msg("classification requested")
}
