package game

import "github.com/rs/zerolog"

const (
	IdleLabel      = "Draw..."
	IdleConfidence = "0%"
)

// Sinks receive UI updates. Any field may be nil; a nil sink is skipped
// without affecting the others.
type Sinks struct {
	Label      func(text string)
	Confidence func(text string)
	Score      func(score int)
	TargetWord func(word string)
	Overlay    func(visible bool)
}

// Display pushes values to every attached set of sinks and remembers the
// last value of each so snapshots never have to read back from the UI.
type Display struct {
	sinks []Sinks
	log   zerolog.Logger

	label      string
	confidence string
	score      int
	target     string
	overlay    bool
}

func NewDisplay(log zerolog.Logger, sinks ...Sinks) *Display {
	return &Display{
		sinks:      sinks,
		log:        log,
		label:      IdleLabel,
		confidence: IdleConfidence,
	}
}

func (d *Display) SetLabel(text string) {
	d.label = text
	for _, s := range d.sinks {
		if s.Label != nil {
			d.push("label", func() { s.Label(text) })
		}
	}
}

func (d *Display) SetConfidence(text string) {
	d.confidence = text
	for _, s := range d.sinks {
		if s.Confidence != nil {
			d.push("confidence", func() { s.Confidence(text) })
		}
	}
}

func (d *Display) SetScore(score int) {
	d.score = score
	for _, s := range d.sinks {
		if s.Score != nil {
			d.push("score", func() { s.Score(score) })
		}
	}
}

func (d *Display) SetTargetWord(word string) {
	d.target = word
	for _, s := range d.sinks {
		if s.TargetWord != nil {
			d.push("target_word", func() { s.TargetWord(word) })
		}
	}
}

func (d *Display) SetOverlay(visible bool) {
	d.overlay = visible
	for _, s := range d.sinks {
		if s.Overlay != nil {
			d.push("overlay", func() { s.Overlay(visible) })
		}
	}
}

func (d *Display) ResetGuess() {
	d.SetLabel(IdleLabel)
	d.SetConfidence(IdleConfidence)
}

// push runs one sink update; a panicking sink is logged and skipped.
func (d *Display) push(sink string, update func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("sink", sink).Interface("panic", r).Msg("ui sink update failed")
		}
	}()
	update()
}
