package surface

import "fmt"

// Set is an ordered list of surfaces that always receive the same strokes.
type Set []*Surface

// Pair returns the display and classification surfaces at the game size,
// in that order.
func Pair() (display, classification *Surface, set Set) {
	display = New("display", Width, Height, Background)
	classification = New("classification", Width, Height, Background)
	return display, classification, Set{display, classification}
}

// ApplyStroke draws seg on every surface, in order. Either all surfaces
// receive the stroke or none do. Surfaces in a set hold identical pixels
// before every stroke, so when one surface fails, the ones already drawn
// are rolled back by copying from it; a surface whose stroke errors has not
// been rasterized.
func (set Set) ApplyStroke(seg Segment, style Style) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	for i, s := range set {
		if err := s.Stroke(seg, style); err != nil {
			set[:i].copyFrom(s)
			return fmt.Errorf("stroke %s surface: %w", s.name, err)
		}
	}
	return nil
}

// copyFrom overwrites every surface in the set with src's pixels.
func (set Set) copyFrom(src *Surface) {
	for _, s := range set {
		if s != src {
			s.restore(src.pixmap.Data())
		}
	}
}

func (set Set) Clear() {
	for _, s := range set {
		s.Clear()
	}
}
