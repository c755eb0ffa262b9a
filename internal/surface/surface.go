// Package surface holds the pixel buffers strokes are drawn on: the visible
// canvas and the off-screen copy handed to the classifier.
package surface

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
)

const (
	Width       = 280
	Height      = 280
	StrokeWidth = 16
)

var (
	Background = gg.White
	Ink        = gg.Black
)

var ErrInvalidSegment = errors.New("invalid segment")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Segment is one pointer step: the previous and current canvas coordinates.
type Segment struct {
	From Point
	To   Point
}

func (s Segment) Validate() error {
	if !s.From.finite() || !s.To.finite() {
		return fmt.Errorf("%w: non-finite endpoint %v -> %v", ErrInvalidSegment, s.From, s.To)
	}
	return nil
}

type Style struct {
	Width float64
	Color gg.RGBA
}

// DefaultStyle is the only pen the game uses.
func DefaultStyle() Style {
	return Style{Width: StrokeWidth, Color: Ink}
}

// Surface is a fixed-size RGBA pixel buffer with a uniform background.
// It is not safe for concurrent use.
type Surface struct {
	name       string
	pixmap     *gg.Pixmap
	dc         *gg.Context
	background gg.RGBA
	bgPixel    [4]uint8
}

func New(name string, width, height int, background gg.RGBA) *Surface {
	pm := gg.NewPixmap(width, height)
	s := &Surface{
		name:       name,
		pixmap:     pm,
		dc:         gg.NewContext(width, height, gg.WithPixmap(pm)),
		background: background,
	}
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.Clear()
	copy(s.bgPixel[:], pm.Data()[:4])
	return s
}

func (s *Surface) Name() string { return s.name }

func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.pixmap.Width(), s.pixmap.Height())
}

func (s *Surface) Clear() {
	s.dc.ClearWithColor(s.background)
}

// Stroke draws one segment. A zero-length segment stamps a round dot the
// size of the pen.
func (s *Surface) Stroke(seg Segment, style Style) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	s.dc.SetColor(style.Color.Color())
	if seg.From == seg.To {
		s.dc.DrawCircle(seg.From.X, seg.From.Y, style.Width/2)
		return s.dc.Fill()
	}
	s.dc.SetLineWidth(style.Width)
	s.dc.DrawLine(seg.From.X, seg.From.Y, seg.To.X, seg.To.Y)
	return s.dc.Stroke()
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() *image.RGBA {
	return s.pixmap.ToImage()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// IsBlank reports whether every pixel equals the background.
func (s *Surface) IsBlank() bool {
	bg := s.bgPixel
	data := s.pixmap.Data()
	for i := 0; i < len(data); i += 4 {
		if data[i] != bg[0] || data[i+1] != bg[1] || data[i+2] != bg[2] || data[i+3] != bg[3] {
			return false
		}
	}
	return true
}

func (s *Surface) restore(saved []uint8) {
	copy(s.pixmap.Data(), saved)
}

// Diff counts pixels that differ between two surfaces of equal size.
// Surfaces of different size differ everywhere.
func Diff(a, b *Surface) int {
	if a.Bounds() != b.Bounds() {
		return max(a.Bounds().Dx()*a.Bounds().Dy(), b.Bounds().Dx()*b.Bounds().Dy())
	}
	da, db := a.pixmap.Data(), b.pixmap.Data()
	count := 0
	for i := 0; i < len(da); i += 4 {
		if da[i] != db[i] || da[i+1] != db[i+1] || da[i+2] != db[i+2] || da[i+3] != db[i+3] {
			count++
		}
	}
	return count
}
