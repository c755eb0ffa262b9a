package surface

import (
	"bytes"
	"image/png"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSurfaceIsBlank(t *testing.T) {
	s := New("display", Width, Height, Background)
	assert.True(t, s.IsBlank())
	assert.Equal(t, Width, s.Bounds().Dx())
	assert.Equal(t, Height, s.Bounds().Dy())
}

func TestStrokeMarksPixels(t *testing.T) {
	s := New("display", Width, Height, Background)
	require.NoError(t, s.Stroke(Segment{From: Point{50, 140}, To: Point{230, 140}}, DefaultStyle()))

	img := s.Image()
	center := img.RGBAAt(140, 140)
	assert.Less(t, center.R, uint8(50), "stroke center should be ink")
	corner := img.RGBAAt(5, 5)
	assert.Equal(t, uint8(255), corner.R, "far corner should stay background")
	assert.False(t, s.IsBlank())
}

func TestZeroLengthSegmentStampsDot(t *testing.T) {
	s := New("display", Width, Height, Background)
	p := Point{100, 100}
	require.NoError(t, s.Stroke(Segment{From: p, To: p}, DefaultStyle()))
	assert.Less(t, s.Image().RGBAAt(100, 100).R, uint8(50))
}

func TestStrokeRejectsNonFinite(t *testing.T) {
	s := New("display", Width, Height, Background)
	err := s.Stroke(Segment{From: Point{math.NaN(), 1}, To: Point{2, 2}}, DefaultStyle())
	assert.ErrorIs(t, err, ErrInvalidSegment)
	assert.True(t, s.IsBlank())
}

func TestSetKeepsSurfacesIdentical(t *testing.T) {
	display, classification, set := Pair()
	rng := rand.New(rand.NewPCG(1, 2))
	prev := Point{140, 140}
	for i := 0; i < 200; i++ {
		next := Point{rng.Float64() * Width, rng.Float64() * Height}
		require.NoError(t, set.ApplyStroke(Segment{From: prev, To: next}, DefaultStyle()))
		prev = next
		if i%25 == 0 {
			require.Zero(t, Diff(display, classification), "after stroke %d", i)
		}
	}
	assert.Zero(t, Diff(display, classification))
	assert.False(t, display.IsBlank())
}

func TestSetRejectsInvalidSegmentOnAllSurfaces(t *testing.T) {
	display, classification, set := Pair()
	require.NoError(t, set.ApplyStroke(Segment{From: Point{10, 10}, To: Point{60, 60}}, DefaultStyle()))
	before := display.Image()

	err := set.ApplyStroke(Segment{From: Point{math.Inf(1), 0}, To: Point{5, 5}}, DefaultStyle())
	require.ErrorIs(t, err, ErrInvalidSegment)
	assert.Equal(t, before.Pix, display.Image().Pix)
	assert.Zero(t, Diff(display, classification))
}

func TestSetRollsBackPartialStroke(t *testing.T) {
	display, classification, set := Pair()
	require.NoError(t, set.ApplyStroke(Segment{From: Point{10, 10}, To: Point{60, 60}}, DefaultStyle()))
	before := classification.Image()

	// display took the stroke, classification refused it.
	require.NoError(t, display.Stroke(Segment{From: Point{100, 100}, To: Point{250, 30}}, DefaultStyle()))
	require.Positive(t, Diff(display, classification))

	set[:1].copyFrom(classification)
	assert.Zero(t, Diff(display, classification))
	assert.Equal(t, before.Pix, display.Image().Pix)
	assert.Equal(t, before.Pix, classification.Image().Pix)
}

func TestSetClear(t *testing.T) {
	display, classification, set := Pair()
	require.NoError(t, set.ApplyStroke(Segment{From: Point{10, 10}, To: Point{200, 200}}, DefaultStyle()))
	set.Clear()
	assert.True(t, display.IsBlank())
	assert.True(t, classification.IsBlank())
}

func TestDiffCountsChangedPixels(t *testing.T) {
	a := New("a", 10, 10, Background)
	b := New("b", 10, 10, Background)
	assert.Zero(t, Diff(a, b))
	require.NoError(t, a.Stroke(Segment{From: Point{5, 5}, To: Point{5, 5}}, Style{Width: 2, Color: Ink}))
	assert.Positive(t, Diff(a, b))
	assert.Equal(t, 400, Diff(New("big", 20, 20, Background), a))
}

func TestEncodePNG(t *testing.T) {
	s := New("display", Width, Height, Background)
	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Bounds(), img.Bounds())
}

func TestNormalizeAndTensor(t *testing.T) {
	s := New("classification", Width, Height, Background)
	gray := Normalize(s.Image(), InputSize)
	assert.Equal(t, InputSize, gray.Bounds().Dx())
	tensor := Tensor(gray)
	require.Len(t, tensor, InputSize*InputSize)
	for _, v := range tensor {
		require.InDelta(t, 0, v, 0.001)
	}

	require.NoError(t, s.Stroke(Segment{From: Point{0, 140}, To: Point{280, 140}}, DefaultStyle()))
	tensor = Tensor(Normalize(s.Image(), InputSize))
	row := 14 * InputSize
	assert.Greater(t, tensor[row+14], float32(0.5), "horizontal stroke should survive downscale")
	assert.InDelta(t, 0, tensor[0], 0.001)
}
