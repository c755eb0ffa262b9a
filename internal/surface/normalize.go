package surface

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// InputSize is the edge length of the classifier's normalized input.
const InputSize = 28

// Normalize scales img to a size×size grayscale image. Every classifier
// backend goes through here so the 280→28 reduction is done one way only.
func Normalize(img image.Image, size int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, size, size))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Tensor flattens a grayscale image row-major into ink intensities:
// 0 for background white, 1 for full black.
func Tensor(gray *image.Gray) []float32 {
	b := gray.Bounds()
	out := make([]float32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			out = append(out, 1-float32(row[x])/255)
		}
	}
	return out
}
