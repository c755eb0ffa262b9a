package web

import "strconv"

func itoa(value int) string {
	return strconv.Itoa(value)
}

// PlayPage sizes the canvas and brush of the play view.
type PlayPage struct {
	Title       string
	Width       int
	Height      int
	StrokeWidth int
}
