package capture

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrInvalidFrame is returned when the frame or viewport has a zero
	// dimension, typically because the camera is not ready yet.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrInvalidGuide is returned when the guide does not overlap the viewport
	ErrInvalidGuide = errors.New("guide rectangle outside viewport")
)

// Size is a width/height pair in pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle. Guide rectangles are in display
// coordinates relative to the viewport's top-left corner, crop rectangles
// are in source-frame pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bounds rounds the rectangle to whole pixels
func (r Rect) Bounds() image.Rectangle {
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	x1 := int(math.Ceil(r.X + r.Width))
	y1 := int(math.Ceil(r.Y + r.Height))
	return image.Rect(x0, y0, x1, y1)
}

// Viewport is the display container the frame is rendered into
type Viewport struct {
	Size Size `json:"size"`
	// Position of the container on screen. The guide is already relative to
	// the container, so this is informational only.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// Displayed returns the size the frame is drawn at under cover scaling
func (v Viewport) Displayed(frame Size) Size {
	scale := coverScale(frame, v.Size)
	return Size{Width: frame.Width * scale, Height: frame.Height * scale}
}

// MapToSource maps a guide rectangle drawn over a cover-scaled viewport back
// to the pixel window of the source frame it frames.
func MapToSource(frame, viewport Size, guide Rect) (Rect, error) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return Rect{}, fmt.Errorf("%w: frame is %vx%v", ErrInvalidFrame, frame.Width, frame.Height)
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return Rect{}, fmt.Errorf("%w: viewport is %vx%v", ErrInvalidFrame, viewport.Width, viewport.Height)
	}

	guide = intersect(guide, Rect{Width: viewport.Width, Height: viewport.Height})
	if guide.empty() {
		return Rect{}, ErrInvalidGuide
	}

	scale := coverScale(frame, viewport)
	offsetX := (frame.Width*scale - viewport.Width) / 2
	offsetY := (frame.Height*scale - viewport.Height) / 2

	src := Rect{
		X:      (guide.X + offsetX) / scale,
		Y:      (guide.Y + offsetY) / scale,
		Width:  guide.Width / scale,
		Height: guide.Height / scale,
	}

	return intersect(src, Rect{Width: frame.Width, Height: frame.Height}), nil
}

func coverScale(frame, viewport Size) float64 {
	return math.Max(viewport.Width/frame.Width, viewport.Height/frame.Height)
}

func intersect(r, bounds Rect) Rect {
	x0 := math.Max(r.X, bounds.X)
	y0 := math.Max(r.Y, bounds.Y)
	x1 := math.Min(r.X+r.Width, bounds.X+bounds.Width)
	y1 := math.Min(r.Y+r.Height, bounds.Y+bounds.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
