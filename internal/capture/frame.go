package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"sync"
	"time"
)

// ErrNoFrame is returned by LatestFrame before any frame has been supplied
var ErrNoFrame = errors.New("no frame captured yet")

// JPEGQuality is used when encoding cropped regions for recognition
const JPEGQuality = 90

// Frame is one captured camera image
type Frame struct {
	Image      image.Image
	CapturedAt time.Time
}

// Size returns the source pixel dimensions, zero when the frame is empty
func (f Frame) Size() Size {
	if f.Image == nil {
		return Size{}
	}
	b := f.Image.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Snapshot is everything the mapper needs for one capture
type Snapshot struct {
	Frame    Frame
	Guide    Rect
	Viewport Viewport
}

// DecodeFrame decodes a JPEG, PNG or GIF still into a Frame
func DecodeFrame(r io.Reader, capturedAt time.Time) (Frame, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	return Frame{Image: img, CapturedAt: capturedAt}, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the pixels of img inside the source-pixel rectangle
func Crop(img image.Image, rect Rect) (image.Image, error) {
	b := img.Bounds()
	window := rect.Bounds().Add(b.Min).Intersect(b)
	if window.Empty() {
		return nil, fmt.Errorf("%w: crop window %v outside %v", ErrInvalidFrame, window, b)
	}

	if si, ok := img.(subImager); ok {
		return si.SubImage(window), nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, window.Dx(), window.Dy()))
	draw.Draw(dst, dst.Bounds(), img, window.Min, draw.Src)
	return dst, nil
}

// EncodeJPEG encodes img for transmission to the recognition service
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}

// LatestFrame holds the most recent snapshot supplied by the camera side
type LatestFrame struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewLatestFrame returns an empty holder
func NewLatestFrame() *LatestFrame {
	return &LatestFrame{}
}

// Set replaces the held snapshot
func (l *LatestFrame) Set(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = &snap
}

// Capture returns the held snapshot
func (l *LatestFrame) Capture(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.snap == nil {
		return Snapshot{}, ErrNoFrame
	}
	return *l.snap, nil
}
