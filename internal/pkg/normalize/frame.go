package normalize

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

// ErrFrameReleased is returned when a frame is used after Release.
var ErrFrameReleased = errors.New("frame already released")

// liveFrames counts allocated-but-unreleased frames. Tests assert it returns
// to zero; a nonzero steady state means a leak on some exit path.
var liveFrames int64

// LiveFrames returns the number of frames currently holding pixel memory.
func LiveFrames() int64 {
	return atomic.LoadInt64(&liveFrames)
}

// Frame is an owned handle over one decoded image's pixel memory. Each
// pipeline stage produces a new frame; the prior one must be released
// exactly once, on every exit path. RawView returns memory that belongs to
// the frame and is invalid the moment Release runs, so callers copy before
// releasing.
type Frame struct {
	img      *image.NRGBA
	released bool
}

func newFrame(img image.Image) *Frame {
	atomic.AddInt64(&liveFrames, 1)
	// Clone always yields a packed NRGBA buffer, so Pix length is exactly
	// width*height*4 with no row padding.
	return &Frame{img: imaging.Clone(img)}
}

// frameFromPix builds a frame that takes ownership of a raw RGBA buffer.
// The buffer length must be exactly width*height*4.
func frameFromPix(pix []byte, width, height int) (*Frame, error) {
	want := width * height * 4
	if len(pix) != want {
		return nil, fmt.Errorf("pixel buffer length %d does not match %dx%dx4 = %d", len(pix), width, height, want)
	}
	atomic.AddInt64(&liveFrames, 1)
	return &Frame{img: &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}}, nil
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	if f.released {
		return 0
	}
	return f.img.Rect.Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	if f.released {
		return 0
	}
	return f.img.Rect.Dy()
}

// RawView exposes the frame's raw RGBA pixels. The slice aliases the frame's
// internal memory: it must not be read after Release.
func (f *Frame) RawView() ([]byte, error) {
	if f.released {
		return nil, ErrFrameReleased
	}
	return f.img.Pix, nil
}

// CopyPix returns an owned copy of the raw pixels, safe to keep after the
// frame is released.
func (f *Frame) CopyPix() ([]byte, error) {
	if f.released {
		return nil, ErrFrameReleased
	}
	out := make([]byte, len(f.img.Pix))
	copy(out, f.img.Pix)
	return out, nil
}

// image hands the backing image to a pipeline stage. Internal use only; the
// returned image aliases frame memory.
func (f *Frame) image() (*image.NRGBA, error) {
	if f.released {
		return nil, ErrFrameReleased
	}
	return f.img, nil
}

// Release frees the frame's pixel memory. Releasing twice is a no-op; uses
// after Release fail with ErrFrameReleased.
func (f *Frame) Release() {
	if f == nil || f.released {
		return
	}
	f.released = true
	f.img = nil
	atomic.AddInt64(&liveFrames, -1)
}
