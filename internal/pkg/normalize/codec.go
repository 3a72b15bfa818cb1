package normalize

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// CodecNormalizer runs the decode/resize/encode pipeline in process through
// the libwebp bindings. Every stage produces a new frame handle and releases
// the previous one; error paths release whatever was allocated so far.
type CodecNormalizer struct {
	opts Options
}

// NewCodecNormalizer creates the in-process backend.
func NewCodecNormalizer(opts Options) *CodecNormalizer {
	return &CodecNormalizer{opts: opts.withDefaults()}
}

// Normalize decodes the input, downscales it to the width ceiling if needed,
// runs the optional post-process hook, and re-encodes to fixed-quality WebP.
func (n *CodecNormalizer) Normalize(ctx context.Context, data []byte, sourceMime string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageDecode, err)
	}

	frame, err := decodeFrame(data, sourceMime)
	if err != nil {
		return nil, stageErr(StageDecode, err)
	}

	// From here on exactly one frame is live at a time; each stage swaps it
	// for its successor and the swap helper releases the predecessor.
	if frame.Width() > n.opts.MaxWidth {
		resized, err := resizeFrame(frame, n.opts.MaxWidth)
		frame.Release()
		if err != nil {
			return nil, stageErr(StageResize, err)
		}
		frame = resized
	}

	if n.opts.PostProcess != nil {
		processed, err := runPostProcess(frame, n.opts.PostProcess)
		frame.Release()
		if err != nil {
			return nil, stageErr(StagePostProcess, err)
		}
		frame = processed
	}

	width, height := frame.Width(), frame.Height()
	out, err := encodeFrame(frame, n.opts.Quality)
	frame.Release()
	if err != nil {
		return nil, stageErr(StageEncode, err)
	}

	return &Result{Bytes: out, Width: width, Height: height}, nil
}

// decodeFrame decodes the source bytes into a fresh frame. HEIC has no
// in-process decoder in this stack; the transform-service backend covers it.
func decodeFrame(data []byte, sourceMime string) (*Frame, error) {
	switch strings.ToLower(sourceMime) {
	case "image/webp":
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, fmt.Errorf("webp decode failed: %w", err)
		}
		return newFrame(img), nil
	case "image/heic", "image/heif":
		return nil, fmt.Errorf("no in-process decoder for %s, use the transform backend", sourceMime)
	default:
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode failed for %s: %w", sourceMime, err)
		}
		return newFrame(img), nil
	}
}

// resizeFrame downscales to maxWidth preserving aspect ratio. Lanczos keeps
// fine detail at event-photo sizes.
func resizeFrame(frame *Frame, maxWidth int) (*Frame, error) {
	img, err := frame.image()
	if err != nil {
		return nil, err
	}
	return newFrame(imaging.Resize(img, maxWidth, 0, imaging.Lanczos)), nil
}

// runPostProcess hands the hook a private pixel copy and validates the
// returned buffer length before adopting it as the new frame.
func runPostProcess(frame *Frame, hook PostProcessFunc) (out *Frame, err error) {
	pix, err := frame.CopyPix()
	if err != nil {
		return nil, err
	}
	width, height := frame.Width(), frame.Height()

	// A panicking hook must not skip the caller's release chain.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("post-process hook panicked: %v", r)
		}
	}()

	result, err := hook(pix, width, height)
	if err != nil {
		return nil, fmt.Errorf("post-process hook failed: %w", err)
	}
	return frameFromPix(result, width, height)
}

// encodeFrame re-encodes to lossy WebP and returns caller-owned bytes.
func encodeFrame(frame *Frame, quality float32) ([]byte, error) {
	img, err := frame.image()
	if err != nil {
		return nil, err
	}
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("error creating encoder options: %w", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("error encoding WebP image: %w", err)
	}
	return buf.Bytes(), nil
}
