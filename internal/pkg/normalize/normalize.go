// Package normalize turns heterogeneous camera uploads (JPEG, PNG, WebP,
// HEIC) into one predictable output format so every downstream consumer has
// a single decode path. Two interchangeable backends share the result shape:
// an in-process codec and an external transform service.
package normalize

import (
	"context"
	"fmt"
)

// Images wider than the ceiling are downscaled preserving aspect ratio;
// anything narrower is re-encoded as-is.
const (
	DefaultMaxWidth = 4000
	WebPQuality     = 85
)

// Stage identifies where in the pipeline a normalization failure occurred.
type Stage string

const (
	StageDecode      Stage = "decode"
	StageResize      Stage = "resize"
	StageEncode      Stage = "encode"
	StagePostProcess Stage = "post_process"
)

// Error is a stage-tagged normalization failure.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *Error {
	return &Error{Stage: stage, Err: err}
}

// Result carries the normalized bytes and their pixel dimensions. The byte
// slice is owned by the caller; no codec memory backs it.
type Result struct {
	Bytes  []byte
	Width  int
	Height int
}

// PostProcessFunc receives a private copy of the frame's raw RGBA pixels and
// must return a buffer of exactly width*height*4 bytes. Any other length is
// a hard validation failure.
type PostProcessFunc func(pix []byte, width, height int) ([]byte, error)

// Options configure a normalizer.
type Options struct {
	MaxWidth    int
	Quality     float32
	PostProcess PostProcessFunc
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 {
		o.Quality = WebPQuality
	}
	return o
}

// Normalizer is the single capability both backends implement.
type Normalizer interface {
	Normalize(ctx context.Context, data []byte, sourceMime string) (*Result, error)
}

// Backend names accepted by Config.
const (
	BackendCodec     = "codec"
	BackendTransform = "transform"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend      string
	TransformURL string
	Options      Options
}

// New builds the configured backend.
func New(cfg Config) (Normalizer, error) {
	switch cfg.Backend {
	case "", BackendCodec:
		return NewCodecNormalizer(cfg.Options), nil
	case BackendTransform:
		return NewTransformServiceNormalizer(cfg.TransformURL, cfg.Options)
	default:
		return nil, fmt.Errorf("unknown normalize backend %q", cfg.Backend)
	}
}
