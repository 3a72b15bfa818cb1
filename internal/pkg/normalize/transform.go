package normalize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// TransformServiceNormalizer delegates decode/resize/encode to an external
// image-transform service. The service accepts the raw byte stream plus a
// transform parameters and returns the normalized image as its response body; it
// does not report dimensions, so they are recovered by inspecting the
// encoded output.
type TransformServiceNormalizer struct {
	baseURL string
	client  *http.Client
	opts    Options
}

// NewTransformServiceNormalizer creates the external backend. The
// post-process hook is a codec-path feature and cannot run service-side.
func NewTransformServiceNormalizer(baseURL string, opts Options) (*TransformServiceNormalizer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("transform service URL is required")
	}
	if opts.PostProcess != nil {
		return nil, fmt.Errorf("post-process hooks are not supported by the transform backend")
	}
	return &TransformServiceNormalizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		opts:    opts.withDefaults(),
	}, nil
}

// Normalize streams the input to the transform service and reads back the
// normalized WebP.
func (n *TransformServiceNormalizer) Normalize(ctx context.Context, data []byte, sourceMime string) (*Result, error) {
	params := url.Values{
		"width":   []string{strconv.Itoa(n.opts.MaxWidth)},
		"fit":     []string{"inside"},
		"format":  []string{"webp"},
		"quality": []string{strconv.Itoa(int(n.opts.Quality))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.baseURL+"?"+params.Encode(), bytes.NewReader(data))
	if err != nil {
		return nil, stageErr(StageEncode, fmt.Errorf("failed to build transform request: %w", err))
	}
	req.Header.Set("Content-Type", sourceMime)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, stageErr(StageEncode, fmt.Errorf("transform service unreachable: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		stage := StageEncode
		if resp.StatusCode == http.StatusUnsupportedMediaType || resp.StatusCode == http.StatusUnprocessableEntity {
			stage = StageDecode
		}
		return nil, stageErr(stage, fmt.Errorf("transform service returned %d: %s", resp.StatusCode, body))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stageErr(StageEncode, fmt.Errorf("failed to read transform response: %w", err))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		return nil, stageErr(StageEncode, fmt.Errorf("transform response is not a decodable image: %w", err))
	}

	return &Result{Bytes: out, Width: cfg.Width, Height: cfg.Height}, nil
}
