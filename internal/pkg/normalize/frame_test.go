package normalize

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func TestFrameReleaseExactlyOnce(t *testing.T) {
	before := LiveFrames()

	f := newFrame(testImage(8, 4))
	assert.Equal(t, before+1, LiveFrames())

	f.Release()
	assert.Equal(t, before, LiveFrames())

	// second release must not double-decrement
	f.Release()
	assert.Equal(t, before, LiveFrames())
}

func TestFrameUseAfterRelease(t *testing.T) {
	f := newFrame(testImage(8, 4))
	f.Release()

	_, err := f.RawView()
	assert.ErrorIs(t, err, ErrFrameReleased)

	_, err = f.CopyPix()
	assert.ErrorIs(t, err, ErrFrameReleased)

	assert.Equal(t, 0, f.Width())
	assert.Equal(t, 0, f.Height())
}

func TestCopyPixSurvivesRelease(t *testing.T) {
	f := newFrame(testImage(4, 2))

	view, err := f.RawView()
	require.NoError(t, err)
	owned, err := f.CopyPix()
	require.NoError(t, err)
	assert.Equal(t, view, owned)
	assert.Len(t, owned, 4*2*4)

	f.Release()

	// the owned copy is still intact after the handle is gone
	assert.Len(t, owned, 4*2*4)
	assert.Equal(t, uint8(128), owned[2])
}

func TestFrameFromPixValidatesLength(t *testing.T) {
	tests := []struct {
		name   string
		pix    []byte
		width  int
		height int
		ok     bool
	}{
		{name: "exact length", pix: make([]byte, 4*2*4), width: 4, height: 2, ok: true},
		{name: "short buffer", pix: make([]byte, 4*2*4-1), width: 4, height: 2, ok: false},
		{name: "long buffer", pix: make([]byte, 4*2*4+1), width: 4, height: 2, ok: false},
		{name: "empty buffer", pix: nil, width: 4, height: 2, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := LiveFrames()
			f, err := frameFromPix(tc.pix, tc.width, tc.height)
			if !tc.ok {
				assert.Error(t, err)
				assert.Equal(t, before, LiveFrames(), "failed construction must not leak a handle")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.width, f.Width())
			assert.Equal(t, tc.height, f.Height())
			f.Release()
			assert.Equal(t, before, LiveFrames())
		})
	}
}
