package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal real headers, enough for http.DetectContentType
var (
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHead  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13}
	webpHead = append([]byte("RIFF\x24\x00\x00\x00WEBP"), []byte("VP8 ")...)
)

func TestValidateImageBySniff(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     []byte
		wantMime string
		wantErr  bool
	}{
		{name: "jpeg", filename: "DSC_0001.JPG", head: jpegHead, wantMime: "image/jpeg"},
		{name: "png", filename: "export.png", head: pngHead, wantMime: "image/png"},
		{name: "webp", filename: "photo.webp", head: webpHead, wantMime: "image/webp"},
		{name: "heic by extension", filename: "IMG_1234.heic", head: []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, wantMime: "image/heic"},
		{name: "gif rejected", filename: "anim.gif", head: []byte("GIF89a"), wantErr: true},
		{name: "extension mismatch html", filename: "photo.jpg", head: []byte("<html><body>"), wantErr: true},
		{name: "svg rejected", filename: "logo.webp", head: []byte(`<?xml version="1.0"?><svg>`), wantErr: true},
		{name: "no extension", filename: "photo", head: jpegHead, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := ValidateImageBySniff(tt.filename, tt.head)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, mime)
		})
	}
}
