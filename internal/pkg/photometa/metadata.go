// Package photometa pulls capture metadata out of original upload bytes.
package photometa

import (
	"bytes"
	"fmt"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/sabaipics/sabaipics/app/models"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// Extract copies camera model and capture time from the original bytes onto
// the photo. Many phone exports strip EXIF entirely, so absence is normal
// and never an error.
func Extract(photo *models.Photo, original []byte) {
	x, err := exif.Decode(bytes.NewReader(original))
	if err != nil {
		fiberlog.Info(fmt.Sprintf("No EXIF data found for photo %s: %v", photo.UUID, err))
		return
	}

	if m, err := x.Get(exif.Model); err == nil {
		s := strings.TrimSpace(strings.Trim(m.String(), `"`))
		if s != "" {
			photo.CameraModel = &s
		}
	}

	if dt, err := x.DateTime(); err == nil {
		photo.TakenAt = &dt
	}
}
