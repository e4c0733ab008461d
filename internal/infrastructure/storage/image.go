// Package storage persists uploaded profile pictures, either on local disk or
// in an S3-compatible bucket.
package storage

import (
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

// PublicPrefix is the path prefix under which stored images are addressed.
const PublicPrefix = "uploads"

var imageName = regexp.MustCompile(`\.(jpg|JPG|jpeg|JPEG|png|PNG|gif|GIF)$`)

// ValidateImageName rejects filenames whose suffix is not a common raster
// image extension.
func ValidateImageName(filename string) error {
	if !imageName.MatchString(filename) {
		return domain.NewValidationError("only image files are allowed")
	}
	return nil
}

// objectName derives the stored name: upload time in unix milliseconds, a
// dash, then the original base name.
func objectName(filename string, now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + filepath.Base(filename)
}

func publicPath(name string) string {
	return path.Join(PublicPrefix, name)
}
