package iconsvc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
)

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
	encode       func(io.Writer, image.Image) error
}

//nolint:gochecknoglobals
var (
	iconExtTypes = map[string]string{
		".jpg":  MIMETypeJPEG,
		".jpeg": MIMETypeJPEG,
		".png":  MIMETypePNG,
		".tiff": MIMETypeTIFF,
		".tif":  MIMETypeTIFF,
	}

	iconTypeHeaders = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
		MIMETypeTIFF: {"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"},
	}

	iconCodecs = map[string]codec{
		MIMETypeJPEG: {
			decode:       jpeg.Decode,
			decodeConfig: jpeg.DecodeConfig,
			encode:       func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, nil) },
		},
		MIMETypePNG: {
			decode:       png.Decode,
			decodeConfig: png.DecodeConfig,
			encode:       png.Encode,
		},
		MIMETypeTIFF: {
			decode:       tiff.Decode,
			decodeConfig: tiff.DecodeConfig,
			encode:       func(w io.Writer, i image.Image) error { return tiff.Encode(w, i, nil) },
		},
	}
)

// IsIconFile reports whether name refers to an image file rather than a symbolic icon identifier.
func IsIconFile(name string) bool {
	_, ok := iconExtTypes[strings.ToLower(filepath.Ext(name))]

	return ok
}

// sniffType returns the content type for an icon file,
// checking that the content matches the file extension.
func sniffType(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	mimeType, ok := iconExtTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrIconTypeNotSupported, ext)
	}

	for _, header := range iconTypeHeaders[mimeType] {
		if bytes.HasPrefix(data, []byte(header)) {
			return mimeType, nil
		}
	}

	return "", fmt.Errorf("%w: %q", domain.ErrIconTypeMismatch, ext)
}

func getCodecByType(mimeType string) (codec, error) {
	c, ok := iconCodecs[mimeType]
	if !ok {
		return codec{}, fmt.Errorf("%w: %q", domain.ErrIconTypeNotSupported, mimeType)
	}

	return c, nil
}
