package iconsvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

// MaxPixels is the largest image, in pixels, that is decoded for resizing.
const MaxPixels = 4096 * 4096

//nolint:gochecknoglobals
var interpolMap = map[string]draw.Interpolator{
	"nearestneighbor": draw.NearestNeighbor,
	"catmullrom":      draw.CatmullRom,
	"bilinear":        draw.BiLinear,
	"approxbilinear":  draw.ApproxBiLinear,
}

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownInterpolator
	}

	return interpol, nil
}

// imageSize reads the dimensions from the image header without decoding the pixels.
func imageSize(data []byte, mimeType string) (image.Config, error) {
	c, err := getCodecByType(mimeType)
	if err != nil {
		return image.Config{}, err
	}

	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// resizeImage scales an image to the given width, keeping its aspect ratio
// and its format. The height is at least one pixel.
func resizeImage(data []byte, mimeType string, width int, interpolator string) ([]byte, error) {
	c, err := getCodecByType(mimeType)
	if err != nil {
		return nil, err
	}

	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, fmt.Errorf("get interpolator: %w", err)
	}

	original, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := original.Bounds()
	height := max(1, bounds.Dy()*width/bounds.Dx())

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	interpol.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := c.encode(&buf, bitmap); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}
