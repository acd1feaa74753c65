package iconsvc

import (
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-dashboard/internal/infra/config"
	"github.com/mkrupp/homecase-dashboard/internal/repo/rendition"
)

var ErrInvalidMaxWidth = errors.New("icon max width must be positive")

// IconConfig holds configuration parameters for the icon service.
type IconConfig struct {
	// Dir is the directory icon files are served from.
	Dir string `env:"DIR" default:"icons"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// MaxWidth caps the width a client may ask for.
	MaxWidth int `env:"MAX_WIDTH" default:"512"`

	// MaxSize is the largest icon file that will be read.
	MaxSize config.ByteSize `env:"MAX_SIZE" default:"5MiB"`

	// Cache stores resized icons. Caching is off unless a directory is set.
	Cache rendition.FileSystemRepositoryConfig
}

// Validate implements config.Validator.
func (cfg IconConfig) Validate() error {
	if _, err := getInterpolatorByName(cfg.Interpolator); err != nil {
		return fmt.Errorf("%w: %q", err, cfg.Interpolator)
	}

	if cfg.MaxWidth <= 0 {
		return ErrInvalidMaxWidth
	}

	return nil
}
