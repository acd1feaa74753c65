package catalogsvc

import "errors"

// ErrEmptyCatalogPath is returned when no catalog path is configured.
var ErrEmptyCatalogPath = errors.New("empty catalog path")

// CatalogConfig holds configuration parameters for the catalog service.
type CatalogConfig struct {
	// Path is the location of the services document.
	// Files ending in .json or .jsonc are read as JSON with comments, everything else as YAML.
	Path string `env:"CONFIG_PATH" default:"services.yaml"`
}

// Validate implements config.Validator.
func (cfg CatalogConfig) Validate() error {
	if cfg.Path == "" {
		return ErrEmptyCatalogPath
	}

	return nil
}
