package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidService is returned when a service entry does not have the required shape.
var ErrInvalidService = errors.New("invalid service")

// Service is a single entry on the dashboard.
type Service struct {
	Name        string  // Display name, never empty
	URL         string  // Link target
	Icon        string  // Icon identifier or icon file name
	Description *string // Optional free text
}

// Summary returns the description or an empty string if there is none.
func (s Service) Summary() string {
	if s.Description == nil {
		return ""
	}

	return *s.Description
}

// Validate reports whether the entry can be shown on the dashboard.
func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidService)
	}

	return nil
}

// Catalog is the ordered list of services, in the order they were declared.
type Catalog []Service

// Len returns the number of services in the catalog.
func (c Catalog) Len() int {
	return len(c)
}
