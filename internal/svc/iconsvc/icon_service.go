package iconsvc

import (
	"context"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
)

// IconService serves icon image files.
type IconService interface {
	// Fetch retrieves and optionally resizes the icon file with the given name.
	// The width parameter controls the target width of the icon, maintaining aspect ratio;
	// zero returns the original. Icons are never scaled up.
	// Returns an error wrapping fs.ErrNotExist if there is no such icon.
	Fetch(ctx context.Context, name string, width int) (domain.Icon, error)
}
