package iconsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	"github.com/mkrupp/homecase-dashboard/internal/repo/rendition"
)

// SrcWidth is the width icons are requested at by the dashboard.
const SrcWidth = 32

// FileSystemIconService implements IconService by reading icons from a directory.
// Resized icons are kept in a rendition repository.
type FileSystemIconService struct {
	cacheRepo rendition.Repository
	resizes   *singleflight.Group
	cfg       IconConfig
	log       logging.Logger
}

var _ IconService = (*FileSystemIconService)(nil)

// NewFileSystemIconService creates a new FileSystemIconService with the given configuration.
// Returns an error if the rendition repository cannot be initialized.
func NewFileSystemIconService(ctx context.Context, cfg IconConfig) (*FileSystemIconService, error) {
	cacheRepo, err := rendition.NewRepository(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("new rendition repository: %w", err)
	}

	return &FileSystemIconService{
		cacheRepo: cacheRepo,
		resizes:   new(singleflight.Group),
		cfg:       cfg,
		log:       logging.GetLogger("svc.iconsvc.filesystem_icon_service"),
	}, nil
}

// Src returns the URL the dashboard loads an icon from,
// or an empty string if the icon is not an image file.
func Src(name string) string {
	if !IsIconFile(name) || !validName(name) {
		return ""
	}

	//nolint:exhaustruct
	src := url.URL{Path: "/icons/" + name, RawQuery: fmt.Sprintf("width=%d", SrcWidth)}

	return src.String()
}

func validName(name string) bool {
	return name != "" && filepath.IsLocal(name) && !strings.ContainsRune(name, '\\')
}

// Fetch implements IconService.Fetch.
func (iconSvc *FileSystemIconService) Fetch(
	ctx context.Context,
	name string,
	width int,
) (icon domain.Icon, err error) {
	log := iconSvc.log.With(logging.Group("icon", "name", name, "width", width))

	defer func() {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.DebugContext(ctx, "icon not found", "error", err)
		case err != nil:
			log.ErrorContext(ctx, "icon fetch failed", "error", err)
		default:
			log.DebugContext(ctx, "icon fetched", "size", icon.Size())
		}
	}()

	if width < 0 {
		return domain.Icon{}, fmt.Errorf("%w: %d", domain.ErrInvalidIconWidth, width)
	}

	icon, err = iconSvc.readIcon(name)
	if err != nil {
		return domain.Icon{}, err
	}

	if width == 0 {
		return icon, nil
	}

	width = min(width, iconSvc.cfg.MaxWidth)

	size, err := imageSize(icon.Body, icon.MIMEType)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("read size: %w", err)
	}

	if size.Width <= 0 || width >= size.Width {
		return icon, nil
	}

	if pixels := int64(size.Width) * int64(size.Height); pixels > MaxPixels {
		return domain.Icon{}, fmt.Errorf("%w: %s is %dx%d pixels", domain.ErrIconTooLarge, name, size.Width, size.Height)
	}

	resized, err := iconSvc.rendition(ctx, icon, width)
	if err != nil {
		return domain.Icon{}, err
	}

	return icon.WithBody(resized), nil
}

// readIcon loads an icon file from the icons directory.
// Names that would escape the directory are reported as not found.
func (iconSvc *FileSystemIconService) readIcon(name string) (domain.Icon, error) {
	if !validName(name) {
		return domain.Icon{}, fmt.Errorf("%w: %q: %w", domain.ErrInvalidIconName, name, fs.ErrNotExist)
	}

	if !IsIconFile(name) {
		return domain.Icon{}, fmt.Errorf("%w: %q: %w", domain.ErrIconTypeNotSupported, name, fs.ErrNotExist)
	}

	file, err := os.OpenInRoot(iconSvc.cfg.Dir, name)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return domain.Icon{}, fmt.Errorf("stat: %w", err)
	}

	if !info.Mode().IsRegular() {
		return domain.Icon{}, fmt.Errorf("%s is not a regular file: %w", name, fs.ErrNotExist)
	}

	if maxSize := iconSvc.cfg.MaxSize.Bytes(); maxSize > 0 && info.Size() > maxSize {
		return domain.Icon{}, fmt.Errorf("%w: %s is larger than %s", domain.ErrIconTooLarge, name, iconSvc.cfg.MaxSize)
	}

	body, err := io.ReadAll(file)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("read: %w", err)
	}

	mimeType, err := sniffType(name, body)
	if err != nil {
		return domain.Icon{}, err
	}

	return domain.Icon{
		Name:     name,
		MIMEType: mimeType,
		ModTime:  info.ModTime(),
		Body:     body,
	}, nil
}

// rendition returns the icon scaled to width, from the cache if possible.
// Concurrent requests for the same rendition share one resize.
func (iconSvc *FileSystemIconService) rendition(ctx context.Context, icon domain.Icon, width int) ([]byte, error) {
	id := rendition.NewID(domain.RenditionKey{
		Name:    icon.Name,
		ModTime: icon.ModTime,
		Size:    icon.Size(),
		Width:   width,
	})

	if cached, ok := iconSvc.cached(ctx, id, false); ok {
		return cached, nil
	}

	resized, err, _ := iconSvc.resizes.Do(id.String(), func() (any, error) {
		unlock, err := iconSvc.cacheRepo.Lock(ctx, id, true)
		if err != nil {
			return nil, fmt.Errorf("lock cache: %w", err)
		}
		defer unlock()

		if cached, ok := iconSvc.cached(ctx, id, true); ok {
			return cached, nil
		}

		resized, err := iconSvc.resizeImage(ctx, icon, width)
		if err != nil {
			return nil, fmt.Errorf("resize image: %w", err)
		}

		if err := iconSvc.cacheRepo.Store(ctx, id, resized); err != nil {
			// Still usable, only not cached.
			iconSvc.log.WarnContext(ctx, "rendition not cached", "error", err)
		}

		return resized, nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return resized.([]byte), nil //nolint:forcetypeassert
}

// cached looks up a rendition. locked tells whether the caller already holds the lock.
func (iconSvc *FileSystemIconService) cached(ctx context.Context, id domain.RenditionID, locked bool) ([]byte, bool) {
	if !locked {
		unlock, err := iconSvc.cacheRepo.Lock(ctx, id, false)
		if err != nil {
			return nil, false
		}
		defer unlock()
	}

	body, err := iconSvc.cacheRepo.Fetch(ctx, id)
	if err != nil {
		return nil, false
	}

	return body, true
}

func (iconSvc *FileSystemIconService) resizeImage(
	ctx context.Context,
	icon domain.Icon,
	width int,
) (resized []byte, err error) {
	log := iconSvc.log.With(logging.Group("icon",
		"name", icon.Name,
		"type", icon.MIMEType,
		logging.Group("target", "width", width),
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "icon resize failed", "error", err)
		} else {
			log.DebugContext(ctx, "icon resized", "size", len(resized))
		}
	}()

	return resizeImage(icon.Body, icon.MIMEType, width, iconSvc.cfg.Interpolator)
}
