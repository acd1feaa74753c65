package catalogsvc

import (
	"context"
	"errors"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
)

// CatalogService provides the list of services shown on the dashboard.
// The document is read on every call, so edits take effect without a restart.
type CatalogService struct {
	Config CatalogConfig
	Log    logging.Logger
}

// NewCatalogService creates a new CatalogService with the given configuration.
func NewCatalogService(cfg CatalogConfig) *CatalogService {
	return &CatalogService{
		Config: cfg,
		Log:    logging.GetLogger("svc.catalogsvc.catalog_service"),
	}
}

// Load reads the configured services document.
func (s *CatalogService) Load(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return failed(FailureUnreadable, err)
	}

	return Load(s.Config.Path)
}

// Services returns the configured services, or an empty catalog if they cannot be loaded.
// Failures are logged and never returned.
func (s *CatalogService) Services(ctx context.Context) domain.Catalog {
	res := s.Load(ctx)
	log := s.Log.With(logging.Group("catalog", "path", s.Config.Path, "failure", res.Failure.String()))

	switch res.Failure {
	case FailureNone:
		log.DebugContext(ctx, "catalog loaded", "services", res.Catalog.Len())

		return res.Catalog
	case FailureUnreadable:
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			log.DebugContext(ctx, "request ended before the catalog was loaded", "error", res.Err)

			break
		}

		log.ErrorContext(ctx, "catalog could not be loaded, showing no services", "error", res.Err)
	case FailureMissing:
		log.WarnContext(ctx, "catalog not found, showing no services", "error", res.Err)
	case FailureMalformed, FailureInvalidEntry:
		log.ErrorContext(ctx, "catalog could not be loaded, showing no services", "error", res.Err)
	}

	return domain.Catalog{}
}
