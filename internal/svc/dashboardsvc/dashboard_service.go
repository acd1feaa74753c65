package dashboardsvc

import (
	"context"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/infra/web"
)

// DashboardConfig holds configuration parameters for the dashboard page.
type DashboardConfig struct {
	// Title is shown in the page header
	Title string `env:"TITLE" default:"Home Dashboard"`
}

// Catalog provides the services to show.
type Catalog interface {
	Services(ctx context.Context) domain.Catalog
}

// DashboardService assembles the dashboard page.
type DashboardService struct {
	catalog Catalog
	cfg     DashboardConfig
}

// NewDashboardService creates a new DashboardService reading services from catalog.
func NewDashboardService(catalog Catalog, cfg DashboardConfig) *DashboardService {
	return &DashboardService{
		catalog: catalog,
		cfg:     cfg,
	}
}

// Page returns the data for the dashboard page, in catalog order.
// A catalog that cannot be loaded yields a page without services.
func (s *DashboardService) Page(ctx context.Context) web.DashboardPage {
	catalog := s.catalog.Services(ctx)
	views := make([]web.ServiceView, 0, catalog.Len())

	for _, service := range catalog {
		views = append(views, web.ServiceView{
			Name:        service.Name,
			URL:         service.URL,
			Icon:        service.Icon,
			Description: service.Summary(),
		})
	}

	return web.DashboardPage{Title: s.cfg.Title, Services: views}
}
