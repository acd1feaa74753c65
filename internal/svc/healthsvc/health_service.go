package healthsvc

import "context"

// StatusHealthy is reported while the process is serving requests.
const StatusHealthy = "healthy"

// Status is the body of a health response.
type Status struct {
	Status string `json:"status"`
}

// HealthService reports process liveness.
// It has no dependencies: a dashboard with a broken catalog is still alive.
type HealthService struct{}

// NewHealthService creates a new HealthService.
func NewHealthService() *HealthService {
	return &HealthService{}
}

// Check returns the current status.
func (s *HealthService) Check(context.Context) Status {
	return Status{Status: StatusHealthy}
}
