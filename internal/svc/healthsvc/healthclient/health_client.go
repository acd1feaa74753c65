package healthclient

import "context"

// HealthClient checks whether a dashboard instance is alive.
type HealthClient interface {
	// Check returns nil if the instance reports itself healthy.
	Check(ctx context.Context) error
}
