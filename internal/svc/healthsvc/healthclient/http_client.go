package healthclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	context_ "github.com/mkrupp/homecase-dashboard/internal/infra/context"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	"github.com/mkrupp/homecase-dashboard/internal/svc/healthsvc"
)

const TraceIDHeader = "X-Request-ID"

// maxBodySize bounds how much of a health response is read.
const maxBodySize = 4096

// ErrUnhealthy is returned when the instance answers but does not report itself healthy.
var ErrUnhealthy = errors.New("unhealthy")

// HTTPClientConfig holds configuration for the HTTP health client.
type HTTPClientConfig struct {
	// HealthURL is the health endpoint to probe
	HealthURL string `env:"HEALTH_URL" default:"http://localhost:8000/health"`
}

// HTTPClient implements HealthClient using HTTP requests to the health endpoint.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ HealthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.healthsvc.http_client"),
		cfg:        cfg,
	}
}

// Check implements HealthClient.Check by requesting the configured health endpoint.
func (hc *HTTPClient) Check(ctx context.Context) (err error) {
	log := hc.log.With(logging.Group("health", "url", hc.cfg.HealthURL))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "health check failed", "error", err)
		} else {
			log.DebugContext(ctx, "health check passed")
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.cfg.HealthURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := hc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	var status healthsvc.Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&status); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if status.Status != healthsvc.StatusHealthy {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, status.Status)
	}

	return nil
}
