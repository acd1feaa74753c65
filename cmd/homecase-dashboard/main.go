package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mkrupp/homecase-dashboard/internal/infra/config"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-dashboard/internal/infra/transport/http"
	"github.com/mkrupp/homecase-dashboard/internal/infra/web"
	"github.com/mkrupp/homecase-dashboard/internal/svc/authsvc"
	"github.com/mkrupp/homecase-dashboard/internal/svc/catalogsvc"
	"github.com/mkrupp/homecase-dashboard/internal/svc/dashboardsvc"
	"github.com/mkrupp/homecase-dashboard/internal/svc/healthsvc"
	"github.com/mkrupp/homecase-dashboard/internal/svc/healthsvc/healthclient"
	"github.com/mkrupp/homecase-dashboard/internal/svc/iconsvc"
)

const (
	appName = "homecase"
	svcName = "dashboard"
)

// healthcheckConfigured is the --healthcheck value meaning "use HEALTH_URL".
const healthcheckConfigured = "configured"

const healthcheckTimeout = 5 * time.Second

var errCheckFailed = errors.New("check failed")

type Config struct {
	config.EnvConfig

	Log       logging.LoggerConfig `envPrefix:"LOG_"`
	Auth      authsvc.AuthConfig
	AuthHTTP  authsvc.HTTPTransportConfig
	Catalog   catalogsvc.CatalogConfig
	Dashboard dashboardsvc.DashboardConfig
	Icons     iconsvc.IconConfig          `envPrefix:"ICONS_"`
	IconsHTTP iconsvc.HTTPTransportConfig `envPrefix:"ICONS_"`
	HTTP      http_.HTTPTransportConfig   `envPrefix:"HTTP_"`
	Health    healthclient.HTTPClientConfig
}

type options struct {
	envFile     string
	check       bool
	healthcheck string
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the selected mode and returns the process exit code.
func execute(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return 2 //nolint:mnd
	}

	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		return 2 //nolint:mnd
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "error: config: %v\n", err)

		return 2 //nolint:mnd
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	switch {
	case opts.check:
		err = checkCatalog(ctx, cfg.Catalog, os.Stdout)
	case opts.healthcheck != "":
		err = healthcheck(ctx, cfg.Health, opts.healthcheck)
	default:
		err = run(ctx, cfg)
	}

	if err != nil {
		return 1
	}

	return 0
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet(appName+"-"+svcName, pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.StringVar(&opts.envFile, "env-file", ".env", "load environment variables from this file if it exists")
	flagSet.BoolVar(&opts.check, "check", false, "validate the services file and exit")
	flagSet.StringVar(&opts.healthcheck, "healthcheck", "", "probe a running instance's health endpoint and exit")
	flagSet.Lookup("healthcheck").NoOptDefVal = healthcheckConfigured

	if err := flagSet.Parse(args); err != nil {
		return options{}, err //nolint:wrapcheck
	}

	if flagSet.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", flagSet.Args()) //nolint:err113
	}

	return opts, nil
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.homecase_dashboard")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	handler, err := newHandler(ctx, cfg)
	if err != nil {
		return err
	}

	if err := http_.ListenAndServe(ctx, handler, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// newHandler composes all services into one mux.
func newHandler(ctx context.Context, cfg Config) (http_.HTTPTransport, error) {
	authSvc, err := authsvc.NewAuthService(ctx, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	iconSvc, err := iconsvc.NewFileSystemIconService(ctx, cfg.Icons)
	if err != nil {
		return nil, fmt.Errorf("new icon service: %w", err)
	}

	pages, err := web.NewRenderer(template.FuncMap{"iconSrc": iconsvc.Src})
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	catalogSvc := catalogsvc.NewCatalogService(cfg.Catalog)
	dashboardSvc := dashboardsvc.NewDashboardService(catalogSvc, cfg.Dashboard)

	return http_.NewServeMux(
		authsvc.NewHTTPTransport(authSvc, pages, cfg.AuthHTTP),
		healthsvc.NewHTTPTransport(healthsvc.NewHealthService()),
		iconsvc.NewHTTPTransport(iconSvc, authSvc, cfg.IconsHTTP),
		dashboardsvc.NewHTTPTransport(dashboardSvc, authSvc, pages),
	), nil
}

// checkCatalog loads the services file and reports the outcome on out.
func checkCatalog(ctx context.Context, cfg catalogsvc.CatalogConfig, out io.Writer) error {
	res := catalogsvc.NewCatalogService(cfg).Load(ctx)
	if !res.OK() {
		fmt.Fprintf(out, "%s: %s: %v\n", cfg.Path, res.Failure, res.Err)

		return fmt.Errorf("%w: %s", errCheckFailed, res.Failure)
	}

	fmt.Fprintf(out, "%s: ok, %d services\n", cfg.Path, res.Catalog.Len())

	return nil
}

func healthcheck(ctx context.Context, cfg healthclient.HTTPClientConfig, target string) error {
	if target != healthcheckConfigured {
		cfg.HealthURL = target
	}

	ctx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
	defer cancel()

	if err := healthclient.NewHTTPClient(cfg, nil).Check(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)

		return fmt.Errorf("%w: %w", errCheckFailed, err)
	}

	return nil
}
