// Package schoolstore wires the global dependencies shared by all contexts:
// configuration, observability, the record storage, and the web router.
package schoolstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prometheusSDK "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"golang.org/x/sync/errgroup"

	"github.com/go-arrower/schoolstore/alog"
	ctx2 "github.com/go-arrower/schoolstore/ctx"
	"github.com/go-arrower/schoolstore/postgres"
	"github.com/go-arrower/schoolstore/repository"
)

var ErrMissingDependency = errors.New("missing dependency")

// Container holds global dependencies that can be used within each Context, to make initialisation easier.
type Container struct {
	Logger        alog.Logger
	MeterProvider *metric.MeterProvider
	TraceProvider *trace.TracerProvider
	// Registry collects all prometheus metrics served on /metrics.
	Registry *prometheusSDK.Registry

	Config *Config

	// Store keeps the slots of all sections, as selected by Config.Storage.Driver.
	Store repository.Store
	// PG is only set for the postgres driver.
	PG *postgres.Handler

	WebRouter   *echo.Echo
	APIRouter   *echo.Group
	AdminRouter *echo.Group

	startedAt      time.Time
	servers        *errgroup.Group
	statusEndpoint *http.Server
	closeStore     func(ctx context.Context) error
}

func (c *Container) EnsureAllDependenciesPresent() error {
	if c.Config == nil {
		return fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	if c.Store == nil {
		return fmt.Errorf("%w: store", ErrMissingDependency)
	}

	return nil
}

// RepositoryOptions returns the options every slot repository is created with,
// as configured in Config.Storage.
func (c *Container) RepositoryOptions() ([]repository.Option, error) {
	codec, err := repository.CodecByName(c.Config.Storage.Codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	keys, err := repository.KeyGeneratorByName(c.Config.Storage.KeyFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	policy, err := repository.ParseCorruptPolicy(c.Config.Storage.OnCorrupt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return []repository.Option{
		repository.WithCodec(codec),
		repository.WithKeyGenerator(keys),
		repository.WithCorruptPolicy(policy),
		repository.WithLogger(c.Logger),
	}, nil
}

func InitialiseDefaultDependencies(ctx context.Context, conf *Config) (*Container, error) { //nolint:funlen // dependency injection is long but also straight forward.
	if conf == nil {
		return nil, fmt.Errorf("%w: config", ErrMissingDependency)
	}

	if conf.InstanceName == "" {
		conf.InstanceName = hostname()
	}

	dc := &Container{
		Config:    conf,
		startedAt: time.Now(),
	}

	{ // observability
		resource := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(conf.ApplicationName),
			semconv.ServiceInstanceIDKey.String(conf.InstanceName),
			attribute.String("environment", string(conf.Environment)),
		)

		{ // traces
			opts := []trace.TracerProviderOption{
				trace.WithResource(resource),
				trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(0.6))),
			}

			if conf.Environment == LocalEnv {
				opts = append(opts, trace.WithSampler(trace.AlwaysSample()))
			}

			if conf.OTEL.Host != "" {
				traceExporter, err := otlptracegrpc.New(ctx,
					otlptracegrpc.WithEndpoint(fmt.Sprintf("%s:%d", conf.OTEL.Host, conf.OTEL.Port)),
					otlptracegrpc.WithInsecure(),
				)
				if err != nil {
					return nil, fmt.Errorf("could not connect to trace exporter: %w", err)
				}

				opts = append(opts, trace.WithBatcher(traceExporter))
			}

			dc.TraceProvider = trace.NewTracerProvider(opts...)
			otel.SetTracerProvider(dc.TraceProvider)
		}

		{ // metrics
			dc.Registry = prometheusSDK.NewRegistry()
			dc.Registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			exporter, err := prometheus.New(prometheus.WithRegisterer(dc.Registry))
			if err != nil {
				return nil, fmt.Errorf("could not create prometheus exporter: %w", err)
			}

			dc.MeterProvider = metric.NewMeterProvider(
				metric.WithResource(resource),
				metric.WithReader(exporter),
			)
			otel.SetMeterProvider(dc.MeterProvider)
		}
	}

	{ // logger
		logger := alog.New()
		if conf.Environment == LocalEnv || conf.Debug {
			logger = alog.NewDevelopment()
		}

		if conf.Environment == TestEnv {
			logger = alog.NewNoop()
		}

		dc.Logger = logger.With(
			slog.String("application_name", conf.ApplicationName),
			slog.String("instance_name", conf.InstanceName),
			slog.String("git_hash", gitHash()),
			slog.String("environment", string(conf.Environment)),
		)
	}

	{ // storage
		if err := dc.openStore(ctx); err != nil {
			return nil, err
		}
	}

	{ // web routers
		router := echo.New()
		router.HideBanner = true
		router.HidePort = true
		router.Logger.SetOutput(io.Discard)
		router.Validator = &CustomValidator{validator: validator.New()}
		router.IPExtractor = echo.ExtractIPFromXFFHeader() // see: https://echo.labstack.com/docs/ip-address
		router.Debug = conf.Debug

		metrics, err := echoprometheus.MiddlewareConfig{
			Subsystem:  conf.ApplicationName,
			Registerer: dc.Registry,
		}.ToMiddleware()
		if err != nil {
			return nil, fmt.Errorf("could not create http metrics: %w", err)
		}

		router.Use(middleware.Recover())
		router.Use(otelecho.Middleware(conf.OTEL.Hostname, otelecho.WithTracerProvider(dc.TraceProvider)))
		router.Use(metrics)
		router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TargetHeader: echo.HeaderXRequestID,
			RequestIDHandler: func(c echo.Context, rid string) {
				ctx := context.WithValue(c.Request().Context(), ctx2.CtxRequestID, rid)
				ctx = alog.AddAttr(ctx, slog.String("request_id", rid))

				c.SetRequest(c.Request().WithContext(ctx))
			},
		}))

		dc.WebRouter = router
		dc.AdminRouter = router.Group("/admin")
		dc.APIRouter = router.Group("/api")
	}

	return dc, nil
}

// Start serves the web router and, if enabled, the status endpoint.
// It returns immediately, use Wait to block until the servers stopped.
func (c *Container) Start(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "starting all servers",
		slog.Int("port", c.Config.HTTP.Port),
	)

	c.servers = &errgroup.Group{}

	webListener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.Config.HTTP.Port))
	if err != nil {
		return fmt.Errorf("could not listen for web router: %w", err)
	}

	c.WebRouter.Listener = webListener

	c.servers.Go(func() error {
		if err := c.WebRouter.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web router stopped: %w", err)
		}

		return nil
	})

	if c.Config.HTTP.StatusEndpointEnabled {
		c.statusEndpoint = &http.Server{
			Addr:              fmt.Sprintf(":%d", c.Config.HTTP.StatusEndpointPort),
			Handler:           c.StatusHandler(),
			ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // fixed for the status endpoint
		}

		c.Logger.InfoContext(ctx, "serving status endpoint",
			slog.String("addr", c.statusEndpoint.Addr),
			slog.String("metric_path", metricPath),
			slog.String("status_path", statusPath),
		)

		c.servers.Go(func() error {
			if err := c.statusEndpoint.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status endpoint stopped: %w", err)
			}

			return nil
		})
	}

	return nil
}

// Wait blocks until all servers started by Start have stopped and returns the first error.
func (c *Container) Wait() error {
	if c.servers == nil {
		return nil
	}

	return c.servers.Wait() //nolint:wrapcheck // errors are wrapped by Start
}

// Shutdown stops the servers and closes the store and telemetry providers.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "shutting down all servers")

	var servers errgroup.Group

	if c.servers != nil {
		servers.Go(func() error { return c.WebRouter.Shutdown(ctx) })
	}

	if c.statusEndpoint != nil {
		servers.Go(func() error { return c.statusEndpoint.Shutdown(ctx) })
	}

	errs := []error{servers.Wait(), c.Wait()}

	if c.closeStore != nil {
		errs = append(errs, c.closeStore(ctx))
	}

	errs = append(errs,
		c.TraceProvider.Shutdown(ctx),
		c.MeterProvider.Shutdown(ctx),
	)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("could not shut down cleanly: %w", err)
	}

	return nil
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err //nolint:wrapcheck // return the original validate error to not break the API for the caller.
	}

	return nil
}

func gitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return name
}
