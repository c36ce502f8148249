package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/do/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen11/maingo/internal/client"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/platform/config"
	"github.com/jsamuelsen11/maingo/internal/platform/health"
	"github.com/jsamuelsen11/maingo/internal/platform/logging"
	"github.com/jsamuelsen11/maingo/internal/platform/telemetry"
)

const otelShutdownTimeout = 5 * time.Second

// app holds the wired dependency graph for one command invocation.
type app struct {
	injector *do.RootScope
	logger   *slog.Logger
	otel     *otelProviders
}

// newApp loads configuration for the selected profile and wires the
// dependency graph. Nothing is resolved until a command invokes it.
func newApp(ctx context.Context, g *globalFlags, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(g.profile, config.WithConfigDir(g.configDir), config.WithOptionalFiles())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.hostname != "" {
		cfg.Client.Hostname = g.hostname
	}
	if g.connector != "" {
		cfg.Client.Connector = g.connector
	}

	level := cfg.Log.Level
	if g.verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Log.Format, logOut)

	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	return &app{injector: injector, logger: logger, otel: otel}, nil
}

// Close flushes telemetry.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()

	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Error("telemetry shutdown error", slog.Any("error", err))
	}
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (*client.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		c, err := client.New(cfg.ClientWithAuth(),
			client.WithLogger(logger),
			client.WithMetrics(metrics),
		)
		if err != nil {
			return nil, err
		}
		installMiddleware(c, logger)
		return c, nil
	})

	do.Provide(injector, func(i do.Injector) (*health.Registry, error) {
		registry := health.New()
		registry.Register(do.MustInvoke[*client.Client](i))
		return registry, nil
	})
}

// installMiddleware adds the CLI's request middleware and moves auth to the
// innermost position so logged headers never carry credentials.
func installMiddleware(c *client.Client, logger *slog.Logger) {
	c.UseMiddleware(middleware.Recovery(logger), middleware.Named("recovery"))
	c.UseMiddleware(middleware.RequestID(), middleware.Named("request_id"))
	c.UseMiddleware(middleware.CorrelationID(), middleware.Named("correlation_id"))
	c.UseMiddleware(middleware.Logging(logger), middleware.Named("logging"))

	if authMW, ok := c.GetMiddleware(client.AuthKey); ok {
		c.RemoveMiddleware(client.AuthKey)
		c.UseMiddleware(authMW, client.AuthKey)
	}
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}
