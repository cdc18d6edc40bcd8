// Package telemetry sets up the structured logger, the OpenTelemetry tracer and Sentry error
// reporting from OTEL_* environment variables.
package telemetry

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"pkg.world.dev/world-engine/evmutil/telemetry/sentry"
)

type Telemetry struct {
	Logger      zerolog.Logger
	Tracer      trace.Tracer
	serviceName string

	shutdown func(context.Context) error
}

func New(opts Options) (Telemetry, error) {
	config, err := loadConfig()
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to load otel config")
	}

	options := newDefaultOptions()
	config.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid otel options")
	}

	if err := sentry.New(options.SentryOptions); err != nil {
		return Telemetry{}, err
	}

	tracer, logger, shutdown, err := setupOpenTelemetry(context.Background(), options)
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to setup telemetry")
	}

	return Telemetry{
		Logger:      logger,
		Tracer:      tracer,
		serviceName: options.ServiceName,
		shutdown:    shutdown,
	}, nil
}

// Nop discards logs and traces.
func Nop() Telemetry {
	return Telemetry{
		Logger: zerolog.Nop(),
		Tracer: noop.NewTracerProvider().Tracer(""),
	}
}

// Shutdown flushes pending spans and Sentry events.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	sentry.Shutdown(ctx, 2*time.Second)
	if t.shutdown != nil {
		return t.shutdown(ctx)
	}
	return nil
}

// GetLogger returns a component-specific logger.
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	name := component
	if t.serviceName != "" {
		name = t.serviceName + "." + component
	}
	return t.Logger.With().Str("component", name).Logger()
}

// GetLoggerWithTrace returns a component-specific logger enriched with trace context.
func (t *Telemetry) GetLoggerWithTrace(ctx context.Context, component string) zerolog.Logger {
	logger := t.GetLogger(component)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		spanCtx := span.SpanContext()
		logger = logger.With().
			Str("trace_id", spanCtx.TraceID().String()).
			Str("span_id", spanCtx.SpanID().String()).
			Logger()
	}
	return logger
}
