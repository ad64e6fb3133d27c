package otel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	eventbus "github.com/hanpama/graphresolve/internal/eventbus"
	events "github.com/hanpama/graphresolve/internal/events"
	reqid "github.com/hanpama/graphresolve/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "graphresolve"

// Config selects the OTLP collector. An empty Endpoint disables telemetry.
type Config struct {
	Endpoint string
	Service  string
}

// Telemetry owns the providers created by Setup.
type Telemetry struct {
	// LoggerProvider is nil when telemetry is disabled.
	LoggerProvider *sdklog.LoggerProvider

	shutdown []func(context.Context) error
}

// Shutdown flushes and stops every provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// Setup configures OTLP trace and log export over gRPC and attaches the
// execution span subscriber to bus.
func Setup(ctx context.Context, cfg Config, bus *eventbus.Bus) (*Telemetry, error) {
	t := &Telemetry{}
	if cfg.Endpoint == "" {
		return t, nil
	}
	res := resource.NewSchemaless(attribute.String("service.name", cfg.Service))
	dial := grpc.WithTransportCredentials(insecure.NewCredentials())

	traceExp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(dial))
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	t.shutdown = append(t.shutdown, tp.Shutdown)

	logExp, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(cfg.Endpoint),
		otlploggrpc.WithDialOption(dial))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("log exporter: %w", err)
	}
	t.LoggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
	)
	t.shutdown = append(t.shutdown, t.LoggerProvider.Shutdown)

	unsubscribe := Instrument(bus, tp.Tracer(instrumentationName))
	t.shutdown = append([]func(context.Context) error{func(context.Context) error {
		unsubscribe()
		return nil
	}}, t.shutdown...)
	return t, nil
}

// Instrument records one span per execution published on bus, keyed by the
// request ID of the publishing context.
func Instrument(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer trace.Tracer
	spans  sync.Map // rid -> trace.Span
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubs := []func(){
		eventbus.SubscribeTo(bus, func(ctx context.Context, e events.ExecutionStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphql.execution")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
				attribute.String("request.id", rid),
			)
			s.spans.Store(rid, span)
		}),

		eventbus.SubscribeTo(bus, func(ctx context.Context, e events.FieldError) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.spans.Load(rid)
			if !ok {
				return
			}
			v.(trace.Span).AddEvent("graphql.field_error", trace.WithAttributes(
				attribute.String("graphql.path", e.Path),
				attribute.String("graphql.error.message", e.Message),
			))
		}),

		eventbus.SubscribeTo(bus, func(ctx context.Context, e events.ExecutionFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.spans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.String("graphql.outcome", e.Outcome),
				attribute.Int("graphql.error_count", len(e.Errors)),
			)
			if e.Fatal != nil {
				span.RecordError(e.Fatal)
				span.SetStatus(codes.Error, e.Fatal.Error())
			}
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
