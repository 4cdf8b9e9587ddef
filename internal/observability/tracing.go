package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "plantmodel"
	ServiceVersion = "0.4.0"
)

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	JaegerURL   string  `yaml:"jaeger_url" mapstructure:"jaeger_url" validate:"required_if=Enabled true,omitempty,url"`
	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	Environment string  `yaml:"environment" mapstructure:"environment"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// TracingManager opens spans around model operations. Without tracing
// enabled it hands out spans of the global no-op provider.
type TracingManager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   TracingConfig
}

func NewTracingManager(config TracingConfig) (*TracingManager, error) {
	if !config.Enabled {
		return &TracingManager{
			tracer: otel.Tracer(ServiceName),
			config: config,
		}, nil
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerURL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(getServiceName(config)),
			semconv.ServiceVersion(ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return NewTracingManagerWithProvider(config, sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SampleRate)),
	)), nil
}

// NewTracingManagerWithProvider uses an existing provider, e.g. one backed
// by an in-memory exporter in tests.
func NewTracingManagerWithProvider(config TracingConfig, tp *sdktrace.TracerProvider) *TracingManager {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &TracingManager{
		tracer:   tp.Tracer(getServiceName(config)),
		provider: tp,
		config:   config,
	}
}

// StartModelOperation starts a span named model.<operation>.
func (tm *TracingManager) StartModelOperation(ctx context.Context, operation, model, target string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "model."+operation,
		trace.WithAttributes(
			attribute.String("model.name", model),
			attribute.String("model.target", target),
			attribute.String("operation", operation),
		),
	)
}

// StartKernelCall starts a client span for a kernel request.
func (tm *TracingManager) StartKernelCall(ctx context.Context, call string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "kernel."+call,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("kernel.call", call)),
	)
}

func (tm *TracingManager) SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (tm *TracingManager) Shutdown(ctx context.Context) error {
	if tm.provider != nil {
		return tm.provider.Shutdown(ctx)
	}
	return nil
}

func (tm *TracingManager) IsEnabled() bool {
	return tm.config.Enabled
}

func getServiceName(config TracingConfig) string {
	if config.ServiceName != "" {
		return config.ServiceName
	}
	return ServiceName
}

// ExtractTraceInfo returns the trace and span id of a recording span in ctx.
func ExtractTraceInfo(ctx context.Context) map[string]string {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	spanCtx := span.SpanContext()
	return map[string]string{
		"trace_id": spanCtx.TraceID().String(),
		"span_id":  spanCtx.SpanID().String(),
	}
}
