// Package tracing настраивает OpenTelemetry tracer provider.
//
// Спаны создаются:
//   - otelgin middleware (HTTP сервер)
//   - ProcedureCaller (по одному спану на вызов процедуры)
//
// Экспорт: OTLP/HTTP.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config - настройки трассировки.
type Config struct {
	Enabled     bool
	Endpoint    string // host:port коллектора
	ServiceName string
	Version     string
	Environment string
	Insecure    bool
	SampleRatio float64
}

// ShutdownFunc сбрасывает буферы и останавливает экспорт.
type ShutdownFunc func(ctx context.Context) error

// Setup регистрирует глобальный tracer provider и propagator.
//
// Выключенная трассировка возвращает no-op ShutdownFunc: глобальный
// provider остаётся no-op, спаны ничего не стоят.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	tp := NewProvider(cfg, sdktrace.WithBatcher(exporter))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// NewProvider собирает provider с ресурсом сервиса и сэмплером.
func NewProvider(cfg Config, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
		attribute.String("deployment.environment", cfg.Environment),
	)

	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	}, opts...)

	return sdktrace.NewTracerProvider(opts...)
}

// sampler: ratio <= 0 или >= 1 - всё; иначе доля корневых спанов.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
