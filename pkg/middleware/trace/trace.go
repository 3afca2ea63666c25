package trace

import (
	"context"
	"time"

	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type InitConfig struct {
	ServiceName    string
	Version        string
	Env            string
	TraceEndpoint  string
	MetricEndpoint string
}

var (
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

func InitTrace(ctx context.Context, conf *InitConfig) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(conf.ServiceName),
		semconv.ServiceVersion(conf.Version),
		semconv.DeploymentEnvironment(conf.Env),
	))
	if err != nil {
		logger.Errorf(ctx, "init trace resource err: %+v", err)
		res = resource.Default()
	}

	var spanExporter sdktrace.SpanExporter
	if conf.TraceEndpoint != "" {
		spanExporter, err = otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(conf.TraceEndpoint),
			otlptracegrpc.WithInsecure()))
	} else {
		spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(discard{}))
	}
	if err != nil {
		logger.Fatalf(ctx, "init span exporter err: %+v", err)
	}

	var metricExporter sdkmetric.Exporter
	if conf.MetricEndpoint != "" {
		metricExporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(conf.MetricEndpoint),
			otlpmetricgrpc.WithInsecure())
	} else {
		metricExporter, err = stdoutmetric.New(stdoutmetric.WithWriter(discard{}))
	}
	if err != nil {
		logger.Fatalf(ctx, "init metric exporter err: %+v", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	if err := host.Start(host.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start host metrics err: %+v", err)
	}
	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start runtime metrics err: %+v", err)
	}
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if tracerProvider != nil {
		_ = tracerProvider.Shutdown(ctx)
	}
	if meterProvider != nil {
		_ = meterProvider.Shutdown(ctx)
	}
}

// TraceID of the span carried by ctx, empty when there is none.
func TraceID(ctx context.Context) string {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
