package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/avelis/go-accountability-sync/internal/config"
)

func preserveGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabledConfig(service string) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: service,
		SampleRatio: 1.0,
	}
}

func TestSetupTracing_DisabledIsNoOp(t *testing.T) {
	preserveGlobals(t)

	prev := otel.GetTracerProvider()
	shutdown, err := SetupTracing(context.Background(), config.OTELConfig{Enabled: false}, "v0")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("disabled tracing replaced the global provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown error = %v", err)
	}
}

func TestSetupTracing_Insecure_InstallsProvider(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupTracing(context.Background(), enabledConfig("sync-insecure"), "v1")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("provider type = %T, want *sdktrace.TracerProvider", otel.GetTracerProvider())
	}

	_, span := otel.Tracer("test").Start(context.Background(), "outbound")
	span.End()
}

func TestSetupTracing_TLSBranch(t *testing.T) {
	preserveGlobals(t)

	cfg := enabledConfig("sync-tls")
	cfg.Insecure = false
	shutdown, err := SetupTracing(context.Background(), cfg, "v1")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatal("TLS branch did not install a tracer provider")
	}
}

func TestSetupTracing_ExporterErrorLeavesGlobalsIntact(t *testing.T) {
	preserveGlobals(t)

	orig := newOTLPExporterFn
	defer func() { newOTLPExporterFn = orig }()
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("exporter down")
	}

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()

	if _, err := SetupTracing(context.Background(), enabledConfig("sync"), "v0"); err == nil {
		t.Fatal("SetupTracing() error = nil, want exporter error")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatal("tracer provider changed on failure")
	}
	if otel.GetTextMapPropagator() != prevProp {
		t.Fatal("propagator changed on failure")
	}
}

func TestSetupTracing_ResourceErrorPropagates(t *testing.T) {
	preserveGlobals(t)

	orig := newServiceResourceFn
	defer func() { newServiceResourceFn = orig }()
	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("bad resource")
	}

	if _, err := SetupTracing(context.Background(), enabledConfig("sync"), "v0"); err == nil {
		t.Fatal("SetupTracing() error = nil, want resource error")
	}
}

func TestSetupTracing_ShutdownFlushes(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupTracing(context.Background(), enabledConfig("sync-shutdown"), "v1")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
}
