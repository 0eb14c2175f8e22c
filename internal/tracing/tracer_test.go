package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "recents", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), "noop")
	require.NotNil(t, ctx)
	require.False(t, span.IsRecording())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "file_path required")
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "carrier-pigeon"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported exporter type")
}

func TestNewProvider_NoneExporterStillRecords(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	require.True(t, provider.Enabled())
	_, span := provider.Tracer().Start(context.Background(), "recorded")
	require.True(t, span.IsRecording())
	span.End()
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "traces.jsonl")
	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    ExporterFile,
		FilePath:    path,
		SampleRate:  1.0,
		ServiceName: "recents-test",
	})
	require.NoError(t, err)

	ctx, span := Start(context.Background(), provider.Tracer(), "add",
		attribute.String(AttrFilePath, "/a.txt"))
	_, child := provider.Tracer().Start(ctx, "child")
	child.End()
	End(span, nil, "")

	require.NoError(t, provider.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, string(data), `"name":"recents.add"`)
	require.Contains(t, string(data), `"recents.file.path":"/a.txt"`)
	require.Contains(t, string(data), `"status":"OK"`)
	require.Contains(t, string(data), `"parent_span_id"`)
}

func TestStartEnd_RecordsErrorAndKind(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := Start(context.Background(), tp.Tracer("test"), "remove",
		attribute.String(AttrOpID, "op-1"))
	End(span, errors.New("boom"), "corrupt")

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	require.Equal(t, "recents.remove", got.Name())
	require.Equal(t, codes.Error, got.Status().Code)
	require.Equal(t, "boom", got.Status().Description)

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "op-1", attrs[AttrOpID])
	require.Equal(t, "remove", attrs[AttrOpName])
	require.Equal(t, "corrupt", attrs[AttrErrorKind])
}

func TestStart_NilTracer(t *testing.T) {
	ctx, span := Start(context.Background(), nil, "list")
	require.NotNil(t, ctx)
	require.False(t, span.IsRecording())
	End(span, nil, "")
}
