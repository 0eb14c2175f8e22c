package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestFileExporter_EmptyBatchIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)
	defer func() { _ = exp.Shutdown(context.Background()) }()

	require.NoError(t, exp.ExportSpans(context.Background(), nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestFileExporter_WritesRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	stub := tracetest.SpanStub{Name: "recents.list"}
	spans := tracetest.SpanStubs{stub}.Snapshots()
	require.NoError(t, exp.ExportSpans(context.Background(), spans))
	require.NoError(t, exp.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec SpanRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, "recents.list", rec.Name)
	require.Equal(t, "UNSET", rec.Status)
}

func TestFileExporter_ShutdownTwiceAndExportAfter(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	spans := tracetest.SpanStubs{{Name: "late"}}.Snapshots()
	require.Error(t, exp.ExportSpans(context.Background(), spans))
}

var _ sdktrace.SpanExporter = (*FileExporter)(nil)
