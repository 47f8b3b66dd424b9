package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/typeguard/pkg/adapters/file"
	"github.com/aretw0/typeguard/pkg/ports"
	contract "github.com/aretw0/typeguard/pkg/ports/tests"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_Contract(t *testing.T) {
	ports.RunReportSinkContract(t, file.NewSink(t.TempDir()))
}

func TestFileSink_Pipeline(t *testing.T) {
	contract.SinkPipelineContractTest(t, file.NewSink(t.TempDir()))
}

func TestFileSink_MissingDir(t *testing.T) {
	sink := file.NewSink(filepath.Join(t.TempDir(), "missing"))
	reports, err := sink.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestFileSink_InvalidID(t *testing.T) {
	sink := file.NewSink(t.TempDir())
	report := violation.NewReport(violation.Subject{Kind: "value", Name: "x"}, violation.ModeRaise, nil)
	report.ID = "../escape"
	assert.Error(t, sink.Record(context.Background(), report))
}

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	setup := map[string][]byte{
		"clamp": []byte("name: clamp\nparams: [{name: x, type: int}]\n"),
		"greet": []byte(`{"name": "greet", "params": []}`),
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clamp.yaml"), setup["clamp"], 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.json"), setup["greet"], 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	contract.SignatureLoaderContractTest(t, file.NewLoader(dir), setup)
}
