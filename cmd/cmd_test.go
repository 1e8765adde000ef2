package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/internal/pipeline"
	"github.com/sells-group/income-verify/internal/store"
)

func TestDocumentKind(t *testing.T) {
	kind, err := documentKind("paystub")
	require.NoError(t, err)
	assert.Equal(t, model.KindPaystub, kind)

	kind, err = documentKind("w2")
	require.NoError(t, err)
	assert.Equal(t, model.KindW2, kind)

	_, err = documentKind("1099")
	assert.Error(t, err)
}

func TestCollectPDFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "nested/c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	paths, err := collectPDFs(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.True(t, strings.HasSuffix(paths[0], "a.PDF"))
	assert.True(t, strings.HasSuffix(paths[1], "b.pdf"))
	assert.True(t, strings.HasSuffix(paths[2], filepath.Join("nested", "c.pdf")))
}

func TestSpoolUpload(t *testing.T) {
	path, cleanup, err := spoolUpload(strings.NewReader("content"), "../sneaky/stub.pdf")
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "stub.pdf", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteBatchWorkbook(t *testing.T) {
	gross := model.MustMoney("4056.31")
	net := model.MustMoney("2769.80")
	summary := &pipeline.BatchSummary{
		Total: 2,
		Results: []pipeline.BatchResult{
			{
				Path: "a.pdf",
				Doc: &model.Document{
					Kind: model.KindPaystub,
					Paystub: &model.PaystubData{
						Employer:        model.EmployerInfo{CompanyName: "Acme Staffing Inc"},
						Employee:        model.EmployeeInfo{Name: "Jane Doe"},
						GrossPayCurrent: &gross,
						NetPayCurrent:   &net,
					},
					Confidence: 0.92,
				},
			},
			{Path: "b.pdf", Err: model.ErrUnreadableDocument},
		},
	}

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, writeBatchWorkbook(summary, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteRunsWorkbook(t *testing.T) {
	runs := []store.Run{
		{ID: "run-1", Path: "a.pdf", Kind: model.KindPaystub, Confidence: 0.91, WarningCount: 0, RecordedAt: time.Now()},
		{ID: "run-2", Path: "b.pdf", Kind: model.KindW2, Confidence: 0.64, WarningCount: 3, RecordedAt: time.Now()},
	}

	path := filepath.Join(t.TempDir(), "runs.xlsx")
	require.NoError(t, writeRunsWorkbook(runs, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestResultStatus(t *testing.T) {
	assert.Equal(t, "ok", resultStatus(pipeline.BatchResult{}))
	assert.Equal(t, "unreadable", resultStatus(pipeline.BatchResult{Err: model.ErrUnreadableDocument}))
	assert.Equal(t, "failed", resultStatus(pipeline.BatchResult{Err: model.ErrExtractionFailed}))
}
