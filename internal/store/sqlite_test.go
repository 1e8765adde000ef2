package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-verify/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleDocument(confidence float64, warnings int) *model.Document {
	gross := model.MustMoney("4056.31")
	doc := &model.Document{
		Kind: model.KindPaystub,
		Paystub: &model.PaystubData{
			Employer:        model.EmployerInfo{CompanyName: "Acme Staffing Inc"},
			Employee:        model.EmployeeInfo{Name: "Jane Doe"},
			GrossPayCurrent: &gross,
		},
		Confidence: confidence,
		Metadata: model.ProcessingMetadata{
			RunID: uuid.NewString(),
		},
	}
	for i := 0; i < warnings; i++ {
		doc.Warnings = append(doc.Warnings, model.Warning{
			Code:     model.WarnCompletenessMissingFields,
			Severity: model.SeverityWarning,
			Message:  "missing required fields",
		})
	}
	return doc
}

func TestRecordAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := sampleDocument(0.87, 1)
	require.NoError(t, s.RecordRun(ctx, "docs/stub.pdf", doc))

	run, err := s.GetRun(ctx, doc.Metadata.RunID)
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata.RunID, run.ID)
	assert.Equal(t, "docs/stub.pdf", run.Path)
	assert.Equal(t, model.KindPaystub, run.Kind)
	assert.InDelta(t, 0.87, run.Confidence, 1e-9)
	assert.Equal(t, 1, run.WarningCount)

	require.NotNil(t, run.Document)
	require.NotNil(t, run.Document.Paystub)
	assert.Equal(t, "Jane Doe", run.Document.Paystub.Employee.Name)
	assert.Equal(t, "4056.31", run.Document.Paystub.GrossPayCurrent.String())
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestListRunsFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	high := sampleDocument(0.91, 0)
	low := sampleDocument(0.42, 2)
	w2 := sampleDocument(0.78, 0)
	w2.Kind = model.KindW2

	require.NoError(t, s.RecordRun(ctx, "a.pdf", high))
	require.NoError(t, s.RecordRun(ctx, "b.pdf", low))
	require.NoError(t, s.RecordRun(ctx, "c.pdf", w2))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	confident, err := s.ListRuns(ctx, RunFilter{MinConfidence: 0.75})
	require.NoError(t, err)
	assert.Len(t, confident, 2)

	w2Only, err := s.ListRuns(ctx, RunFilter{Kind: model.KindW2})
	require.NoError(t, err)
	require.Len(t, w2Only, 1)
	assert.Equal(t, w2.Metadata.RunID, w2Only[0].ID)
	assert.Nil(t, w2Only[0].Document, "list results omit the document body")

	byPath, err := s.ListRuns(ctx, RunFilter{Path: "b.pdf"})
	require.NoError(t, err)
	require.Len(t, byPath, 1)
	assert.Equal(t, 2, byPath[0].WarningCount)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPruneBefore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRun(ctx, "a.pdf", sampleDocument(0.9, 0)))
	require.NoError(t, s.RecordRun(ctx, "b.pdf", sampleDocument(0.8, 0)))

	pruned, err := s.PruneBefore(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, pruned)

	pruned, err = s.PruneBefore(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	remaining, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
