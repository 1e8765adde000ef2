package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-verify/internal/extract"
	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/internal/validate"
)

// scriptedExtractor returns a canned result and counts invocations.
type scriptedExtractor struct {
	method  model.Method
	result  extract.Result
	err     error
	calls   int
	lastReq extract.Request
	delay   time.Duration
}

func (s *scriptedExtractor) Method() model.Method { return s.method }

func (s *scriptedExtractor) Extract(ctx context.Context, req extract.Request) (extract.Result, error) {
	s.calls++
	s.lastReq = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return extract.Result{Fields: make(model.FieldMap), Outcome: model.OutcomeUnavailable}, ctx.Err()
		}
	}
	return s.result, s.err
}

func fieldsWith(method model.Method, values map[string]any) model.FieldMap {
	fields := make(model.FieldMap)
	for key, value := range values {
		fields.Set(model.FieldValue{FieldKey: key, Value: value, Method: method})
	}
	return fields
}

func okProbe(string) error { return nil }

func sufficientStructured() *scriptedExtractor {
	return &scriptedExtractor{
		method: model.MethodStructured,
		result: extract.Result{
			Fields: fieldsWith(model.MethodStructured, map[string]any{
				model.FieldEmployerName:    "Acme Staffing Inc",
				model.FieldEmployeeName:    "Jane Doe",
				model.FieldPayDate:         model.MustDate("2024-03-15"),
				model.FieldGrossPayCurrent: model.MustMoney("4056.31"),
				model.FieldNetPayCurrent:   model.MustMoney("2769.80"),
				model.FieldEarnings: []model.EarningLine{
					{Description: "Regular", CurrentAmount: model.MustMoney("4056.31")},
				},
				model.FieldTaxes: []model.TaxLine{
					{TaxType: "Federal Income Tax", CurrentAmount: model.MustMoney("1074.24")},
				},
				model.FieldDeductions: []model.DeductionLine{
					{Description: "401k", CurrentAmount: model.MustMoney("212.27")},
				},
			}),
			Outcome:     model.OutcomeSuccess,
			TablesFound: 2,
		},
	}
}

func failedExtractor(method model.Method) *scriptedExtractor {
	return &scriptedExtractor{
		method: method,
		result: extract.Result{Fields: make(model.FieldMap), Outcome: model.OutcomeFailed},
	}
}

func newParser(opts Options, extractors ...extract.Extractor) *Parser {
	return New(extractors, validate.New(validate.DefaultRules()), opts).WithProbe(okProbe)
}

// Structured data alone reaching sufficiency must keep the expensive
// methods idle (cost-bounding property).
func TestEarlyExitSkipsLaterMethods(t *testing.T) {
	structured := sufficientStructured()
	text := failedExtractor(model.MethodText)
	visual := failedExtractor(model.MethodVisual)

	doc, err := newParser(Options{}, structured, text, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.Equal(t, 1, structured.calls)
	assert.Zero(t, text.calls)
	assert.Zero(t, visual.calls)
	assert.False(t, doc.Metadata.VisualInvoked)
	require.Len(t, doc.Metadata.MethodsAttempted, 1)
}

// Scenario: clean structured-only extraction with consistent arithmetic
// yields no arithmetic warnings and a maxed financial category.
func TestConsistentStructuredDocument(t *testing.T) {
	doc, err := newParser(Options{}, sufficientStructured()).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	for _, w := range doc.Warnings {
		assert.NotEqual(t, model.WarnArithmeticGrossEarnings, w.Code)
		assert.NotEqual(t, model.WarnArithmeticNetReconcile, w.Code)
	}

	var financial model.CategoryScore
	for _, cat := range doc.ConfidenceBreakdown {
		if cat.Category == "financial" {
			financial = cat
		}
	}
	assert.Equal(t, financial.Possible, financial.Earned)

	require.NotNil(t, doc.Paystub)
	assert.Equal(t, "4056.31", doc.Paystub.GrossPayCurrent.String())
}

func TestFallbackAdvancesThroughChain(t *testing.T) {
	structured := failedExtractor(model.MethodStructured)
	text := &scriptedExtractor{
		method: model.MethodText,
		result: extract.Result{
			Fields: fieldsWith(model.MethodText, map[string]any{
				model.FieldEmployeeName: "Jane Doe",
			}),
			Outcome:   model.OutcomePartial,
			TextChars: 340,
		},
	}
	visual := &scriptedExtractor{
		method: model.MethodVisual,
		result: extract.Result{
			Fields: fieldsWith(model.MethodVisual, map[string]any{
				model.FieldGrossPayCurrent: model.MustMoney("2500.00"),
			}),
			Outcome: model.OutcomePartial,
		},
	}

	doc, err := newParser(Options{}, structured, text, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 1, text.calls)
	assert.Equal(t, 1, visual.calls)
	assert.True(t, doc.Metadata.VisualInvoked)

	// provenance reflects which method recovered each field
	name, _ := doc.Provenance.Get(model.FieldEmployeeName)
	assert.Equal(t, model.MethodText, name.Method)
	gross, _ := doc.Provenance.Get(model.FieldGrossPayCurrent)
	assert.Equal(t, model.MethodVisual, gross.Method)
}

// Scenario: table extraction fails, text yields only the employee name,
// visual is unavailable. The name is a required field, so the caller gets
// a low-confidence record with a completeness warning.
func TestDegradedRunYieldsLowConfidenceRecord(t *testing.T) {
	structured := failedExtractor(model.MethodStructured)
	text := &scriptedExtractor{
		method: model.MethodText,
		result: extract.Result{
			Fields: fieldsWith(model.MethodText, map[string]any{
				model.FieldEmployeeName: "Jane Doe",
			}),
			Outcome: model.OutcomePartial,
		},
	}
	visual := &scriptedExtractor{
		method: model.MethodVisual,
		result: extract.Result{Fields: make(model.FieldMap), Outcome: model.OutcomeUnavailable},
	}

	doc, err := newParser(Options{}, structured, text, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.Less(t, doc.Confidence, 0.2)
	assert.Contains(t, warningCodes(doc.Warnings), model.WarnCompletenessMissingFields)
}

func TestAllMethodsEmptyIsExtractionFailed(t *testing.T) {
	doc, err := newParser(Options{},
		failedExtractor(model.MethodStructured),
		failedExtractor(model.MethodText),
		failedExtractor(model.MethodVisual),
	).Parse(context.Background(), "doc.pdf", model.KindPaystub)

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, model.ErrExtractionFailed)
}

func TestUnreadableDocumentPropagates(t *testing.T) {
	parser := newParser(Options{}, sufficientStructured()).
		WithProbe(func(string) error { return model.ErrUnreadableDocument })

	doc, err := parser.Parse(context.Background(), "corrupt.pdf", model.KindPaystub)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, model.ErrUnreadableDocument)
}

// Once a higher-priority method populates a field, a later method may not
// overwrite it; the disagreement is recorded as a contradiction.
func TestMergePriorityAndContradiction(t *testing.T) {
	structured := &scriptedExtractor{
		method: model.MethodStructured,
		result: extract.Result{
			Fields: fieldsWith(model.MethodStructured, map[string]any{
				model.FieldGrossPayCurrent: model.MustMoney("4056.31"),
			}),
			Outcome: model.OutcomePartial,
		},
	}
	text := &scriptedExtractor{
		method: model.MethodText,
		result: extract.Result{
			Fields: fieldsWith(model.MethodText, map[string]any{
				model.FieldEmployeeName:    "Jane Doe",
				model.FieldGrossPayCurrent: model.MustMoney("4100.00"),
			}),
			Outcome: model.OutcomeSuccess,
		},
	}

	doc, err := newParser(Options{}, structured, text).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	gross, ok := doc.Provenance.Get(model.FieldGrossPayCurrent)
	require.True(t, ok)
	assert.Equal(t, model.MethodStructured, gross.Method)
	assert.Equal(t, model.MustMoney("4056.31"), gross.Value)
	require.NotNil(t, gross.Contradiction)
	assert.Equal(t, model.MethodText, gross.Contradiction.OtherMethod)
}

func TestEnhancementModeFillsGapsOnly(t *testing.T) {
	structured := sufficientStructured()
	visual := &scriptedExtractor{
		method: model.MethodVisual,
		result: extract.Result{
			// the name disagrees with the structured value; the YTD
			// amount and frequency fill gaps
			Fields: fieldsWith(model.MethodVisual, map[string]any{
				model.FieldEmployeeName: "Janet Doe",
				model.FieldGrossPayYTD:  model.MustMoney("17800.50"),
				model.FieldPayFrequency: "biweekly",
			}),
			Outcome: model.OutcomeSuccess,
		},
	}

	doc, err := newParser(Options{VisionEnhancement: true}, structured, failedExtractor(model.MethodText), visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.Equal(t, 1, visual.calls)
	assert.True(t, doc.Metadata.EnhancementRun)
	assert.True(t, doc.Metadata.VisualInvoked)

	// prior fields were forwarded for prompt seeding
	assert.True(t, visual.lastReq.Prior.Has(model.FieldGrossPayCurrent))

	// populated non-suspect field kept its structured value
	name, _ := doc.Provenance.Get(model.FieldEmployeeName)
	assert.Equal(t, "Jane Doe", name.Value)
	assert.Equal(t, model.MethodStructured, name.Method)
	require.NotNil(t, name.Contradiction)

	// gap filled by the visual method
	ytd, ok := doc.Provenance.Get(model.FieldGrossPayYTD)
	require.True(t, ok)
	assert.Equal(t, model.MethodVisual, ytd.Method)
}

func TestEnhancementOverwritesArithmeticSuspect(t *testing.T) {
	structured := sufficientStructured()
	// earnings sum to 4056.31 but gross reads 5000.00: gross becomes a suspect
	structured.result.Fields.Set(model.FieldValue{
		FieldKey: model.FieldGrossPayCurrent,
		Value:    model.MustMoney("5000.00"),
		Method:   model.MethodStructured,
	})
	visual := &scriptedExtractor{
		method: model.MethodVisual,
		result: extract.Result{
			Fields: fieldsWith(model.MethodVisual, map[string]any{
				model.FieldGrossPayCurrent: model.MustMoney("4056.31"),
			}),
			Outcome: model.OutcomeSuccess,
		},
	}

	doc, err := newParser(Options{VisionEnhancement: true}, structured, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	gross, _ := doc.Provenance.Get(model.FieldGrossPayCurrent)
	assert.Equal(t, model.MethodVisual, gross.Method)
	assert.Equal(t, model.MustMoney("4056.31"), gross.Value)
	require.NotNil(t, gross.Contradiction)
	assert.Equal(t, model.MethodStructured, gross.Contradiction.OtherMethod)
}

func TestEnhancementSkippedWhenVisualAlreadyRan(t *testing.T) {
	structured := failedExtractor(model.MethodStructured)
	text := failedExtractor(model.MethodText)
	visual := &scriptedExtractor{
		method: model.MethodVisual,
		result: extract.Result{
			Fields: fieldsWith(model.MethodVisual, map[string]any{
				model.FieldEmployeeName:  "Jane Doe",
				model.FieldNetPayCurrent: model.MustMoney("2769.80"),
			}),
			Outcome: model.OutcomeSuccess,
		},
	}

	_, err := newParser(Options{VisionEnhancement: true}, structured, text, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.Equal(t, 1, visual.calls)
}

// On timeout the in-flight method reports Unavailable and the pipeline
// proceeds with the partial state instead of failing hard.
func TestTimeoutYieldsPartialRecord(t *testing.T) {
	structured := &scriptedExtractor{
		method: model.MethodStructured,
		result: extract.Result{
			Fields: fieldsWith(model.MethodStructured, map[string]any{
				model.FieldEmployeeName: "Jane Doe",
			}),
			Outcome: model.OutcomePartial,
		},
	}
	slowText := &scriptedExtractor{
		method: model.MethodText,
		delay:  200 * time.Millisecond,
		result: extract.Result{Fields: make(model.FieldMap), Outcome: model.OutcomeSuccess},
	}
	visual := failedExtractor(model.MethodVisual)

	doc, err := newParser(Options{Timeout: 50 * time.Millisecond}, structured, slowText, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.True(t, doc.Metadata.TimedOut)
	assert.Equal(t, "Jane Doe", doc.Provenance.String(model.FieldEmployeeName))

	var textOutcome model.MethodOutcome
	for _, a := range doc.Metadata.MethodsAttempted {
		if a.Method == model.MethodText {
			textOutcome = a.Outcome
		}
	}
	assert.Equal(t, model.OutcomeUnavailable, textOutcome)
}

func TestMethodsRunAtMostOnce(t *testing.T) {
	structured := failedExtractor(model.MethodStructured)
	text := failedExtractor(model.MethodText)
	visual := &scriptedExtractor{
		method: model.MethodVisual,
		result: extract.Result{
			Fields: fieldsWith(model.MethodVisual, map[string]any{
				model.FieldEmployeeName:  "Jane Doe",
				model.FieldNetPayCurrent: model.MustMoney("2100.00"),
			}),
			Outcome: model.OutcomeSuccess,
		},
	}

	_, err := newParser(Options{VisionEnhancement: true}, structured, text, visual).
		Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)

	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 1, text.calls)
	assert.Equal(t, 1, visual.calls)
}

type recordingSink struct {
	paths []string
}

func (r *recordingSink) RecordRun(_ context.Context, path string, _ *model.Document) error {
	r.paths = append(r.paths, path)
	return nil
}

func TestAuditSinkReceivesDocument(t *testing.T) {
	sink := &recordingSink{}
	parser := newParser(Options{}, sufficientStructured()).WithSink(sink)

	_, err := parser.Parse(context.Background(), "doc.pdf", model.KindPaystub)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.pdf"}, sink.paths)
}

func warningCodes(warnings []model.Warning) []string {
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	return codes
}
