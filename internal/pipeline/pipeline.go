// Package pipeline runs the multi-stage extraction chain for one document:
// ordered fallback across extraction methods with sufficiency early-exit,
// field-by-field merge with provenance, cross-validation, confidence
// scoring, and final assembly.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/docsource"
	"github.com/sells-group/income-verify/internal/extract"
	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/internal/scorer"
	"github.com/sells-group/income-verify/internal/validate"
)

// Options tune a Parser.
type Options struct {
	// Timeout bounds one whole document parse. Zero disables the bound.
	Timeout time.Duration
	// VisionEnhancement invokes the visual method even after sufficiency,
	// to fill gaps and cross-check contradiction-flagged fields.
	VisionEnhancement bool
}

// AuditSink receives finished documents for persistence. Implementations
// must be safe for concurrent use.
type AuditSink interface {
	RecordRun(ctx context.Context, path string, doc *model.Document) error
}

// Probe checks that a document is readable before extraction starts.
// docsource.Probe satisfies this; tests substitute a stub.
type Probe func(path string) error

// Parser owns the fallback chain. All collaborators are injected so the
// orchestration logic tests without any external service.
type Parser struct {
	extractors []extract.Extractor
	validator  *validate.Validator
	probe      Probe
	sink       AuditSink
	opts       Options
}

// New creates a Parser. Extractors must be supplied in priority order.
func New(extractors []extract.Extractor, validator *validate.Validator, opts Options) *Parser {
	return &Parser{
		extractors: extractors,
		validator:  validator,
		probe:      docsource.Probe,
		opts:       opts,
	}
}

// WithProbe replaces the readability probe.
func (p *Parser) WithProbe(probe Probe) *Parser {
	p.probe = probe
	return p
}

// WithSink attaches an audit sink that records every finished parse.
func (p *Parser) WithSink(sink AuditSink) *Parser {
	p.sink = sink
	return p
}

// Parse runs the full chain for one document. It returns either a finished
// Document, ErrUnreadableDocument, or ErrExtractionFailed; method-level
// failures never escape as errors.
func (p *Parser) Parse(ctx context.Context, path string, kind model.DocumentKind) (*model.Document, error) {
	started := time.Now()

	if err := p.probe(path); err != nil {
		return nil, err
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	meta := model.ProcessingMetadata{
		RunID:        uuid.NewString(),
		DocumentKind: kind,
	}
	merged := make(model.FieldMap)

	sufficiencyReached := p.runChain(ctx, path, kind, merged, &meta)

	if p.opts.VisionEnhancement && sufficiencyReached && !meta.Attempted(model.MethodVisual) {
		p.runEnhancement(ctx, path, kind, merged, &meta)
	}

	paystub, w2, warnings := p.finalize(kind, merged)
	confidence, breakdown := scorer.Score(kind, merged, meta)
	meta.DurationMS = time.Since(started).Milliseconds()

	doc, err := assemble(kind, merged, paystub, w2, warnings, confidence, breakdown, meta)
	if err != nil {
		zap.L().Warn("extraction failed",
			zap.String("run_id", meta.RunID),
			zap.String("path", path),
			zap.String("kind", string(kind)),
		)
		return nil, err
	}

	zap.L().Info("document parsed",
		zap.String("run_id", meta.RunID),
		zap.String("path", path),
		zap.String("kind", string(kind)),
		zap.Float64("confidence", doc.Confidence),
		zap.Int("warnings", len(doc.Warnings)),
		zap.Int64("duration_ms", meta.DurationMS),
	)

	if p.sink != nil {
		if err := p.sink.RecordRun(ctx, path, doc); err != nil {
			zap.L().Warn("audit record failed",
				zap.String("run_id", meta.RunID),
				zap.Error(err),
			)
		}
	}

	return doc, nil
}

// runChain walks TryStructured, TryText, TryVisual in order, merging each
// partial record. Returns whether the merged fields reached sufficiency.
// Each method runs at most once.
func (p *Parser) runChain(ctx context.Context, path string, kind model.DocumentKind, merged model.FieldMap, meta *model.ProcessingMetadata) bool {
	for _, ex := range p.extractors {
		if ctx.Err() != nil {
			// Per-document timeout: treat never-started methods as
			// unavailable and continue with whatever has merged so far.
			meta.TimedOut = true
			meta.MethodsAttempted = append(meta.MethodsAttempted, model.MethodAttempt{
				Method:  ex.Method(),
				Outcome: model.OutcomeUnavailable,
				Detail:  "document timeout",
			})
			continue
		}

		attemptStart := time.Now()
		result, err := ex.Extract(ctx, extract.Request{Path: path, Kind: kind})
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			meta.TimedOut = true
			result.Outcome = model.OutcomeUnavailable
		}

		p.recordAttempt(meta, ex.Method(), result, time.Since(attemptStart))
		mergeFill(merged, model.PartialRecord{Method: ex.Method(), Fields: result.Fields})

		if result.Outcome == model.OutcomeSuccess && model.Sufficient(kind, merged) {
			return true
		}
	}
	return model.Sufficient(kind, merged)
}

// runEnhancement invokes the visual method after sufficiency was already
// reached. Its fields fill gaps only, except fields the cross-validator
// flagged as arithmetic suspects, which it may overwrite.
func (p *Parser) runEnhancement(ctx context.Context, path string, kind model.DocumentKind, merged model.FieldMap, meta *model.ProcessingMetadata) {
	var visual extract.Extractor
	for _, ex := range p.extractors {
		if ex.Method() == model.MethodVisual {
			visual = ex
			break
		}
	}
	if visual == nil || ctx.Err() != nil {
		return
	}

	_, _, warnings := p.finalize(kind, merged)
	suspects := make(map[string]bool)
	for _, key := range validate.ArithmeticSuspects(warnings) {
		suspects[key] = true
	}

	attemptStart := time.Now()
	result, _ := visual.Extract(ctx, extract.Request{
		Path:  path,
		Kind:  kind,
		Prior: merged.Clone(),
	})
	p.recordAttempt(meta, model.MethodVisual, result, time.Since(attemptStart))
	meta.EnhancementRun = true

	mergeEnhance(merged, model.PartialRecord{Method: model.MethodVisual, Fields: result.Fields}, suspects)
}

// finalize materializes the typed record and runs the validation battery.
func (p *Parser) finalize(kind model.DocumentKind, merged model.FieldMap) (*model.PaystubData, *model.W2Data, []model.Warning) {
	switch kind {
	case model.KindW2:
		w2 := materializeW2(merged)
		return nil, w2, p.validator.W2(w2, merged)
	default:
		paystub := materializePaystub(merged)
		return paystub, nil, p.validator.Paystub(paystub, merged)
	}
}

func (p *Parser) recordAttempt(meta *model.ProcessingMetadata, method model.Method, result extract.Result, elapsed time.Duration) {
	meta.MethodsAttempted = append(meta.MethodsAttempted, model.MethodAttempt{
		Method:     method,
		Outcome:    result.Outcome,
		DurationMS: elapsed.Milliseconds(),
		Detail:     result.Detail,
	})
	if result.TablesFound > meta.TablesFound {
		meta.TablesFound = result.TablesFound
	}
	if result.TextChars > meta.TextChars {
		meta.TextChars = result.TextChars
	}
	if method == model.MethodVisual {
		meta.VisualInvoked = true
	}
}
