package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/income-verify/internal/docsource"
	"github.com/sells-group/income-verify/internal/extract"
	"github.com/sells-group/income-verify/internal/pipeline"
	"github.com/sells-group/income-verify/internal/store"
	"github.com/sells-group/income-verify/internal/validate"
	"github.com/sells-group/income-verify/pkg/vision"
)

// env bundles the wired pipeline and its closeable resources.
type env struct {
	Parser *pipeline.Parser
	Store  *store.SQLiteStore
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close audit store", zap.Error(err))
		}
	}
}

// initPipeline wires document sources, extraction methods, validation rules
// and the audit store from config.
func initPipeline(ctx context.Context) (*env, error) {
	textSource, err := docsource.NewTextSource(cfg.OCR)
	if err != nil {
		return nil, err
	}

	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic.key is required (INCOMEVERIFY_ANTHROPIC_KEY)")
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.Anthropic.RatePerMinute/60), 1)
	visionClient := vision.NewClient(cfg.Anthropic.Key, vision.Options{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Limiter:   limiter,
	})

	rules, err := validate.LoadRules(cfg.Validation.RulesPath)
	if err != nil {
		zap.L().Warn("rules file unusable, using defaults",
			zap.String("path", cfg.Validation.RulesPath),
			zap.Error(err),
		)
	}

	extractors := []extract.Extractor{
		extract.NewStructured(docsource.NewPDFTables()),
		extract.NewRawText(textSource),
		extract.NewVisual(docsource.NewPDFPages(), visionClient),
	}

	parser := pipeline.New(extractors, validate.New(rules), pipeline.Options{
		Timeout:           time.Duration(cfg.Pipeline.TimeoutSecs) * time.Second,
		VisionEnhancement: cfg.Pipeline.VisionEnhancement,
	})

	e := &env{Parser: parser}
	if cfg.Store.Path != "" {
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		e.Store = st
		e.Parser = parser.WithSink(st)
	}

	return e, nil
}
