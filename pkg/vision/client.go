// Package vision wraps the Anthropic API as the visual inference service:
// given a rendered document page and a field schema, it returns best-effort
// field guesses as validated JSON.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrServiceUnavailable means the inference service could not be reached
// (network or auth failure).
var ErrServiceUnavailable = eris.New("vision: service unavailable")

// ErrServiceTimeout means the inference call exceeded its deadline.
var ErrServiceTimeout = eris.New("vision: service timeout")

// ErrInvalidResponse means the service answered but the payload did not
// match the expected schema.
var ErrInvalidResponse = eris.New("vision: invalid response")

// DocumentKind selects the prompt and response schema.
type DocumentKind string

const (
	KindPaystub DocumentKind = "paystub"
	KindW2      DocumentKind = "w2"
)

// AnalyzeRequest asks for field guesses from one page image.
type AnalyzeRequest struct {
	Kind      DocumentKind
	Image     []byte // JPEG or PNG bytes
	MediaType string // "image/jpeg" or "image/png"; defaults to jpeg
	// PriorJSON is the preliminary data from earlier extraction methods,
	// injected into the prompt so the model can verify and complete it.
	PriorJSON []byte
}

// Analysis is a schema-validated field-value mapping from the service.
type Analysis struct {
	Fields  map[string]any
	RawJSON []byte
	Usage   TokenUsage
}

// TokenUsage tracks token consumption for cost attribution.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Client defines the visual inference operations used by the pipeline.
type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error)
}

// Options configure the SDK-backed client.
type Options struct {
	Model     string
	MaxTokens int64
	// Limiter, when set, gates calls against a shared rate budget.
	Limiter *rate.Limiter
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
	opts   Options
}

// NewClient creates a vision client backed by the SDK.
func NewClient(apiKey string, opts Options) Client {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 3000
	}
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		opts:   opts,
	}
}

func (c *sdkClient) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	if len(req.Image) == 0 {
		return nil, eris.Wrap(ErrInvalidResponse, "vision: empty page image")
	}

	if c.opts.Limiter != nil {
		if err := c.opts.Limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(ErrServiceTimeout, err.Error())
		}
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	prompt := PromptFor(req.Kind, req.PriorJSON)
	encoded := base64.StdEncoding.EncodeToString(req.Image)

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.opts.Model),
		MaxTokens: c.opts.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewTextBlock(prompt),
				sdk.NewImageBlockBase64(mediaType, encoded),
			),
		},
		Temperature: sdk.Float(0.1),
	})
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	fields, raw, err := ParseResponse(req.Kind, text.String())
	if err != nil {
		return nil, err
	}

	usage := TokenUsage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	zap.L().Debug("vision: analysis complete",
		zap.String("kind", string(req.Kind)),
		zap.Int("fields", len(fields)),
		zap.Int64("input_tokens", usage.InputTokens),
		zap.Int64("output_tokens", usage.OutputTokens),
	)

	return &Analysis{Fields: fields, RawJSON: raw, Usage: usage}, nil
}

// classifyTransportError maps SDK/network failures onto the service error
// taxonomy so the adapter can report Unavailable vs Failed.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return eris.Wrap(ErrServiceTimeout, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return eris.Wrap(ErrServiceTimeout, err.Error())
		}
		return eris.Wrap(ErrServiceUnavailable, err.Error())
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"connection refused", "no such host", "401", "403", "429", "500", "502", "503", "529"} {
		if strings.Contains(msg, p) {
			return eris.Wrap(ErrServiceUnavailable, err.Error())
		}
	}

	return eris.Wrap(err, "vision: create message")
}
