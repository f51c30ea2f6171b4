// Package ai wraps the language-model calls behind outfit generation, garment
// image analysis and style advice.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"drobeo/internal/observability"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	defaultModel       = "gpt-4o"
	defaultVisionModel = "gpt-4o"
	defaultTimeout     = 30 * time.Second
	defaultRate        = 2.0
	defaultBurst       = 4
	defaultMaxTokens   = 1500
)

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("ai: no API key configured")

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("ai: empty response")

// Request is one model call.
type Request struct {
	// Operation labels metrics and spans (generate_outfits, analyze_image, style_advice).
	Operation   string
	System      string
	Prompt      string
	Image       []byte
	ImageMIME   string
	JSON        bool
	MaxTokens   int
	Temperature float64
}

// Completer sends one request to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config configures Client.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	VisionModel       string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client is the langchaingo-backed Completer.
type Client struct {
	text    llms.Model
	vision  llms.Model
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient builds a Client. With an empty API key it returns a client whose
// calls fail with ErrNotConfigured.
func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRate
	}
	c := &Client{
		limiter: rate.NewLimiter(rate.Limit(rps), defaultBurst),
		timeout: timeout,
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}

	text, err := openai.New(openAIOptions(cfg, model)...)
	if err != nil {
		return nil, fmt.Errorf("create text model: %w", err)
	}
	c.text = text

	if visionModel == model {
		c.vision = text
		return c, nil
	}
	vision, err := openai.New(openAIOptions(cfg, visionModel)...)
	if err != nil {
		return nil, fmt.Errorf("create vision model: %w", err)
	}
	c.vision = vision
	return c, nil
}

func openAIOptions(cfg Config, model string) []openai.Option {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

// Complete waits for the client-side rate limiter, then calls the model
// within the configured timeout.
func (c *Client) Complete(ctx context.Context, req Request) (text string, err error) {
	ctx, span := observability.GetTraceLayer().TraceProviderCall(ctx, "openai", req.Operation)
	done := observability.TrackAI(req.Operation)
	defer func() {
		done(err)
		observability.EndSpan(span, err)
	}()

	model := c.text
	if len(req.Image) > 0 {
		model = c.vision
	}
	if model == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := model.GenerateContent(ctx, buildMessages(req), callOptions(req)...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", req.Operation, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	span.SetAttributes(attribute.Int("ai.response_chars", len(resp.Choices[0].Content)))
	return resp.Choices[0].Content, nil
}

func buildMessages(req Request) []llms.MessageContent {
	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	parts := []llms.ContentPart{llms.TextPart(req.Prompt)}
	if len(req.Image) > 0 {
		mimeType := req.ImageMIME
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, llms.BinaryPart(mimeType, req.Image))
	}
	return append(messages, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})
}

func callOptions(req Request) []llms.CallOption {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	opts := []llms.CallOption{llms.WithMaxTokens(maxTokens)}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// stripCodeFence removes a surrounding ```json fence some models add even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
