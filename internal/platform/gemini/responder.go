package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/service"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = time.Second
)

// contentGenerator is the slice of *genai.Models the responder calls.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Responder implements service.Assistant using a Gemini model.
type Responder struct {
	models     contentGenerator
	model      string
	prompt     *template.Template
	fallback   service.Assistant
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// Option customizes a Responder.
type Option func(*Responder)

// WithRetryPolicy overrides how often and how patiently failed calls are retried.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(r *Responder) {
		if maxRetries >= 0 {
			r.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			r.baseDelay = baseDelay
		}
	}
}

// WithFallback answers with fallback whenever the model fails.
func WithFallback(fallback service.Assistant) Option {
	return func(r *Responder) {
		r.fallback = fallback
	}
}

// NewResponder creates a Responder talking to the Gemini API.
func NewResponder(ctx context.Context, cfg config.AssistantConfig, logger *slog.Logger, opts ...Option) (*Responder, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newResponder(client.Models, cfg.ModelName, logger, opts...)
}

func newResponder(models contentGenerator, model string, log *slog.Logger, opts ...Option) (*Responder, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	prompt, err := parsePromptTemplate(defaultPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	r := &Responder{
		models:     models,
		model:      model,
		prompt:     prompt,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		logger:     log.With(slog.String("component", "gemini_responder")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Respond implements service.Assistant.
func (r *Responder) Respond(ctx context.Context, history []*domain.ChatMessage, message string) (string, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	answer, err := r.generate(ctx, history, message)
	if err == nil {
		return answer, nil
	}
	if r.fallback == nil || ctx.Err() != nil {
		return "", err
	}

	log.WarnContext(ctx, "gemini unavailable, using fallback responder", "error", err)
	return r.fallback.Respond(ctx, history, message)
}

func (r *Responder) generate(ctx context.Context, history []*domain.ChatMessage, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	prompt, err := buildPrompt(r.prompt, history, message)
	if err != nil {
		return "", err
	}
	return r.callWithRetry(ctx, prompt)
}

// callWithRetry retries transient errors with exponential backoff:
// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5)).
// Blocked or empty answers are returned immediately.
func (r *Responder) callWithRetry(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	for attempt := 0; ; attempt++ {
		text, err := r.call(ctx, prompt)
		if err == nil {
			log.DebugContext(ctx, "gemini call succeeded", "attempt", attempt+1)
			return text, nil
		}

		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			log.WarnContext(ctx, "permanent gemini error, not retrying", "error", err)
			return "", err
		}

		log.ErrorContext(ctx, "gemini call failed", "attempt", attempt+1, "error", err)
		if attempt >= r.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, r.maxRetries, err)
		}

		backoff := float64(r.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

func (r *Responder) call(ctx context.Context, prompt string) (string, error) {
	resp, err := r.models.GenerateContent(ctx, r.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", ErrInvalidResponse)
	}
	return text, nil
}

var _ service.Assistant = (*Responder)(nil)
