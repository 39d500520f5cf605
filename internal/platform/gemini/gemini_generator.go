// Package gemini implements the generation.Generator interface against
// the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/mediqa-api/internal/config"
	"github.com/phrazzld/mediqa-api/internal/generation"
)

// answerPrompt instructs the model to stay inside the supplied context.
const answerPrompt = `You are a clinical reference assistant. Answer the question using only the reference material below. If the material does not contain the answer, say that the reference does not cover it. Be concise.

Reference material:
%s

Question: %s`

// noContextPrompt is used when retrieval found nothing relevant.
const noContextPrompt = `You are a clinical reference assistant. The reference material contains nothing relevant to the question below. Tell the user the reference does not cover their question and suggest they rephrase or consult the full document.

Question: %s`

// GeminiGenerator implements generation.Generator using the Gemini API.
type GeminiGenerator struct {
	client     *genai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Ensure GeminiGenerator implements generation.Generator interface
var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator from the LLM configuration.
func NewGeminiGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	log *slog.Logger,
) (*GeminiGenerator, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GeminiAPIKey cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: ModelName cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	retryDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}

	return &GeminiGenerator{
		client:     client,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     log.With(slog.String("component", "gemini_generator")),
	}, nil
}

// GenerateAnswer implements generation.Generator.GenerateAnswer.
func (g *GeminiGenerator) GenerateAnswer(
	ctx context.Context,
	query, documentContext string,
) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", generation.ErrEmptyQuery
	}

	var prompt string
	if documentContext == "" {
		prompt = fmt.Sprintf(noContextPrompt, query)
	} else {
		prompt = fmt.Sprintf(answerPrompt, documentContext, query)
	}

	answer, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	return answer, nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// linear backoff. Permanent errors (safety blocks, malformed responses)
// return immediately.
func (g *GeminiGenerator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * g.retryDelay):
			}
		}

		answer, err := g.call(ctx, prompt)
		if err == nil {
			return answer, nil
		}

		g.logger.Warn("gemini call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, lastErr)
}

func (g *GeminiGenerator) call(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty answer", generation.ErrInvalidResponse)
	}

	return text, nil
}
