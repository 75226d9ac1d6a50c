// Package openai talks to an OpenAI-compatible chat completions API.
// It backs both the match analysis and the vision OCR paths.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/skillgap/analyzer/internal/core/domain"
	"github.com/skillgap/analyzer/internal/core/ports"
	"github.com/skillgap/analyzer/internal/infrastructure/resilience"
)

const (
	analysisTemperature = 0.3
	strictTemperature   = 0.0

	// Output cap on the strict retry. A tighter cap reduces the
	// chance of a second truncated response.
	strictMaxTokens = 2000
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	executor    *resilience.Executor
	logger      *slog.Logger
}

func NewClient(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Client {
	if cfg.Temperature == 0 {
		cfg.Temperature = analysisTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		executor:    executor,
		logger:      logger,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends a chat completion request. When ForceJSON is set the
// request asks for JSON mode; providers that reject response_format
// get one retry without it.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if !c.Configured() {
		return "", domain.Failf(domain.ErrAPI, "language model API key is not configured")
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.ForceJSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	content, err := c.chat(ctx, payload, "completion")
	if err != nil && req.ForceJSON && isBadRequest(err) {
		c.logger.Info("response_format_rejected", slog.String("model", c.model))
		payload.ResponseFormat = nil
		content, err = c.chat(ctx, payload, "completion")
	}
	if err != nil {
		return "", mapAPIError("completion", err)
	}
	return content, nil
}

// Analyze runs the structured resume-to-job analysis. A response that
// fails to parse triggers exactly one strict retry at temperature
// zero before the error surfaces.
func (c *Client) Analyze(ctx context.Context, resumeText, jobDescription string) (*domain.MatchReport, error) {
	userPrompt := analysisUserPrompt(resumeText, jobDescription)

	content, err := c.Complete(ctx, ports.CompletionRequest{
		System:      analysisSystemPrompt,
		User:        userPrompt,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ForceJSON:   true,
	})
	if err != nil {
		return nil, err
	}

	payload, perr := parsePayload(content)
	if perr != nil {
		c.logger.Warn("analysis_response_unparseable",
			slog.Any("error", perr),
			slog.Int("response_chars", len(content)))

		content, err = c.Complete(ctx, ports.CompletionRequest{
			System:      analysisSystemPrompt,
			User:        userPrompt + strictRetrySuffix,
			Temperature: strictTemperature,
			MaxTokens:   min(c.maxTokens, strictMaxTokens),
			ForceJSON:   true,
		})
		if err != nil {
			return nil, err
		}
		payload, perr = parsePayload(content)
		if perr != nil {
			return nil, perr
		}
	}

	return domain.ReportFromPayload(payload)
}

func (c *Client) chat(ctx context.Context, payload chatRequest, operation string) (string, error) {
	var response chatResponse
	err := c.executor.Do(ctx, "openai", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", payload, &response, operation)
	}, classifyUpstreamError)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", domain.Failf(domain.ErrAPI, "model returned no choices")
	}
	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", domain.Failf(domain.ErrAPI, "model returned an empty response")
	}
	return content, nil
}

func isBadRequest(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest
}
