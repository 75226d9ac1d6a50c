// Package bootstrap wires infrastructure into the core services.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpadapter "github.com/skillgap/analyzer/internal/adapters/http"
	"github.com/skillgap/analyzer/internal/config"
	"github.com/skillgap/analyzer/internal/core/ports"
	"github.com/skillgap/analyzer/internal/core/usecase"
	"github.com/skillgap/analyzer/internal/infrastructure/auth/firebase"
	"github.com/skillgap/analyzer/internal/infrastructure/extractor/docxtext"
	"github.com/skillgap/analyzer/internal/infrastructure/extractor/imagetext"
	"github.com/skillgap/analyzer/internal/infrastructure/extractor/pdftext"
	"github.com/skillgap/analyzer/internal/infrastructure/llm/openai"
	"github.com/skillgap/analyzer/internal/infrastructure/ocr/tesseract"
	"github.com/skillgap/analyzer/internal/infrastructure/resilience"
	"github.com/skillgap/analyzer/internal/infrastructure/sanitize"
	"github.com/skillgap/analyzer/internal/observability/metrics"
)

const serviceName = "skillgap-analyzer"

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	Extraction ports.DocumentTextService
	Analysis   ports.MatchAnalysisService
	Verifier   ports.TokenVerifier
	Limiter    *httpadapter.RateLimiter
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	verifier, err := firebase.NewVerifier(ctx, firebase.Config{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredentialsFile,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("init firebase verifier: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy(), logger)
	llmClient := openai.NewClient(openai.Config{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Timeout:     time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
	}, executor, logger)

	vision := openai.NewVision(llmClient)
	localOCR := tesseract.New(cfg.TesseractBinary, cfg.TesseractLanguage)

	extraction := usecase.NewTextExtraction(
		pdftext.New(),
		docxtext.New(),
		imagetext.New(vision, localOCR, logger),
		sanitize.New(),
		logger,
	)
	analysis := usecase.NewMatchAnalysis(extraction, llmClient, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewHTTPServerMetrics(serviceName),

		Extraction: extraction,
		Analysis:   analysis,
		Verifier:   verifier,
		Limiter: httpadapter.NewRateLimiter(httpadapter.RateLimitConfig{
			Requests: cfg.RateLimitRequests,
			Window:   time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		}),
	}, nil
}

func (a *App) Router() *httpadapter.Router {
	return httpadapter.NewRouter(
		a.Extraction,
		a.Analysis,
		a.Verifier,
		a.Limiter,
		a.Metrics,
		a.Logger,
		serviceName,
	)
}
