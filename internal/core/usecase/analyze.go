package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/skillgap/analyzer/internal/core/domain"
	"github.com/skillgap/analyzer/internal/core/ports"
)

const (
	minJobDescriptionLength = 100
	maxJobDescriptionLength = 10000

	// minResumeLength is the floor for usable resume text. Resumes
	// get a lower bar than job descriptions since OCR output from a
	// photographed resume can be sparse but still analyzable.
	minResumeLength = 50
)

// MatchAnalysis orchestrates a resume-to-job match: extract resume
// text, validate both inputs, then run the structured analysis.
type MatchAnalysis struct {
	extractor ports.DocumentTextService
	analyzer  ports.MatchAnalyzer
	logger    *slog.Logger
}

func NewMatchAnalysis(extractor ports.DocumentTextService, analyzer ports.MatchAnalyzer, logger *slog.Logger) *MatchAnalysis {
	return &MatchAnalysis{extractor: extractor, analyzer: analyzer, logger: logger}
}

func (s *MatchAnalysis) Analyze(ctx context.Context, resume *domain.UploadedDocument, jobDescription string) (*domain.MatchReport, error) {
	jd := strings.TrimSpace(jobDescription)
	switch {
	case jd == "":
		return nil, domain.Failf(domain.ErrBadRequest,
			"job description is required. Please paste or extract text first")
	case len(jd) < minJobDescriptionLength:
		return nil, domain.Failf(domain.ErrBadRequest,
			"job description is too short. Please provide more details")
	case len(jd) > maxJobDescriptionLength:
		return nil, domain.Failf(domain.ErrBadRequest,
			"job description exceeds maximum length of %d characters", maxJobDescriptionLength)
	}

	resume.Kind = domain.KindResume
	extracted, err := s.extractor.Extract(ctx, resume)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(extracted.Text)) < minResumeLength {
		return nil, domain.Failf(domain.ErrInsufficientText,
			"CV text is too short or empty. Please ensure the CV file contains readable text. If you uploaded an image, check that the text extraction worked properly")
	}

	s.logger.Info("resume_parsed",
		slog.String("filename", resume.Filename),
		slog.Int("chars", extracted.CharCount()))

	report, err := s.analyzer.Analyze(ctx, extracted.Text, jd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("analysis_complete",
		slog.String("filename", resume.Filename),
		slog.Float64("match_score", report.MatchScore),
		slog.String("recommendation", report.FinalRecommendation))
	return report, nil
}
