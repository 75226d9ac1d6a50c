package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/skillgap/analyzer/internal/core/domain"
)

type fakeTextService struct {
	result domain.ExtractedText
	err    error
	gotDoc *domain.UploadedDocument
}

func (f *fakeTextService) Extract(_ context.Context, doc *domain.UploadedDocument) (domain.ExtractedText, error) {
	f.gotDoc = doc
	return f.result, f.err
}

type fakeAnalyzer struct {
	report  *domain.MatchReport
	err     error
	gotText string
	gotJD   string
	called  bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, resumeText, jobDescription string) (*domain.MatchReport, error) {
	f.called = true
	f.gotText = resumeText
	f.gotJD = jobDescription
	return f.report, f.err
}

func validJD() string {
	return strings.Repeat("We are hiring a Go engineer. ", 10)
}

func resumeUpload() *domain.UploadedDocument {
	return &domain.UploadedDocument{Content: []byte("pdf bytes"), Filename: "cv.pdf", Size: 9}
}

func TestAnalyzeHappyPath(t *testing.T) {
	extractor := &fakeTextService{result: domain.ExtractedText{
		Text:     strings.Repeat("Seasoned Go engineer. ", 20),
		Filename: "cv.pdf",
	}}
	analyzer := &fakeAnalyzer{report: &domain.MatchReport{MatchScore: 82, FinalRecommendation: "GOOD MATCH"}}
	service := NewMatchAnalysis(extractor, analyzer, discardLogger())

	report, err := service.Analyze(context.Background(), resumeUpload(), validJD())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.MatchScore != 82 {
		t.Errorf("MatchScore = %v, want 82", report.MatchScore)
	}
	if analyzer.gotText != extractor.result.Text {
		t.Error("analyzer did not receive extracted resume text")
	}
	if analyzer.gotJD != strings.TrimSpace(validJD()) {
		t.Error("analyzer did not receive trimmed job description")
	}
	if extractor.gotDoc.Kind != domain.KindResume {
		t.Errorf("resume Kind = %q, want %q", extractor.gotDoc.Kind, domain.KindResume)
	}
}

func TestAnalyzeJobDescriptionBounds(t *testing.T) {
	tests := []struct {
		name string
		jd   string
	}{
		{"empty", "   "},
		{"too short", "hire me"},
		{"too long", strings.Repeat("a", 10001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{}
			service := NewMatchAnalysis(&fakeTextService{}, analyzer, discardLogger())

			_, err := service.Analyze(context.Background(), resumeUpload(), tt.jd)
			if !domain.IsKind(err, domain.ErrBadRequest) {
				t.Fatalf("err = %v, want ErrBadRequest", err)
			}
			if analyzer.called {
				t.Error("analyzer must not run with an invalid job description")
			}
		})
	}
}

func TestAnalyzeBoundaryJobDescriptionLengths(t *testing.T) {
	extractor := &fakeTextService{result: domain.ExtractedText{Text: strings.Repeat("x", 100)}}
	analyzer := &fakeAnalyzer{report: &domain.MatchReport{MatchScore: 50}}
	service := NewMatchAnalysis(extractor, analyzer, discardLogger())

	if _, err := service.Analyze(context.Background(), resumeUpload(), strings.Repeat("a", 100)); err != nil {
		t.Errorf("100-char JD rejected: %v", err)
	}
	if _, err := service.Analyze(context.Background(), resumeUpload(), strings.Repeat("a", 10000)); err != nil {
		t.Errorf("10000-char JD rejected: %v", err)
	}
}

func TestAnalyzeShortResumeText(t *testing.T) {
	extractor := &fakeTextService{result: domain.ExtractedText{Text: "J. Doe"}}
	analyzer := &fakeAnalyzer{}
	service := NewMatchAnalysis(extractor, analyzer, discardLogger())

	_, err := service.Analyze(context.Background(), resumeUpload(), validJD())
	if !domain.IsKind(err, domain.ErrInsufficientText) {
		t.Fatalf("err = %v, want ErrInsufficientText", err)
	}
	if analyzer.called {
		t.Error("analyzer must not run with insufficient resume text")
	}
}

func TestAnalyzePropagatesExtractionError(t *testing.T) {
	extractor := &fakeTextService{err: domain.Failf(domain.ErrExtractionFailed, "failed to read PDF file")}
	service := NewMatchAnalysis(extractor, &fakeAnalyzer{}, discardLogger())

	_, err := service.Analyze(context.Background(), resumeUpload(), validJD())
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestAnalyzePropagatesAnalyzerError(t *testing.T) {
	extractor := &fakeTextService{result: domain.ExtractedText{Text: strings.Repeat("x", 100)}}
	analyzer := &fakeAnalyzer{err: domain.Failf(domain.ErrRateLimited, "LLM API rate limit exceeded")}
	service := NewMatchAnalysis(extractor, analyzer, discardLogger())

	_, err := service.Analyze(context.Background(), resumeUpload(), validJD())
	if !domain.IsKind(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}
