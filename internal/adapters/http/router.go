// Package httpadapter exposes the extraction and analysis services
// over a small JSON HTTP surface.
package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/skillgap/analyzer/internal/core/domain"
	"github.com/skillgap/analyzer/internal/core/ports"
	"github.com/skillgap/analyzer/internal/observability/metrics"
)

// maxRequestBytes caps the whole multipart body: one document plus
// form fields and multipart framing.
const maxRequestBytes = domain.MaxUploadSize + 256*1024

type Router struct {
	extraction ports.DocumentTextService
	analysis   ports.MatchAnalysisService
	verifier   ports.TokenVerifier
	limiter    *RateLimiter
	metrics    *metrics.HTTPServerMetrics
	logger     *slog.Logger
	service    string
}

func NewRouter(
	extraction ports.DocumentTextService,
	analysis ports.MatchAnalysisService,
	verifier ports.TokenVerifier,
	limiter *RateLimiter,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	service string,
) *Router {
	return &Router{
		extraction: extraction,
		analysis:   analysis,
		verifier:   verifier,
		limiter:    limiter,
		metrics:    m,
		logger:     logger,
		service:    service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/extract", rt.requireAuth(http.HandlerFunc(rt.extractText)))
	mux.Handle("/v1/analyze", rt.requireAuth(rt.rateLimitMiddleware(http.HandlerFunc(rt.analyze))))

	handler := rt.accessLogMiddleware(mux)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) extractText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	doc, ok := rt.readUpload(w, r, "file", domain.KindJobDescription)
	if !ok {
		return
	}

	result, err := rt.extraction.Extract(r.Context(), doc)
	if err != nil {
		rt.recordExtraction(doc.Filename, "failure", 0)
		rt.writeError(w, r, err)
		return
	}
	rt.recordExtraction(doc.Filename, "success", result.CharCount())

	response := map[string]any{
		"extracted_text": result.Text,
		"char_count":     result.CharCount(),
		"filename":       result.Filename,
	}
	if result.Warning != "" {
		response["warning"] = result.Warning
	}
	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	doc, ok := rt.readUpload(w, r, "cv_file", domain.KindResume)
	if !ok {
		return
	}
	jobDescription := r.FormValue("job_description")

	start := time.Now()
	report, err := rt.analysis.Analyze(r.Context(), doc, jobDescription)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordAnalysis(rt.service, "failure", 0, time.Since(start))
		}
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnalysis(rt.service, "success", report.MatchScore, time.Since(start))
	}

	identity, _ := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     identity,
		"analysis": report,
	})
}

// readUpload pulls one multipart file into memory. Returns ok=false
// after writing the error response itself.
func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request, field string, kind domain.DocumentKind) (*domain.UploadedDocument, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	file, header, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, errorBody("file is too large. Maximum allowed size is 2MB"))
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field '"+field+"' is required"))
		return nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("could not read the uploaded file"))
		return nil, false
	}

	return &domain.UploadedDocument{
		Content:  content,
		Filename: header.Filename,
		Size:     header.Size,
		Kind:     kind,
	}, true
}

func (rt *Router) recordExtraction(filename, outcome string, chars int) {
	if rt.metrics == nil {
		return
	}
	category := "unknown"
	if c, err := domain.Classify(filename); err == nil {
		category = string(c)
	}
	rt.metrics.RecordExtraction(rt.service, category, outcome, chars)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed",
			slog.String("request_id", requestIDFromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		message = "analysis failed due to an internal error. Please try again later"
	}
	writeJSON(w, status, errorBody(message))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
