package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skillgap/analyzer/internal/core/domain"
	"github.com/skillgap/analyzer/internal/core/ports"
	"github.com/skillgap/analyzer/internal/infrastructure/resilience"
)

type recordedRequest struct {
	payload chatRequest
	raw     map[string]any
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o",
	}, resilience.NewExecutor(resilience.Policy{
		RetryMaxAttempts: 1,
		BreakerEnabled:   false,
	}, quietTestLogger()), quietTestLogger())
	return client, server
}

func quietTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func decodeRequest(t *testing.T, r *http.Request) recordedRequest {
	t.Helper()

	var raw map[string]any
	var payload chatRequest
	body := new(bytes.Buffer)
	if _, err := body.ReadFrom(r.Body); err != nil {
		t.Fatalf("read request body: %v", err)
	}
	if err := json.Unmarshal(body.Bytes(), &raw); err != nil {
		t.Fatalf("decode raw request: %v", err)
	}
	if err := json.Unmarshal(body.Bytes(), &payload); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return recordedRequest{payload: payload, raw: raw}
}

func chatResponseBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
	})
	return string(body)
}

func validReportJSON() string {
	return `{
		"match_score": 78,
		"executive_summary": "Strong backend candidate with minor gaps.",
		"strengths": [{"point": "Go expertise", "evidence": "8 years", "impact": "core stack"}],
		"critical_gaps": [{"gap": "Kubernetes", "importance": "medium", "recommendation": "take a course"}],
		"final_recommendation": "GOOD MATCH",
		"detailed_narrative": ["Paragraph one.", "Paragraph two.", "Paragraph three."]
	}`
}

func TestAnalyzeHappyPath(t *testing.T) {
	var requests []recordedRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		requests = append(requests, decodeRequest(t, r))
		fmt.Fprint(w, chatResponseBody(validReportJSON()))
	})

	report, err := client.Analyze(context.Background(), "resume text", "job description text")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.MatchScore != 78 {
		t.Errorf("MatchScore = %v, want 78", report.MatchScore)
	}
	if report.FinalRecommendation != "GOOD MATCH" {
		t.Errorf("FinalRecommendation = %q", report.FinalRecommendation)
	}

	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	req := requests[0]
	if req.payload.ResponseFormat == nil || req.payload.ResponseFormat.Type != "json_object" {
		t.Error("request missing json_object response format")
	}
	if len(req.payload.Messages) != 2 || req.payload.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v, want system then user", req.payload.Messages)
	}
	user, _ := req.payload.Messages[1].Content.(string)
	if !strings.Contains(user, "JOB DESCRIPTION:\njob description text") {
		t.Errorf("user prompt missing job description: %q", user)
	}
	if !strings.Contains(user, "CANDIDATE CV:\nresume text") {
		t.Errorf("user prompt missing resume text: %q", user)
	}
}

func TestAnalyzeStrictRetryOnUnparseableResponse(t *testing.T) {
	var requests []recordedRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, decodeRequest(t, r))
		if len(requests) == 1 {
			fmt.Fprint(w, chatResponseBody("I am sorry, I cannot produce JSON today."))
			return
		}
		fmt.Fprint(w, chatResponseBody(validReportJSON()))
	})

	report, err := client.Analyze(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.MatchScore != 78 {
		t.Errorf("MatchScore = %v, want 78", report.MatchScore)
	}

	if len(requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(requests))
	}
	retry := requests[1]
	user, _ := retry.payload.Messages[1].Content.(string)
	if !strings.Contains(user, "Return STRICT valid JSON only") {
		t.Error("retry prompt missing strict instructions")
	}
	if retry.payload.Temperature != 0 {
		t.Errorf("retry temperature = %v, want 0", retry.payload.Temperature)
	}
	if retry.payload.MaxTokens != strictMaxTokens {
		t.Errorf("retry max_tokens = %d, want %d", retry.payload.MaxTokens, strictMaxTokens)
	}
}

func TestAnalyzeStrictRetryStillUnparseable(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, chatResponseBody("still not json"))
	})

	_, err := client.Analyze(context.Background(), "resume", "jd")
	if !domain.IsKind(err, domain.ErrTruncatedJSON) {
		t.Fatalf("err = %v, want ErrTruncatedJSON", err)
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2", calls)
	}
}

func TestCompleteResponseFormatRejectedFallback(t *testing.T) {
	var requests []recordedRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		requests = append(requests, req)
		if _, hasFormat := req.raw["response_format"]; hasFormat {
			http.Error(w, `{"error": "response_format is not supported"}`, http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, chatResponseBody(`{"ok": true}`))
	})

	content, err := client.Complete(context.Background(), ports.CompletionRequest{
		User:      "say something",
		ForceJSON: true,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != `{"ok": true}` {
		t.Errorf("content = %q", content)
	}
	if len(requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(requests))
	}
	if _, hasFormat := requests[1].raw["response_format"]; hasFormat {
		t.Error("fallback request still carries response_format")
	}
}

func TestCompleteMapsAuthError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), ports.CompletionRequest{User: "hi"})
	if !domain.IsKind(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestCompleteMapsRateLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "slow down"}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), ports.CompletionRequest{User: "hi"})
	if !domain.IsKind(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:0", Model: "gpt-4o"},
		resilience.NewExecutor(resilience.Policy{BreakerEnabled: false}, quietTestLogger()),
		quietTestLogger())

	_, err := client.Complete(context.Background(), ports.CompletionRequest{User: "hi"})
	if !domain.IsKind(err, domain.ErrAPI) {
		t.Fatalf("err = %v, want ErrAPI", err)
	}
}

func TestVisionRecognize(t *testing.T) {
	var requests []recordedRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, decodeRequest(t, r))
		fmt.Fprint(w, chatResponseBody("  Extracted resume text.  "))
	})

	text, err := NewVision(client).Recognize(context.Background(), []byte{0xff, 0xd8, 0xff}, domain.KindResume, false)
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if text != "Extracted resume text." {
		t.Errorf("text = %q, want trimmed content", text)
	}

	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	body, _ := json.Marshal(requests[0].raw)
	if !strings.Contains(string(body), "data:image/jpeg;base64,") {
		t.Error("request missing image data URL")
	}
	if !strings.Contains(string(body), "candidate's CV or resume") {
		t.Error("request missing resume prompt")
	}
	if requests[0].payload.Temperature != visionTemperature {
		t.Errorf("temperature = %v, want %v", requests[0].payload.Temperature, visionTemperature)
	}
}

func TestVisionIntensifiedPrompt(t *testing.T) {
	var body string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		body = buf.String()
		fmt.Fprint(w, chatResponseBody("text"))
	})

	_, err := NewVision(client).Recognize(context.Background(), []byte{1}, domain.KindJobDescription, true)
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if !strings.Contains(body, "The image definitely contains text") {
		t.Error("intensified prompt suffix missing")
	}
	if !strings.Contains(body, "job description or job posting") {
		t.Error("job description prompt missing")
	}
}
