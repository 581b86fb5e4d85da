package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quantumdaily/internal/config"
	"quantumdaily/internal/domain"
)

func TestSummarizeParsesStrictJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("unexpected model: %v", req["model"])
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":
			"{\"plain_summary\":\"Two vendors signed a deal.\",\"tldr_bullets\":[\"deal signed\",\"rollout next year\"]}"
		}}]}`))
	}))
	defer server.Close()

	s := NewSummarizer(config.OpenAIConfig{
		Endpoint: server.URL,
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	})

	summary, err := s.Summarize(context.Background(), domain.Item{
		Title:   "Deal",
		URL:     "https://example.com/deal",
		Content: "Long article body.",
	})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	if summary.Plain != "Two vendors signed a deal." {
		t.Fatalf("unexpected summary: %q", summary.Plain)
	}
	if len(summary.Bullets) != 2 {
		t.Fatalf("expected 2 bullets, got %v", summary.Bullets)
	}
}

func TestSummarizeAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	s := NewSummarizer(config.OpenAIConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})

	if _, err := s.Summarize(context.Background(), domain.Item{Title: "x"}); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestSummarizeMisconfigured(t *testing.T) {
	t.Parallel()

	s := NewSummarizer(config.OpenAIConfig{})

	if s.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	if _, err := s.Summarize(context.Background(), domain.Item{}); err == nil {
		t.Fatalf("expected error from unconfigured client")
	}
}

func TestFallbackSummaryTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 500)
	summary := FallbackSummary(domain.Item{Content: long})

	if len(summary.Plain) != 280 {
		t.Fatalf("expected 280 chars, got %d", len(summary.Plain))
	}
}

func TestFallbackSummaryUsesTitleWhenNoContent(t *testing.T) {
	t.Parallel()

	summary := FallbackSummary(domain.Item{Title: "just a title"})

	if summary.Plain != "just a title" {
		t.Fatalf("unexpected fallback: %q", summary.Plain)
	}
}
