package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quantumdaily/internal/config"
	"quantumdaily/internal/domain"
	"quantumdaily/internal/ports"
)

const (
	maxPromptChars   = 9000
	fallbackMaxChars = 280
)

// Summarizer produces plain-English summaries via an OpenAI-compatible
// chat-completions API.
type Summarizer struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer builds a client from configuration.
func NewSummarizer(cfg config.OpenAIConfig) *Summarizer {
	return &Summarizer{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Configured reports whether the client can reach the API at all.
func (s *Summarizer) Configured() bool {
	return s != nil && s.apiKey != "" && s.endpoint != "" && s.model != ""
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type summaryPayload struct {
	PlainSummary string   `json:"plain_summary"`
	TLDRBullets  []string `json:"tldr_bullets"`
}

// Summarize asks the model for strict JSON with a plain summary and up to
// three TL;DR bullets.
func (s *Summarizer) Summarize(ctx context.Context, item domain.Item) (domain.Summary, error) {
	if !s.Configured() {
		return domain.Summary{}, fmt.Errorf("summarizer misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":           s.model,
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(s.systemPrompt)},
			{"role": "user", "content": buildUserPrompt(item)},
		},
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("marshal summarize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Summary{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Summary{}, fmt.Errorf("summarizer error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return domain.Summary{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.Summary{}, fmt.Errorf("summarizer returned no choices")
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &payload); err != nil {
		return domain.Summary{}, fmt.Errorf("decode summary json: %w", err)
	}

	return domain.Summary{
		Plain:   strings.TrimSpace(payload.PlainSummary),
		Bullets: payload.TLDRBullets,
	}, nil
}

// FallbackSummary is the no-LLM degradation: a truncated slice of the
// item's content, or its title when there is no content.
func FallbackSummary(item domain.Item) domain.Summary {
	text := item.Content
	if text == "" {
		text = item.Title
	}
	return domain.Summary{Plain: truncate(text, fallbackMaxChars)}
}

func buildUserPrompt(item domain.Item) string {
	return strings.TrimSpace(fmt.Sprintf(`
Summarize the article in 80-120 words of plain, non-jargon English.
Then provide up to 3 TL;DR bullets. Avoid hype; stick to facts stated in the text.
If claims are speculative, add one caveat bullet.

Return strict JSON with keys:
  - plain_summary: string
  - tldr_bullets: array of up to 3 strings

TITLE: %s
URL: %s
ARTICLE:
%s`, item.Title, item.URL, truncate(item.Content, maxPromptChars)))
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "Respond with valid JSON only."
	}
	return prompt
}

func truncate(s string, maxChars int) string {
	if len(s) > maxChars {
		return s[:maxChars]
	}
	return s
}
