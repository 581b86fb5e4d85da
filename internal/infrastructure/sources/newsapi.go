package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"quantumdaily/internal/domain"
)

const defaultNewsAPIBaseURL = "https://newsapi.org"

// NewsAPIProvider queries the NewsAPI /v2/everything endpoint. Only
// registered when an API key is configured.
type NewsAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsAPIProvider(apiKey string) *NewsAPIProvider {
	return &NewsAPIProvider{
		apiKey:  apiKey,
		baseURL: defaultNewsAPIBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *NewsAPIProvider) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Articles []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (n *NewsAPIProvider) Fetch(ctx context.Context, topic string, since time.Time, maxItems int) ([]domain.Item, error) {
	pageSize := maxItems
	if pageSize > 100 {
		pageSize = 100
	}

	params := url.Values{}
	params.Set("q", topic)
	params.Set("from", since.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		n.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request newsapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned %s", resp.Status)
	}

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	items := make([]domain.Item, 0, len(body.Articles))
	for _, a := range body.Articles {
		var published *time.Time
		if a.PublishedAt != "" {
			if parsed, err := time.Parse("2006-01-02T15:04:05Z", a.PublishedAt); err == nil {
				published = &parsed
			}
		}
		source := a.Source.Name
		if source == "" {
			source = "NewsAPI"
		}
		items = append(items, domain.Item{
			URL:         a.URL,
			Title:       a.Title,
			Content:     a.Description,
			PublishedAt: published,
			Source:      source,
		})
	}

	return capItems(Dedupe(items), maxItems), nil
}
