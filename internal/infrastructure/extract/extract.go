package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"quantumdaily/internal/ports"
)

const userAgent = "QuantumDailyBot/1.0 (+https://example.com)"

// Client fetches article pages and extracts their main text. Readability
// first, a tag-stripping fallback second, raw body as a last resort.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Extractor = (*Client)(nil)

// New wires an HTTP client; a nil client gets a 15s-timeout default.
func New(client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: client, logger: logger}
}

// Extract returns the page's main text and a title guess.
func (c *Client) Extract(ctx context.Context, pageURL string) (string, string, error) {
	html, err := c.fetch(ctx, pageURL)
	if err != nil {
		return "", "", err
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}

	if article, rErr := readability.FromReader(strings.NewReader(html), parsed); rErr == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text, article.Title, nil
		}
	} else if c.logger != nil {
		c.logger.Debug("readability failed", "url", pageURL, "error", rErr)
	}

	if text, title, ok := stripTags(html); ok {
		return text, title, nil
	}

	return html, "", nil
}

func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(body), nil
}

// stripTags drops script/style/noscript nodes and collapses the remaining
// body text to single spaces.
func stripTags(html string) (string, string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		return "", title, false
	}
	return text, title, true
}
