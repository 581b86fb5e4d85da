package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"quantumdaily/internal/domain"
)

var issueTemplate = template.Must(template.New("issue").Funcs(template.FuncMap{
	"host":    hostOf,
	"pubdate": formatPublished,
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>Quantum Daily — {{.Date}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1" />
<style>
  body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif; margin: 24px; }
  header { margin-bottom: 20px; }
  .card { padding: 16px; margin: 12px 0; border: 1px solid #eee; border-radius: 12px; }
  .card h2 { margin: 0 0 6px 0; font-size: 1.1rem; }
  .card .meta { color: #666; font-size: 0.9rem; margin-bottom: 8px; }
  .card .summary { margin: 8px 0 0 0; line-height: 1.4; }
  .tldr { margin: 8px 0 0 18px; }
</style>
</head>
<body>
  <header><h1>Quantum Daily — {{.Date}}</h1></header>
{{range .Items}}  <article class="card">
    <h2><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a></h2>
    <div class="meta">{{.Category}} • {{if host .URL}}{{host .URL}}{{else}}{{.Source}}{{end}} • {{pubdate .PublishedAt}}</div>
    <p class="summary">{{if .PlainSummary}}{{.PlainSummary}}{{else}}{{.Summary}}{{end}}</p>
{{if .TLDRBullets}}    <ul class="tldr">{{range .TLDRBullets}}<li>{{.}}</li>{{end}}</ul>
{{end}}  </article>
{{else}}  <p>No items found.</p>
{{end}}</body>
</html>
`))

// IssueHTML renders the daily issue page; also used as the email body.
func IssueHTML(issue domain.DailyIssue) (string, error) {
	var b strings.Builder
	if err := issueTemplate.Execute(&b, issue); err != nil {
		return "", fmt.Errorf("render issue html: %w", err)
	}
	return b.String(), nil
}

// IssueText renders a plaintext body for clients that prefer it.
func IssueText(issue domain.DailyIssue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quantum Daily — %s\n\n", issue.Date)
	for _, it := range issue.Items {
		title := it.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&b, "- %s\n", title)
		fmt.Fprintf(&b, "  %s • %s • %s\n", it.Category, it.Source, formatPublished(it.PublishedAt))
		summary := it.PlainSummary
		if summary == "" {
			summary = it.Summary
		}
		if summary != "" {
			fmt.Fprintf(&b, "  %s\n", summary)
		}
		fmt.Fprintf(&b, "  %s\n\n", it.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

func formatPublished(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
