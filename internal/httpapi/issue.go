package httpapi

import (
	"net/http"

	"quantumdaily/internal/infrastructure/render"
)

func (s *Server) handleIssueHTML(w http.ResponseWriter, r *http.Request) {
	issue, err := s.issueForRequest(r)
	if err != nil {
		s.logger.Error("issue build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build issue")
		return
	}

	html, err := render.IssueHTML(issue)
	if err != nil {
		s.logger.Error("issue render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not render issue")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleIssuePDF(w http.ResponseWriter, r *http.Request) {
	issue, err := s.issueForRequest(r)
	if err != nil {
		s.logger.Error("issue build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build issue")
		return
	}

	pdf, err := render.IssuePDF(issue)
	if err != nil {
		s.logger.Error("issue pdf render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not render issue")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="issue-`+issue.Date+`.pdf"`)
	_, _ = w.Write(pdf)
}
