package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"quantumdaily/internal/domain"
	"quantumdaily/internal/usecase"
)

// Server exposes the reader-facing API: feedback, preferences, the daily
// issue in three formats, and a few admin operations.
type Server struct {
	daily       *usecase.Daily
	feedback    *usecase.Feedback
	prefs       *usecase.Preferences
	adminAPIKey string
	logger      *slog.Logger
	now         func() time.Time

	httpServer *http.Server
}

// NewServer wires the handlers. An empty adminAPIKey disables the admin
// endpoints entirely.
func NewServer(addr string, daily *usecase.Daily, feedback *usecase.Feedback, prefs *usecase.Preferences, adminAPIKey string, logger *slog.Logger) *Server {
	s := &Server{
		daily:       daily,
		feedback:    feedback,
		prefs:       prefs,
		adminAPIKey: adminAPIKey,
		logger:      logger,
		now:         time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /feedback", s.handleFeedback)
	mux.HandleFunc("GET /prefs", s.handleGetPrefs)
	mux.HandleFunc("POST /prefs", s.handleUpdatePrefs)
	mux.HandleFunc("GET /issue/today", s.handleIssueJSON)
	mux.HandleFunc("GET /issue/today.html", s.handleIssueHTML)
	mux.HandleFunc("GET /issue/today.pdf", s.handleIssuePDF)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("POST /admin/email/test", s.handleEmailTest)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type feedbackRequest struct {
	ArticleID int64  `json:"article_id"`
	Signal    string `json:"signal"`
	Aspect    string `json:"aspect"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !validSignal(req.Signal) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown signal %q", req.Signal))
		return
	}
	if req.Aspect == "" {
		writeError(w, http.StatusBadRequest, "aspect is required")
		return
	}

	prefs, err := s.feedback.Submit(r.Context(), []domain.FeedbackEvent{{
		ArticleID: req.ArticleID,
		Signal:    req.Signal,
		Aspect:    req.Aspect,
		CreatedAt: s.now().UTC(),
	}})
	if err != nil {
		s.logger.Error("feedback submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record feedback")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.prefs.Get(r.Context())
	if err != nil {
		s.logger.Error("load preferences failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type prefsRequest struct {
	IndustryWeight *float64 `json:"industry_weight"`
	TechWeight     *float64 `json:"tech_weight"`
	Email          *string  `json:"email"`
	SendHourLocal  *int     `json:"send_hour_local"`
}

func (s *Server) handleUpdatePrefs(w http.ResponseWriter, r *http.Request) {
	var req prefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	prefs, err := s.prefs.Update(r.Context(), usecase.PreferenceUpdate{
		IndustryWeight: req.IndustryWeight,
		TechWeight:     req.TechWeight,
		Email:          req.Email,
		SendHourLocal:  req.SendHourLocal,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) issueForRequest(r *http.Request) (domain.DailyIssue, error) {
	regen := r.URL.Query().Get("regen") == "1"
	return s.daily.IssueFor(r.Context(), s.now(), regen)
}

func (s *Server) handleIssueJSON(w http.ResponseWriter, r *http.Request) {
	issue, err := s.issueForRequest(r)
	if err != nil {
		s.logger.Error("issue build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build issue")
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	issue, err := s.daily.Run(r.Context(), s.now())
	if err != nil {
		s.logger.Error("manual run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "run failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  issue.Date,
		"items": len(issue.Items),
	})
}

func (s *Server) handleEmailTest(w http.ResponseWriter, r *http.Request) {
	// fail closed: no configured key means no admin surface
	if s.adminAPIKey == "" {
		writeError(w, http.StatusUnauthorized, "admin api disabled")
		return
	}
	key := r.Header.Get("X-API-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	issue, err := s.daily.Deliver(r.Context(), s.now())
	if err != nil {
		s.logger.Error("test email failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not send test email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  issue.Date,
		"items": len(issue.Items),
	})
}

func validSignal(signal string) bool {
	switch signal {
	case domain.SignalUp, domain.SignalDown, domain.SignalMore, domain.SignalLess:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(message)})
}
