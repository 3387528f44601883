// Package httpserver exposes the analysis service over a JSON HTTP API.
package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

// Router holds the HTTP handlers for the analysis API.
type Router struct {
	service    *core.AnalysisService
	store      core.ResultStore
	classifier core.TextClassifier
	logger     *zap.Logger
}

// NewRouter builds the chi handler tree. store and classifier may be nil;
// the endpoints that need them report the feature as unavailable.
func NewRouter(service *core.AnalysisService, store core.ResultStore, classifier core.TextClassifier, logger *zap.Logger) http.Handler {
	r := &Router{service: service, store: store, classifier: classifier, logger: logger}
	mux := chi.NewRouter()

	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(r.requestLogger)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", r.wrap(r.handleHealth))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/stats", r.wrap(r.handleStats))
		rt.Get("/recent-threats", r.wrap(r.handleRecentThreats))
		rt.Post("/spam/check", r.wrap(r.handleSpamCheck))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusError carries an explicit HTTP status through the wrap error path.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &statusError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var se *statusError
		var pe *core.PersistenceError
		switch {
		case errors.Is(err, core.ErrEmptyContent):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.As(err, &se):
			writeJSON(w, se.status, map[string]string{"error": se.msg})
		case errors.As(err, &pe):
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "failed to store analysis result",
				"details": pe.Err.Error(),
			})
		default:
			r.logger.Error("Request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
}

func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		r.logger.Info("Handled request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{
		"message": "Phishing Email Analyzer API",
		"status":  "running",
	})
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

type analyzeRequest struct {
	Content     string              `json:"content"`
	Sender      string              `json:"sender"`
	Subject     string              `json:"subject"`
	Attachments []attachmentPayload `json:"attachments"`
}

type attachmentPayload struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"content_base64"`
}

func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body analyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body: %v", err)
	}

	request := &core.AnalyzeRequest{
		Content: body.Content,
		Sender:  body.Sender,
		Subject: body.Subject,
	}
	for _, att := range body.Attachments {
		content, err := base64.StdEncoding.DecodeString(att.ContentBase64)
		if err != nil {
			return badRequest("invalid base64 content for attachment %q", att.Filename)
		}
		request.Attachments = append(request.Attachments, core.AttachmentInput{
			Filename: att.Filename,
			Content:  content,
		})
	}

	result, err := r.service.AnalyzeEmail(req.Context(), request)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	if r.store == nil {
		return &statusError{status: http.StatusServiceUnavailable, msg: "result store is not configured"}
	}
	stats, err := r.store.Stats(req.Context(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return writeJSON(w, http.StatusOK, stats)
}

func (r *Router) handleRecentThreats(w http.ResponseWriter, req *http.Request) error {
	if r.store == nil {
		return &statusError{status: http.StatusServiceUnavailable, msg: "result store is not configured"}
	}
	threats, err := r.store.RecentThreats(req.Context(), time.Now().Add(-24*time.Hour), 10)
	if err != nil {
		return fmt.Errorf("failed to load recent threats: %w", err)
	}
	return writeJSON(w, http.StatusOK, map[string]any{"threats": threats})
}

type spamCheckRequest struct {
	Text string `json:"text"`
}

func (r *Router) handleSpamCheck(w http.ResponseWriter, req *http.Request) error {
	if r.classifier == nil {
		return &statusError{status: http.StatusServiceUnavailable, msg: "text classifier is not configured"}
	}

	var body spamCheckRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	if body.Text == "" {
		return badRequest("text is required")
	}

	classification, err := r.classifier.Classify(req.Context(), body.Text)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	return writeJSON(w, http.StatusOK, classification)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
