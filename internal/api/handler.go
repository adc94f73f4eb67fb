// Package api exposes the analysis service over HTTP. All endpoints speak
// JSON; errors use a single envelope with a message and a machine-readable
// type.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/engine"
	"github.com/aarunima248/fake-news/internal/export"
	"github.com/aarunima248/fake-news/internal/pipeline"
	"github.com/aarunima248/fake-news/internal/session"
)

const maxRequestBodySize = 1 << 20 // 1MB

// maxBatchItems caps one batch classification request.
const maxBatchItems = 50

const (
	sessionCookie = "fakenews_session"
	sessionHeader = "X-Session-ID"

	maxSessionIDLen = 128
)

// Deps carries the wired components the handlers close over.
type Deps struct {
	Engine   *engine.Engine
	Analyzer *pipeline.Analyzer
	Sessions *session.Manager
	Catalog  *corrections.Catalog
	Version  string

	// Token, when set, requires Bearer authentication on every /api route.
	Token string
	// Limiter is optional; when nil, requests are not rate limited.
	Limiter *ClientLimiter
	// Static is optional; when non-nil it serves any path the API does not
	// claim (the embedded web UI).
	Static http.Handler
}

// NewHandler builds the service router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(deps))
	r.Route("/api", func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		if deps.Limiter != nil {
			r.Use(RateLimit(deps.Limiter))
		}
		r.Post("/analyze", handleAnalyze(deps))
		r.Post("/classify", handleClassify(deps))
		r.Post("/classify/batch", handleClassifyBatch(deps))
		r.Get("/records", handleRecords(deps))
		r.Delete("/records", handleClearRecords(deps))
		r.Get("/stats", handleStats(deps))
		r.Get("/export", handleExport(deps))
		r.Get("/corrections", handleCorrections(deps))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpError(w, http.StatusNotFound, "not_found", "no such endpoint: %s", r.URL.Path)
		})
	})

	if deps.Static != nil {
		r.Handle("/*", deps.Static)
	}
	return r
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	Author     string `json:"author"`
	URL        string `json:"url"`
	SharedBy   string `json:"shared_by"`
	ShareCount int    `json:"share_count"`
}

// ClassifyRequest is the body of POST /api/classify.
type ClassifyRequest struct {
	Content string `json:"content"`
}

// ClassifyResponse is the stateless classification result.
type ClassifyResponse struct {
	Verdict    engine.Verdict     `json:"verdict"`
	Confidence *float64           `json:"confidence,omitempty"`
	Correction *corrections.Entry `json:"correction,omitempty"`
}

// BatchRequest is the body of POST /api/classify/batch.
type BatchRequest struct {
	Items []string `json:"items"`
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": deps.Version,
			"model":   deps.Engine.Info(),
		})
	}
}

func handleAnalyze(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "validation_error", "invalid request body: %v", err)
			return
		}

		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		analysis, err := deps.Analyzer.Analyze(r.Context(), sid, pipeline.Input{
			Content:    req.Content,
			Source:     req.Source,
			Author:     req.Author,
			URL:        req.URL,
			SharedBy:   req.SharedBy,
			ShareCount: req.ShareCount,
		})
		if errors.Is(err, pipeline.ErrEmptyContent) {
			httpError(w, http.StatusBadRequest, "validation_error", "content is required and must not be empty")
			return
		}
		if errors.Is(err, pipeline.ErrInvalidInput) {
			httpError(w, http.StatusBadRequest, "validation_error", "%v", err)
			return
		}
		if errors.Is(err, session.ErrStoreFull) {
			httpError(w, http.StatusBadRequest, "validation_error", "%v", err)
			return
		}
		if errors.Is(err, engine.ErrInference) {
			httpError(w, http.StatusInternalServerError, "inference_error", "classification failed: %v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "analysis failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, analysis)
	}
}

func handleClassify(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "validation_error", "invalid request body: %v", err)
			return
		}

		res, correction, err := deps.Analyzer.ClassifyOnly(r.Context(), req.Content)
		if errors.Is(err, pipeline.ErrEmptyContent) {
			httpError(w, http.StatusBadRequest, "validation_error", "content is required and must not be empty")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "inference_error", "classification failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, ClassifyResponse{
			Verdict:    res.Verdict,
			Confidence: res.Confidence,
			Correction: correction,
		})
	}
}

func handleClassifyBatch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "validation_error", "invalid request body: %v", err)
			return
		}
		if len(req.Items) == 0 {
			httpError(w, http.StatusBadRequest, "validation_error", "items is required and must not be empty")
			return
		}
		if len(req.Items) > maxBatchItems {
			httpError(w, http.StatusBadRequest, "validation_error", "batch size %d exceeds the limit of %d", len(req.Items), maxBatchItems)
			return
		}

		results, err := deps.Analyzer.ClassifyBatch(r.Context(), req.Items)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "inference_error", "batch classification failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

func handleRecords(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		records := deps.Sessions.Get(sid).Records()
		if records == nil {
			records = []session.Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})
	}
}

func handleClearRecords(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		deps.Sessions.Get(sid).Clear()
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, deps.Sessions.Get(sid).Stats())
	}
}

func handleExport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "validation_error", "format must be json or csv")
			return
		}

		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		records := deps.Sessions.Get(sid).Records()

		// Serialize to a buffer first so a failed export never sends a
		// half-written download with a 200 status.
		var buf bytes.Buffer
		if err := export.Write(&buf, format, records); err != nil {
			httpError(w, http.StatusInternalServerError, "export_error", "export failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", format.Filename(time.Now())))
		w.Write(buf.Bytes())
	}
}

func handleCorrections(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"corrections": deps.Catalog.Entries()})
	}
}

// sessionID resolves the caller's session. The X-Session-ID header wins so
// CLI clients can pin a session without cookie state; browsers fall back to
// the session cookie. A caller with neither gets a fresh id via Set-Cookie.
// Returns ok=false after writing an error response.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id := r.Header.Get(sessionHeader); id != "" {
		if len(id) > maxSessionIDLen {
			httpError(w, http.StatusBadRequest, "validation_error", "session id exceeds %d characters", maxSessionIDLen)
			return "", false
		}
		return id, true
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" && len(c.Value) <= maxSessionIDLen {
		return c.Value, true
	}

	id := session.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}

// requestLogger logs one line per request at debug level, with status and
// duration, through the process-wide slog handler.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
