package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/landing-preview/internal/config"
	"github.com/JakeFAU/landing-preview/internal/dispatcher"
	"github.com/JakeFAU/landing-preview/internal/landing"
	"github.com/JakeFAU/landing-preview/internal/metrics"
	"github.com/JakeFAU/landing-preview/internal/prewarm"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// isoMillis matches the millisecond ISO-8601 form the UI displays.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// PrewarmMessage is returned on a successful pre-warm.
const PrewarmMessage = "URL pre-warmed with multiple bot user agents"

type generateURLRequest struct {
	Slug       string          `json:"slug"`
	Username   string          `json:"username"`
	ImageIndex json.RawMessage `json:"imageIndex"`
}

type generateURLResponse struct {
	URL        string          `json:"url"`
	Slug       string          `json:"slug"`
	Username   string          `json:"username"`
	ID         int             `json:"id"`
	ImageIndex json.RawMessage `json:"imageIndex"`
}

type preWarmRequest struct {
	URL string `json:"url"`
}

type preWarmResponse struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp string                `json:"timestamp,omitempty"`
	Results   []prewarm.FetchResult `json:"results"`
}

func (s *Server) landingPage(w http.ResponseWriter, r *http.Request) {
	id, err := landing.Decode(r.URL.Path)
	if err != nil {
		http.Error(w, "Landing page not found", http.StatusNotFound)
		return
	}

	out, err := s.dispatcher.Dispatch(dispatcher.Request{
		Identifier:     id,
		Identification: r.UserAgent(),
		CurrentURL:     currentURL(r),
	})
	if err != nil {
		s.logger.Error("dispatch landing request",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to render landing page")
		return
	}

	outcome := out.Classification.Outcome()
	metrics.ObserveLanding(outcome)
	s.logger.Info("landing request",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("slug", id.Slug),
		zap.String("username", id.Username),
		zap.String("id", id.ID),
		zap.String("user_agent", r.UserAgent()),
		zap.String("outcome", outcome),
	)

	if out.Location != "" {
		http.Redirect(w, r, out.Location, out.Status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(out.Status)
	if _, err := w.Write([]byte(out.Body)); err != nil {
		s.logger.Warn("write landing document", zap.Error(err))
	}
}

func (s *Server) testData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Data())
}

func (s *Server) generateURL(w http.ResponseWriter, r *http.Request) {
	var req generateURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Slug == "" || req.Username == "" || len(req.ImageIndex) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	if strings.Contains(req.Slug, "/") || strings.Contains(req.Username, "/") {
		writeError(w, http.StatusBadRequest, "slug and username must not contain '/'")
		return
	}

	id := s.ids.NewID()
	resp := generateURLResponse{
		URL:        landing.URL(s.baseURL(r), req.Slug, req.Username, id),
		Slug:       req.Slug,
		Username:   req.Username,
		ID:         id,
		ImageIndex: req.ImageIndex,
	}
	metrics.ObserveGenerated()
	s.logger.Info("generated landing url",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("url", resp.URL),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) previewData(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "URL parameter required")
		return
	}
	id, err := landing.DecodeURL(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid URL format")
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.Resolve(id, raw))
}

func (s *Server) preWarm(w http.ResponseWriter, r *http.Request) {
	var req preWarmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL parameter required")
		return
	}
	// Live mode issues real requests, so it only accepts landing URLs.
	if s.cfg.Prewarm.Mode == config.PrewarmModeLive {
		if _, err := landing.DecodeURL(req.URL); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid URL format")
			return
		}
	}

	res, err := s.prewarmer.Prewarm(r.Context(), req.URL)
	if err != nil {
		s.logger.Warn("pre-warm failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		status := http.StatusBadGateway
		if !errors.Is(err, prewarm.ErrPrewarmFailed) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, preWarmResponse{
			Success: false,
			Error:   "Failed to pre-warm URL",
			Results: nonNil(res.Fetches),
		})
		return
	}

	s.logger.Info("pre-warmed url",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("url", req.URL),
		zap.Int("succeeded", res.Succeeded()),
		zap.Int("attempted", len(res.Fetches)),
	)
	completed := res.CompletedAt
	if completed.IsZero() {
		completed = s.clock.Now()
	}
	writeJSON(w, http.StatusOK, preWarmResponse{
		Success:   true,
		Message:   PrewarmMessage,
		Timestamp: completed.UTC().Format(isoMillis),
		Results:   nonNil(res.Fetches),
	})
}

// baseURL prefers the configured public origin. Otherwise loopback hosts get
// http and everything else https.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.Server.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.Server.PublicBaseURL, "/")
	}
	host := r.Host
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		return "http://" + host
	default:
		return "https://" + host
	}
}

// currentURL reconstructs the absolute URL the client requested.
func currentURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func nonNil(results []prewarm.FetchResult) []prewarm.FetchResult {
	if results == nil {
		return []prewarm.FetchResult{}
	}
	return results
}
