// Package prewarm fires one crawler-identified fetch per configured user agent
// at a landing URL and reports once every fetch has settled.
package prewarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/landing-preview/internal/metrics"
	"github.com/JakeFAU/landing-preview/internal/preview"
)

// Policy decides overall success from per-fetch results.
type Policy string

// Supported policies.
const (
	PolicyAll Policy = "all"
	PolicyAny Policy = "any"
)

// Per-fetch status values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusTimeout = "timeout"
)

var (
	// ErrNoUserAgents is returned by New when no user agents are configured.
	ErrNoUserAgents = errors.New("prewarm: at least one user agent is required")
	// ErrPrewarmFailed is returned when the results do not satisfy the policy.
	ErrPrewarmFailed = errors.New("prewarm: fetches did not satisfy policy")
)

const defaultFetchTimeout = 2 * time.Second

// Config controls the fan-out.
type Config struct {
	UserAgents   []string
	FetchTimeout time.Duration
	Policy       Policy
}

// FetchResult is the outcome of one fetch.
type FetchResult struct {
	UserAgent  string `json:"userAgent"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Result aggregates all fetches of one pre-warm.
type Result struct {
	URL         string
	Success     bool
	Fetches     []FetchResult
	CompletedAt time.Time
}

// Succeeded counts successful fetches.
func (r Result) Succeeded() int {
	n := 0
	for _, f := range r.Fetches {
		if f.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// Simulator runs pre-warm fan-outs against a Fetcher.
type Simulator struct {
	fetcher preview.Fetcher
	cfg     Config
	clock   preview.Clock
	logger  *zap.Logger
}

// New creates a Simulator.
func New(fetcher preview.Fetcher, cfg Config, clock preview.Clock, logger *zap.Logger) (*Simulator, error) {
	if len(cfg.UserAgents) == 0 {
		return nil, ErrNoUserAgents
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	switch cfg.Policy {
	case "":
		cfg.Policy = PolicyAll
	case PolicyAll, PolicyAny:
	default:
		return nil, fmt.Errorf("prewarm: unknown policy %q", cfg.Policy)
	}
	if clock == nil {
		clock = preview.SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	agents := make([]string, len(cfg.UserAgents))
	copy(agents, cfg.UserAgents)
	cfg.UserAgents = agents
	return &Simulator{fetcher: fetcher, cfg: cfg, clock: clock, logger: logger}, nil
}

// Prewarm fetches url once per user agent concurrently and waits for all of
// them. Individual failures are recorded, never propagated. The returned error
// wraps ErrPrewarmFailed when the policy is not met; the Result is complete
// either way.
func (s *Simulator) Prewarm(ctx context.Context, url string) (Result, error) {
	start := time.Now()
	fetches := make([]FetchResult, len(s.cfg.UserAgents))

	var g errgroup.Group
	for i, ua := range s.cfg.UserAgents {
		g.Go(func() error {
			fetches[i] = s.fetchOne(ctx, url, ua)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		URL:         url,
		Fetches:     fetches,
		CompletedAt: s.clock.Now(),
	}
	res.Success = s.satisfied(res)
	metrics.ObservePrewarm(time.Since(start))

	if !res.Success {
		s.logger.Warn("pre-warm policy not met",
			zap.String("url", url),
			zap.String("policy", string(s.cfg.Policy)),
			zap.Int("succeeded", res.Succeeded()),
			zap.Int("total", len(fetches)),
		)
		return res, fmt.Errorf("%w: %d/%d succeeded under policy %q",
			ErrPrewarmFailed, res.Succeeded(), len(fetches), s.cfg.Policy)
	}
	s.logger.Info("pre-warm complete", zap.String("url", url), zap.Int("fetches", len(fetches)))
	return res, nil
}

func (s *Simulator) fetchOne(ctx context.Context, url, ua string) FetchResult {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.fetcher.Fetch(fetchCtx, preview.FetchRequest{URL: url, UserAgent: ua})
	out := FetchResult{
		UserAgent:  ua,
		StatusCode: resp.StatusCode,
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded):
		out.Status = StatusTimeout
		out.Error = fmt.Sprintf("timed out after %s", s.cfg.FetchTimeout)
	case err != nil:
		out.Status = StatusFailure
		out.Error = err.Error()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		out.Status = StatusFailure
		out.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	default:
		out.Status = StatusSuccess
	}
	metrics.ObservePrewarmFetch(out.Status)

	if out.Status == StatusSuccess {
		s.logger.Debug("pre-warm fetch settled", zap.String("user_agent", ua), zap.Int64("duration_ms", out.DurationMs))
	} else {
		s.logger.Warn("pre-warm fetch failed",
			zap.String("user_agent", ua),
			zap.String("status", out.Status),
			zap.String("error", out.Error),
		)
	}
	return out
}

func (s *Simulator) satisfied(res Result) bool {
	ok := res.Succeeded()
	if s.cfg.Policy == PolicyAny {
		return ok > 0
	}
	return ok == len(res.Fetches)
}
