// Package probe verifies a running landing endpoint the way link-preview
// crawlers and browsers see it.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/landing-preview/internal/detector"
	"github.com/JakeFAU/landing-preview/internal/dispatcher"
	"github.com/JakeFAU/landing-preview/internal/ogtags"
	"github.com/JakeFAU/landing-preview/internal/preview"
)

// Expectation is what a check requires from the response.
type Expectation int

const (
	// ExpectCard requires a 200 document carrying every card tag.
	ExpectCard Expectation = iota
	// ExpectRedirect requires a redirect into the UI preview route.
	ExpectRedirect
)

func (e Expectation) String() string {
	if e == ExpectRedirect {
		return "redirect"
	}
	return "card"
}

// HumanUserAgent is a desktop browser identification used by DefaultChecks.
const HumanUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ErrChecksFailed is returned by Run when at least one check fails.
var ErrChecksFailed = errors.New("probe: checks failed")

// Check is a single request to issue.
type Check struct {
	Name      string
	UserAgent string
	Expect    Expectation
}

// CheckResult records one check outcome.
type CheckResult struct {
	Check
	StatusCode int
	Location   string
	Title      string
	Missing    []string
	Passed     bool
	Detail     string
	Duration   time.Duration
}

// Report is the full outcome of Run.
type Report struct {
	URL     string
	Results []CheckResult
}

// Failed counts failed checks.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// DefaultChecks issues one crawler check per default user agent plus a
// browser check.
func DefaultChecks() []Check {
	checks := make([]Check, 0, len(detector.DefaultUserAgents)+1)
	for i, ua := range detector.DefaultUserAgents {
		checks = append(checks, Check{Name: detector.DefaultSignatures[i], UserAgent: ua, Expect: ExpectCard})
	}
	return append(checks, Check{Name: "browser", UserAgent: HumanUserAgent, Expect: ExpectRedirect})
}

// Runner executes checks through a Fetcher.
type Runner struct {
	fetcher preview.Fetcher
	logger  *zap.Logger
}

// New creates a Runner.
func New(fetcher preview.Fetcher, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{fetcher: fetcher, logger: logger}
}

// Run issues every check against url concurrently. The Report is complete
// even when the returned error wraps ErrChecksFailed.
func (r *Runner) Run(ctx context.Context, url string, checks []Check) (Report, error) {
	report := Report{URL: url, Results: make([]CheckResult, len(checks))}

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			report.Results[i] = r.runOne(ctx, url, c)
			return nil
		})
	}
	_ = g.Wait()

	if failed := report.Failed(); failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrChecksFailed, failed, len(checks))
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, url string, c Check) CheckResult {
	out := CheckResult{Check: c}
	resp, err := r.fetcher.Fetch(ctx, preview.FetchRequest{URL: url, UserAgent: c.UserAgent})
	out.Duration = resp.Duration
	out.StatusCode = resp.StatusCode
	if err != nil {
		out.Detail = err.Error()
		r.logger.Warn("probe fetch failed", zap.String("check", c.Name), zap.Error(err))
		return out
	}

	switch c.Expect {
	case ExpectRedirect:
		out.Location = resp.Headers.Get("Location")
		switch {
		case resp.StatusCode < 300 || resp.StatusCode > 399:
			out.Detail = fmt.Sprintf("expected redirect, got %d", resp.StatusCode)
		case !strings.Contains(out.Location, "?"+dispatcher.PreviewParam+"="):
			out.Detail = fmt.Sprintf("redirect target %q lacks %s parameter", out.Location, dispatcher.PreviewParam)
		default:
			out.Passed = true
		}
	default:
		if resp.StatusCode != http.StatusOK {
			out.Detail = fmt.Sprintf("expected 200, got %d", resp.StatusCode)
			break
		}
		tags, err := ogtags.Extract(resp.Body)
		if err != nil {
			out.Detail = err.Error()
			break
		}
		out.Title = tags.Value("og:title")
		out.Missing = tags.Missing(ogtags.CardKeys...)
		if len(out.Missing) > 0 {
			out.Detail = "missing " + strings.Join(out.Missing, ", ")
			break
		}
		out.Passed = true
	}
	r.logger.Debug("probe check done",
		zap.String("check", c.Name),
		zap.Int("status", out.StatusCode),
		zap.Bool("passed", out.Passed),
	)
	return out
}
