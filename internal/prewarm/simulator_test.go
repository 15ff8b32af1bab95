package prewarm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/JakeFAU/landing-preview/internal/detector"
	"github.com/JakeFAU/landing-preview/internal/preview"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() preview.Clock {
	return preview.ClockFunc(func() time.Time { return fixedNow })
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(NewSimulatedFetcher(0), Config{}, nil, nil)
	require.ErrorIs(t, err, ErrNoUserAgents)

	_, err = New(NewSimulatedFetcher(0), Config{UserAgents: []string{"a"}, Policy: "most"}, nil, nil)
	require.Error(t, err)

	s, err := New(NewSimulatedFetcher(0), Config{UserAgents: []string{"a"}}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, PolicyAll, s.cfg.Policy)
	require.Equal(t, defaultFetchTimeout, s.cfg.FetchTimeout)
}

func TestPrewarm_SimulatedWaitsForAll(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{inner: NewSimulatedFetcher(20 * time.Millisecond)}
	s, err := New(fetcher, Config{UserAgents: detector.DefaultUserAgents, FetchTimeout: time.Second}, fixedClock(), zap.NewNop())
	require.NoError(t, err)

	res, err := s.Prewarm(context.Background(), "http://localhost:3001/landing-a/b/1")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, int64(len(detector.DefaultUserAgents)), fetcher.done.Load())
	require.Len(t, res.Fetches, len(detector.DefaultUserAgents))
	require.Equal(t, fixedNow, res.CompletedAt)
	for i, f := range res.Fetches {
		require.Equal(t, detector.DefaultUserAgents[i], f.UserAgent)
		require.Equal(t, StatusSuccess, f.Status)
		require.Equal(t, http.StatusOK, f.StatusCode)
	}
}

func TestPrewarm_RunsConcurrently(t *testing.T) {
	t.Parallel()

	agents := []string{"a", "b", "c", "d", "e", "f"}
	s, err := New(NewSimulatedFetcher(100*time.Millisecond), Config{UserAgents: agents, FetchTimeout: time.Second}, nil, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Prewarm(context.Background(), "http://example.com")
	require.NoError(t, err)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPrewarm_TimeoutIsPerFetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{hang: map[string]bool{"slow": true}}
	s, err := New(fetcher, Config{UserAgents: []string{"fast", "slow"}, FetchTimeout: 50 * time.Millisecond}, nil, nil)
	require.NoError(t, err)

	res, err := s.Prewarm(context.Background(), "http://example.com")
	require.ErrorIs(t, err, ErrPrewarmFailed)
	require.False(t, res.Success)
	require.Equal(t, StatusSuccess, res.Fetches[0].Status)
	require.Equal(t, StatusTimeout, res.Fetches[1].Status)
	require.NotEmpty(t, res.Fetches[1].Error)
	require.Equal(t, 1, res.Succeeded())
}

func TestPrewarm_PolicyAny(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{
		errs:   map[string]error{"broken": errors.New("connection refused")},
		status: map[string]int{"gone": http.StatusNotFound},
	}
	agents := []string{"broken", "gone", "ok"}

	anyPolicy, err := New(fetcher, Config{UserAgents: agents, Policy: PolicyAny}, nil, nil)
	require.NoError(t, err)
	res, err := anyPolicy.Prewarm(context.Background(), "http://example.com")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, StatusFailure, res.Fetches[0].Status)
	require.Equal(t, "connection refused", res.Fetches[0].Error)
	require.Equal(t, StatusFailure, res.Fetches[1].Status)
	require.Equal(t, http.StatusNotFound, res.Fetches[1].StatusCode)
	require.Equal(t, StatusSuccess, res.Fetches[2].Status)

	allPolicy, err := New(fetcher, Config{UserAgents: agents, Policy: PolicyAll}, nil, nil)
	require.NoError(t, err)
	res, err = allPolicy.Prewarm(context.Background(), "http://example.com")
	require.ErrorIs(t, err, ErrPrewarmFailed)
	require.False(t, res.Success)
	require.Len(t, res.Fetches, 3)
}

func TestPrewarm_AnyFailsWhenNothingSucceeds(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{errs: map[string]error{"a": errors.New("x"), "b": errors.New("y")}}
	s, err := New(fetcher, Config{UserAgents: []string{"a", "b"}, Policy: PolicyAny}, nil, nil)
	require.NoError(t, err)

	res, err := s.Prewarm(context.Background(), "http://example.com")
	require.ErrorIs(t, err, ErrPrewarmFailed)
	require.Zero(t, res.Succeeded())
}

func TestPrewarm_PassesUserAgentAndURL(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{}
	s, err := New(fetcher, Config{UserAgents: []string{"Twitterbot/1.0"}}, nil, nil)
	require.NoError(t, err)

	_, err = s.Prewarm(context.Background(), "http://example.com/landing-a/b/1")
	require.NoError(t, err)
	require.Equal(t, []preview.FetchRequest{{URL: "http://example.com/landing-a/b/1", UserAgent: "Twitterbot/1.0"}}, fetcher.requests())
}

func TestSimulatedFetcher_HonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulatedFetcher(time.Hour).Fetch(ctx, preview.FetchRequest{URL: "x"})
	require.ErrorIs(t, err, context.Canceled)
}

type countingFetcher struct {
	inner preview.Fetcher
	done  atomic.Int64
}

func (f *countingFetcher) Fetch(ctx context.Context, req preview.FetchRequest) (preview.FetchResponse, error) {
	defer f.done.Add(1)
	return f.inner.Fetch(ctx, req)
}

type scriptedFetcher struct {
	hang   map[string]bool
	errs   map[string]error
	status map[string]int

	mu   sync.Mutex
	seen []preview.FetchRequest
}

func (f *scriptedFetcher) Fetch(ctx context.Context, req preview.FetchRequest) (preview.FetchResponse, error) {
	f.mu.Lock()
	f.seen = append(f.seen, req)
	f.mu.Unlock()
	if f.hang[req.UserAgent] {
		<-ctx.Done()
		return preview.FetchResponse{}, ctx.Err()
	}
	if err := f.errs[req.UserAgent]; err != nil {
		return preview.FetchResponse{}, err
	}
	code := http.StatusOK
	if c, ok := f.status[req.UserAgent]; ok {
		code = c
	}
	return preview.FetchResponse{URL: req.URL, StatusCode: code}, nil
}

func (f *scriptedFetcher) requests() []preview.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]preview.FetchRequest, len(f.seen))
	copy(out, f.seen)
	return out
}
