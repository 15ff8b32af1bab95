package prewarm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JakeFAU/landing-preview/internal/preview"
)

// SimulatedFetcher stands in for a crawler fetch: it waits Delay and reports
// 200 without touching the network.
type SimulatedFetcher struct {
	Delay time.Duration
}

// NewSimulatedFetcher creates a SimulatedFetcher.
func NewSimulatedFetcher(delay time.Duration) *SimulatedFetcher {
	return &SimulatedFetcher{Delay: delay}
}

// Fetch waits for the delay or the context, whichever comes first.
func (f *SimulatedFetcher) Fetch(ctx context.Context, request preview.FetchRequest) (preview.FetchResponse, error) {
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return preview.FetchResponse{}, fmt.Errorf("simulated fetch canceled: %w", ctx.Err())
	case <-timer.C:
		return preview.FetchResponse{
			URL:        request.URL,
			StatusCode: http.StatusOK,
			Duration:   f.Delay,
		}, nil
	}
}
