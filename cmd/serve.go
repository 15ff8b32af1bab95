package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/landing-preview/internal/api"
	"github.com/JakeFAU/landing-preview/internal/config"
	"github.com/JakeFAU/landing-preview/internal/detector"
	"github.com/JakeFAU/landing-preview/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/landing-preview/internal/fetcher/colly"
	"github.com/JakeFAU/landing-preview/internal/landing"
	"github.com/JakeFAU/landing-preview/internal/metadata"
	"github.com/JakeFAU/landing-preview/internal/prewarm"
	"github.com/JakeFAU/landing-preview/internal/preview"
	"github.com/JakeFAU/landing-preview/internal/registry"
	"github.com/JakeFAU/landing-preview/internal/render"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	logger := rt.logger

	server, err := buildServer(rt.cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started",
			zap.Int("port", rt.cfg.Server.Port),
			zap.String("prewarm_mode", rt.cfg.Prewarm.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	default:
		return nil
	}
}

// buildServer assembles the service components from cfg.
func buildServer(cfg config.Config, logger *zap.Logger) (*api.Server, error) {
	reg, err := loadRegistry(cfg.Registry)
	if err != nil {
		return nil, err
	}
	resolver := metadata.NewResolver(reg)
	renderer, err := render.New(render.Config{SiteName: cfg.Site.Name, HomePath: cfg.Site.HomePath})
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	classifier := detector.NewHeuristic(cfg.Signatures()...)
	logger.Info("crawler classifier ready", zap.Strings("signatures", classifier.Signatures()))
	dispatch := dispatcher.New(classifier, resolver, renderer, cfg.Site.HomePath)

	var fetcher preview.Fetcher
	switch cfg.Prewarm.Mode {
	case config.PrewarmModeLive:
		fetcher = collyfetcher.New(collyfetcher.Config{Timeout: cfg.FetchTimeout()})
	default:
		fetcher = prewarm.NewSimulatedFetcher(cfg.SimulatedDelay())
	}
	simulator, err := prewarm.New(fetcher, prewarm.Config{
		UserAgents:   cfg.Prewarm.UserAgents,
		FetchTimeout: cfg.FetchTimeout(),
		Policy:       prewarm.Policy(cfg.Prewarm.Policy),
	}, preview.SystemClock, logger.Named("prewarm"))
	if err != nil {
		return nil, fmt.Errorf("init prewarm: %w", err)
	}

	return api.NewServer(
		reg,
		resolver,
		dispatch,
		simulator,
		landing.NewRandomIDs(),
		preview.SystemClock,
		cfg,
		logger.Named("api"),
	), nil
}

func loadRegistry(cfg config.RegistryConfig) (*registry.Registry, error) {
	if cfg.File != "" {
		reg, err := registry.LoadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("load registry file: %w", err)
		}
		return reg, nil
	}
	reg, err := registry.FromPreset(cfg.Preset)
	if err != nil {
		return nil, fmt.Errorf("load registry preset: %w", err)
	}
	return reg, nil
}
