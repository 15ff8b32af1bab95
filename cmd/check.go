package cmd

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	collyfetcher "github.com/JakeFAU/landing-preview/internal/fetcher/colly"
	"github.com/JakeFAU/landing-preview/internal/landing"
	"github.com/JakeFAU/landing-preview/internal/preview"
	"github.com/JakeFAU/landing-preview/internal/probe"
	"github.com/JakeFAU/landing-preview/internal/registry"
)

type checkOptions struct {
	base    string
	path    string
	timeout time.Duration
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verifies a running server as crawlers and browsers see it",
		Long: `check requests a landing URL once per known crawler user agent and once as a
browser. Crawler requests must return a complete social card; the browser
request must redirect into the UI. Exits non-zero when any check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.base, "base", "", "server origin (default http://localhost:{server.port})")
	cmd.Flags().StringVar(&opts.path, "path", "", "landing path to request (default: random registry slug and username)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	path := opts.path
	if path == "" {
		reg, err := loadRegistry(rt.cfg.Registry)
		if err != nil {
			return err
		}
		path = randomPath(reg, landing.NewRandomIDs())
	}
	if _, err := landing.Decode(path); err != nil {
		return fmt.Errorf("--path %q: %w", path, err)
	}
	base := opts.base
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", rt.cfg.Server.Port)
	}
	target := strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(path, "/")

	runner := probe.New(collyfetcher.New(collyfetcher.Config{Timeout: opts.timeout}), rt.logger.Named("probe"))
	report, runErr := runner.Run(cmd.Context(), target, probe.DefaultChecks())
	if runErr != nil && !errors.Is(runErr, probe.ErrChecksFailed) {
		return fmt.Errorf("check: %w", runErr)
	}
	printReport(report)
	if runErr != nil {
		return fmt.Errorf("check: %w", runErr)
	}
	return nil
}

// randomPath picks a registry slug and username independently.
func randomPath(reg *registry.Registry, ids preview.IDSource) string {
	slugs, users := reg.Slugs(), reg.Usernames()
	return landing.EncodeID(slugs[rand.IntN(len(slugs))], users[rand.IntN(len(users))], ids.NewID())
}

func printReport(report probe.Report) {
	pterm.DefaultSection.Println("Checking " + report.URL)

	data := pterm.TableData{{"Check", "Expect", "Status", "Result", "Detail"}}
	for _, res := range report.Results {
		result := pterm.Green("PASS")
		if !res.Passed {
			result = pterm.Red("FAIL")
		}
		detail := res.Detail
		if detail == "" {
			detail = res.Title
			if res.Location != "" {
				detail = res.Location
			}
		}
		data = append(data, []string{
			res.Name,
			res.Expect.String(),
			fmt.Sprintf("%d", res.StatusCode),
			result,
			detail,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()

	if failed := report.Failed(); failed > 0 {
		pterm.Error.Printf("%d of %d checks failed\n", failed, len(report.Results))
		return
	}
	pterm.Success.Printf("all %d checks passed\n", len(report.Results))
}
