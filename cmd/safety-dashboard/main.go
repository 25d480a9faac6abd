package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bissquit/safety-dashboard/internal/app"
	"github.com/bissquit/safety-dashboard/internal/config"
	"github.com/bissquit/safety-dashboard/internal/dashboard"
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/bissquit/safety-dashboard/internal/incidents"
	"github.com/bissquit/safety-dashboard/internal/report"
	"github.com/bissquit/safety-dashboard/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	serverOn  bool
	severity  string
	sortOrder string
	format    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "safety-dashboard",
		Short:         "AI safety incident dashboard",
		Long:          `Browse, filter and report AI safety incidents in an interactive terminal dashboard.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDashboard,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to YAML config file")
	rootCmd.Flags().BoolVar(&serverOn, "server", false, "Serve the read-only HTTP API while the dashboard runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print incidents without starting the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), cfg, severity, sortOrder, format)
		},
	}
	listCmd.Flags().StringVarP(&severity, "severity", "s", "All", "Severity filter: All, Low, Medium or High")
	listCmd.Flags().StringVar(&sortOrder, "sort", "", "Sort order: newest or oldest (default from config)")
	listCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, markdown or json")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "safety-dashboard %s (commit %s, built %s)\n",
				version.Version, version.GitCommit, version.BuildDate)
		},
	}

	rootCmd.AddCommand(listCmd, versionCmd)
	return rootCmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serverOn {
		cfg.Server.Enabled = true
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	runErr := a.Run(cmd.Context())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", err)
	}

	return runErr
}

// runList renders the derived view of the seed incidents to out.
func runList(ctx context.Context, out io.Writer, cfg *config.Config, severityArg, sortArg, formatArg string) error {
	filter, err := incidents.ParseFilter(severityArg)
	if err != nil {
		return err
	}
	if sortArg == "" {
		sortArg = cfg.Dashboard.DefaultSort
	}
	order, err := incidents.ParseSortOrder(sortArg)
	if err != nil {
		return err
	}
	f, err := report.ParseFormat(formatArg)
	if err != nil {
		return err
	}

	seed, err := incidents.NewSeedProvider(cfg.Dashboard.SeedPath).Incidents(ctx)
	if err != nil {
		return fmt.Errorf("load seed incidents: %w", err)
	}

	ctrl := dashboard.NewController(seed, dashboard.Config{
		DefaultSeverity: domain.Severity(cfg.Dashboard.DefaultSeverity),
		DefaultSort:     order,
	})
	if err := ctrl.SetSeverityFilter(filter); err != nil {
		return err
	}

	renderer, err := report.NewRenderer(cfg.Dashboard.DateFormat)
	if err != nil {
		return fmt.Errorf("create report renderer: %w", err)
	}

	snap := ctrl.Snapshot()
	body, err := renderer.Render(f, report.Report{
		Filter:      snap.Filter,
		Sort:        snap.Sort,
		Summary:     snap.Summary,
		Incidents:   snap.View(snap.Filter, snap.Sort),
		GeneratedAt: snap.UpdatedAt,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, body)
	return err
}
