package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/config"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/export"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/generator"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/logging"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/metrics"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/server"
)

type options struct {
	configFile string
	outputFile string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "teleconnection-dashboard",
		Short: "Fetch teleconnection indices and generate a dashboard HTML page",
		Long: `Teleconnection Dashboard downloads the daily AO, NAO and PNA index files
from the NOAA Climate Prediction Center and renders them as a static HTML page
with charts of the most recent 90 days.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateDashboardHTML(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().StringVarP(&opts.outputFile, "output", "o", "dashboard.html", "Output HTML file path")

	rootCmd.AddCommand(newServeCmd(opts), newListCmd(opts), newExportCmd(opts))
	return rootCmd
}

// setup loads configuration and builds the logger and index client
func setup(cmd *cobra.Command, opts *options) (*config.Config, *slog.Logger, *fetcher.Client, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	var logOut io.Writer = io.Discard
	if opts.verbose || cmd.Name() == "serve" {
		logOut = cmd.ErrOrStderr()
	}
	logger := logging.New(cfg.Logging, logOut)

	client := fetcher.NewClient(cfg.Fetch.Timeout, logger)
	client.UserAgent = cfg.Fetch.UserAgent
	return cfg, logger, client, nil
}

// generateDashboardHTML fetches every index and writes the page
func generateDashboardHTML(cmd *cobra.Command, opts *options) error {
	cfg, logger, client, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	if opts.verbose {
		cmd.Println("Fetching teleconnection indices...")
	}
	d := generator.Build(cmd.Context(), client, cfg.Sources, generator.Options{
		Window: cfg.Dashboard.Window,
		Logger: logger,
	})
	for _, w := range d.Warnings {
		cmd.PrintErrln(w.Message)
	}

	if opts.verbose {
		cmd.Println(fmt.Sprintf("Generating HTML to %s...", opts.outputFile))
	}
	if err := generator.WriteFile(d, opts.outputFile); err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	cmd.Println(fmt.Sprintf("Dashboard with %d charts saved to %s", len(d.Panels), opts.outputFile))
	return nil
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP, rebuilding it on every page view",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)
			client.Observer = m

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Println(fmt.Sprintf("Open at http://localhost%s/", cfg.Server.Addr))
			return server.New(cfg, client, logger, m, reg).Run(ctx)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return serveCmd
}

// newListCmd shows the latest value of each index without generating HTML
func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the latest value of each teleconnection index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, client, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			results := client.FetchAll(cmd.Context(), cfg.Sources)
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func printResults(w io.Writer, results []fetcher.Result) {
	red := color.New(color.FgRed)
	neg := color.New(color.FgCyan)
	pos := color.New(color.FgYellow)

	fmt.Fprintln(w, "Teleconnection Indices:")
	for _, res := range results {
		fmt.Fprintln(w, "---")
		fmt.Fprintf(w, "Index: %s\n", res.Source.Name)
		if !res.OK() {
			red.Fprintf(w, "Error: %v\n", res.Err)
			continue
		}
		latest, ok := res.Series.Latest()
		if !ok {
			fmt.Fprintln(w, "No records.")
			continue
		}
		fmt.Fprintf(w, "Records: %d\n", res.Series.Len())
		fmt.Fprintf(w, "Latest: %s ", latest.Date.Format("2006-01-02"))
		c := pos
		if latest.Value < 0 {
			c = neg
		}
		c.Fprintf(w, "%+.3f\n", latest.Value)
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var outputFile string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export every index series to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, client, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			results := client.FetchAll(cmd.Context(), cfg.Sources)
			for _, res := range results {
				if !res.OK() {
					cmd.PrintErrln(res.Err.Error())
				}
			}
			if err := export.Write(results, outputFile); err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			cmd.Println(fmt.Sprintf("Workbook saved to %s", outputFile))
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "teleconnections.xlsx", "Output workbook path")
	return exportCmd
}
