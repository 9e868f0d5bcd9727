package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"furniture/internal/catalog"
	catalogmetrics "furniture/internal/catalog/metrics"
	"furniture/internal/platform/config"
	"furniture/internal/platform/logger"
	"furniture/internal/platform/metrics"
)

// app holds the state shared by every command of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	storage     string
	sqlitePath  string
	showMetrics bool

	registry *prometheus.Registry
	catalog  *catalog.Catalog
}

func newApp() *app {
	return &app{out: os.Stdout, errOut: os.Stderr}
}

// execute runs one command line and always closes the catalog it opened.
func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	if a.catalog != nil {
		if cerr := a.catalog.Close(); cerr != nil && err == nil {
			err = cerr
		}
		a.catalog = nil
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "partsctl",
		Short: "Manage furniture products and their parts",
		Long: `partsctl creates products and parts and shows the part ids assigned to them.

Storage is configured from the environment (CATALOG_STORAGE, CATALOG_SQLITE_PATH,
DATABASE_URL, REDIS_URL) and can be overridden with flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.showMetrics || a.registry == nil {
				return nil
			}
			return a.printMetrics(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.storage, "storage", "", "storage strategy: memory, sqlite, postgres or redis")
	root.PersistentFlags().StringVar(&a.sqlitePath, "sqlite-path", "", "sqlite database file")
	root.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "print catalog metrics to stderr after the command")

	root.AddCommand(a.productCmd(), a.partCmd(), a.rulesCmd())
	return root
}

// open loads configuration, applies flag overrides and opens the catalog.
func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if a.storage != "" {
		cfg.Storage.Strategy = a.storage
	}
	if a.sqlitePath != "" {
		cfg.Storage.SQLitePath = a.sqlitePath
	}

	a.registry = metrics.NewRegistry()
	c, err := catalog.Open(cmd.Context(), cfg,
		catalog.WithLogger(logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)),
		catalog.WithMetrics(catalogmetrics.New(a.registry)),
	)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	a.catalog = c
	return nil
}

func (a *app) printMetrics(w io.Writer) error {
	samples, err := metrics.Snapshot(a.registry, "catalog_")
	if err != nil {
		return err
	}
	for _, s := range samples {
		if kind, ok := s.Labels["kind"]; ok {
			fmt.Fprintf(w, "%s{kind=%q} %g\n", s.Name, kind, s.Value)
			continue
		}
		fmt.Fprintf(w, "%s %g\n", s.Name, s.Value)
	}
	return nil
}

func (a *app) print(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
