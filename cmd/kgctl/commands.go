package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AlotfyDev/ArchiNote/application/services"
	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/infrastructure/config"
	"github.com/AlotfyDev/ArchiNote/infrastructure/persistence/badger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// options holds the persistent flags shared by every command
type options struct {
	dataDir      string
	graphID      string
	domainConfig string
	environment  string
	verbose      bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "kgctl",
		Short: "Inspect knowledge graphs saved in a badger store",
		Long: `kgctl opens a badger snapshot store offline and runs read-only
checks and exports against a saved graph.

Examples:
  kgctl graphs --data ./data/badger
  kgctl validate --graph default
  kgctl export --graph default --format rag`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data", envOr("BADGER_PATH", "./data/badger"), "badger data directory")
	flags.StringVar(&opts.graphID, "graph", envOr("GRAPH_ID", "default"), "graph id to load")
	flags.StringVar(&opts.domainConfig, "domain-config", envOr("DOMAIN_CONFIG_PATH", ""), "domain config YAML")
	flags.StringVar(&opts.environment, "env", envOr("ENVIRONMENT", "development"), "environment for domain defaults")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log store activity")

	rootCmd.AddCommand(
		newValidateCmd(opts),
		newExportCmd(opts),
		newStatsCmd(opts),
		newCyclesCmd(opts),
		newGraphsCmd(opts),
	)
	return rootCmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the graph for dangling references and broken paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, func(ctx context.Context, svc *services.KnowledgeGraphService) error {
				if err := svc.ValidateGraph(ctx); err != nil {
					return fmt.Errorf("graph %s is invalid: %w", opts.graphID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "graph %s is valid\n", opts.graphID)
				return nil
			})
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the graph as yaml, json or rag text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, func(ctx context.Context, svc *services.KnowledgeGraphService) error {
				var (
					body string
					err  error
				)
				switch strings.ToLower(format) {
				case "yaml":
					body, err = svc.ExportYAML(ctx)
				case "json":
					body, err = svc.ExportJSON(ctx)
				case "rag":
					body, err = svc.ExportRAG(ctx)
				default:
					return fmt.Errorf("unknown format %q: use yaml, json or rag", format)
				}
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), body)
				if !strings.HasSuffix(body, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, json or rag")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print node, edge and path counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, func(ctx context.Context, svc *services.KnowledgeGraphService) error {
				stats, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(stats)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
}

func newCyclesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List directed cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, func(ctx context.Context, svc *services.KnowledgeGraphService) error {
				cycles, err := svc.FindCycles(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(cycles) == 0 {
					fmt.Fprintln(w, "no cycles")
					return nil
				}
				for _, c := range cycles {
					fmt.Fprintln(w, strings.Join(c.NodeIDs(), " -> "))
				}
				return nil
			})
		},
	}
}

func newGraphsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graphs",
		Short: "List saved graph ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := badger.Open(badger.Config{Path: opts.dataDir}, newLogger(opts.verbose))
			if err != nil {
				return err
			}
			defer store.Close()

			ids, err := store.GraphIDs(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

// withService opens the store, loads the selected graph and runs fn against it
func withService(ctx context.Context, opts *options, fn func(context.Context, *services.KnowledgeGraphService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts.verbose)

	domainCfg, err := config.LoadDomainConfigFile(opts.domainConfig, opts.environment)
	if err != nil {
		return err
	}
	store, err := badger.Open(badger.Config{Path: opts.dataDir}, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	orch := aggregates.NewOrchestrator(domainCfg, logger)
	svc := services.NewKnowledgeGraphService(orch, store, nil, nil, nil, logger)
	defer svc.Close()

	if err := svc.Load(ctx, opts.graphID); err != nil {
		return err
	}
	return fn(ctx, svc)
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
