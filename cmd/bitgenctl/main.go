package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bitgen/internal/storage"
	"bitgen/pkg/bitgen"
)

func main() {
	c := &cli{out: os.Stdout}
	err := c.execute(context.Background(), os.Args[1:])
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries state shared by every command of one process: the output
// stream, the logger and a lazily opened client.
type cli struct {
	out io.Writer

	storeKind string
	dbPath    string
	logLevel  string

	logger *zap.Logger
	client *bitgen.Client
}

func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.out)
	return root.ExecuteContext(ctx)
}

func (c *cli) close() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bitgenctl",
		Short:         "Run bit-string genetic algorithm problems and inspect their history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initLogger()
		},
	}
	root.PersistentFlags().StringVar(&c.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	root.PersistentFlags().StringVar(&c.dbPath, "db-path", "bitgen.db", "sqlite database path")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(
		c.runCmd(),
		c.runsCmd(),
		c.historyCmd(),
		c.exportCmd(),
		c.problemsCmd(),
		c.decodeCmd(),
	)
	return root
}

func (c *cli) initLogger() error {
	if c.logger != nil {
		return nil
	}
	level, err := zapcore.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	config := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	return nil
}

func (c *cli) ensureClient(ctx context.Context) (*bitgen.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	client, err := bitgen.New(bitgen.Options{StoreKind: c.storeKind, DBPath: c.dbPath, Logger: c.logger})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *cli) runCmd() *cobra.Command {
	var (
		flags       runFlags
		showHistory bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a solution to a built-in problem and record the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			client, err := c.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			req := cfg.request()
			summary, err := client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "run completed run_id=%s problem=%s pop=%d gens=%d seed=%d\n",
				summary.RunID, summary.Problem, req.Population, summary.Generations, req.Seed)
			if showHistory {
				for _, h := range summary.History {
					fmt.Fprintf(c.out, "generation=%d min=%.6f mean=%.6f diversity=%.4f mutation_rate=%.4f\n",
						h.Generation, h.MinScore, h.MeanScore, h.Diversity, h.MutationRate)
				}
			}
			fmt.Fprintf(c.out, "evaluations=%s elapsed=%s\n",
				humanize.Comma(int64(summary.Evaluations)), summary.Duration.Round(time.Millisecond))
			fmt.Fprintf(c.out, "best_score=%.6f\n", summary.BestScore)
			fmt.Fprintf(c.out, "best_chromosome=%s\n", summary.BestChromosome)
			if summary.BestDescription != "" {
				fmt.Fprintf(c.out, "best_decoded=%s\n", summary.BestDescription)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&showHistory, "show-history", false, "print every generation")
	return cmd
}

func (c *cli) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return errors.New("limit must be >= 0")
			}
			client, err := c.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			runs, err := client.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(c.out, "no runs found")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(c.out, "run_id=%s created=%s problem=%s seed=%d pop=%d gens=%d evaluations=%s best_score=%.6f\n",
					r.ID, humanize.Time(r.CreatedAt), r.Problem, r.Seed, r.PopulationSize, r.Generations,
					humanize.Comma(int64(r.Evaluations)), r.BestScore)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var (
		runID  string
		latest bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print per-generation statistics of a recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			history, err := client.History(cmd.Context(), bitgen.HistoryRequest{RunID: runID, Latest: latest, Limit: limit})
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(c.out, "no generation history")
				return nil
			}
			for _, h := range history {
				fmt.Fprintf(c.out, "generation=%d min=%.6f max=%.6f mean=%.6f stddev=%.6f diversity=%.4f distinct=%d mutation_rate=%.4f evaluations=%d\n",
					h.Generation, h.MinScore, h.MaxScore, h.MeanScore, h.StdDevScore,
					h.Diversity, h.DistinctGenotypes, h.MutationRate, h.Evaluations)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "use the most recent run")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum generations to print (0 = all)")
	cmd.MarkFlagsMutuallyExclusive("run-id", "latest")
	cmd.MarkFlagsOneRequired("run-id", "latest")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var req bitgen.ExportRequest
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a recorded run and its history to JSON and CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			exported, err := client.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.RunID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&req.Latest, "latest", false, "use the most recent run")
	cmd.Flags().StringVar(&req.OutDir, "out", "exports", "output directory")
	cmd.MarkFlagsMutuallyExclusive("run-id", "latest")
	cmd.MarkFlagsOneRequired("run-id", "latest")
	return cmd
}

func (c *cli) problemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "List built-in problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range bitgen.Problems() {
				fmt.Fprintf(c.out, "%-16s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}

func (c *cli) decodeCmd() *cobra.Command {
	var (
		hex  string
		bits int
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print a hex chromosome in binary form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			binary, err := bitgen.Decode(strings.TrimPrefix(strings.TrimSpace(hex), "0x"), bits)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, binary)
			return nil
		},
	}
	cmd.Flags().StringVar(&hex, "hex", "", "hex chromosome as printed by run")
	cmd.Flags().IntVar(&bits, "bits", 0, "bit count (0 = every hex digit)")
	_ = cmd.MarkFlagRequired("hex")
	return cmd
}
