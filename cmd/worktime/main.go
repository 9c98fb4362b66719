package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/worktime/pkg/config"
	"github.com/Veraticus/worktime/pkg/export"
	"github.com/Veraticus/worktime/pkg/report"
	"github.com/Veraticus/worktime/pkg/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "worktime:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Flags

	root := &cobra.Command{
		Use:           "worktime",
		Short:         "Track time spent working in a target application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(root.PersistentFlags(), &flags)

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.LoadWithFlags(cmd.Flags(), &flags)
	}

	runCmd := newRunCmd(load)
	root.RunE = runCmd.RunE
	root.AddCommand(runCmd)
	root.AddCommand(newHistoryCmd(load))
	root.AddCommand(newTodayCmd(load))
	root.AddCommand(newExportCmd(load))
	return root
}

type loader func(cmd *cobra.Command) (*config.Config, error)

func newRunCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sample the desktop and record work sessions until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			deps, err := NewDependencies(cfg, logger, os.Stderr, os.Stdout, isatty(os.Stderr.Fd()))
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return NewApplication(deps).Run(ctx)
		},
	}
}

func loadHistory(cfg *config.Config) session.History {
	logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return session.NewStore(cfg.DataFile, logger).Load()
}

func newHistoryCmd(load loader) *cobra.Command {
	var opts report.Options

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show worked time per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return report.RenderHistory(cmd.OutOrStdout(), loadHistory(cfg), opts)
		},
	}
	cmd.Flags().IntVar(&opts.Days, "days", 14, "Number of most recent days to show (0 for all)")
	cmd.Flags().BoolVar(&opts.Sessions, "sessions", false, "List individual sessions")
	cmd.Flags().DurationVar(&opts.Goal, "goal", 8*time.Hour, "Daily goal for the progress column (0 to hide)")
	return cmd
}

func newTodayCmd(load loader) *cobra.Command {
	var opts report.Options

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's sessions and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return report.RenderToday(cmd.OutOrStdout(), loadHistory(cfg), time.Now(), opts)
		},
	}
	cmd.Flags().DurationVar(&opts.Goal, "goal", 8*time.Hour, "Daily goal for the progress bar (0 to hide)")
	return cmd
}

func newExportCmd(load loader) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the session history as CSV, JSON or SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			h := loadHistory(cfg)

			if format == export.FormatSQLite {
				if out == "" || out == "-" {
					return fmt.Errorf("--out is required for sqlite export")
				}
				return export.ToSQLite(cmd.Context(), out, h)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return fmt.Errorf("open output: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return export.Write(w, format, h)
		},
	}
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "Output format: csv|json|sqlite")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output path, - for stdout")
	return cmd
}

// runWithContext is used by tests to execute the root command.
func runWithContext(ctx context.Context, args []string, stdout io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}
