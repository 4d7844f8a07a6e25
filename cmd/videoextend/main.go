package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

// flagValues holds command line overrides for the loaded config
type flagValues struct {
	backends         []string
	workers          int
	parallelBackends bool
	timeout          time.Duration
	rateInterval     time.Duration
	template         string
	templateDir      string
	logFile          string
	metricsFile      string
	verbose          bool
}

func newRootCmd() *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:   "videoextend [folder]",
		Short: "Imagine a slapstick continuation for every video shot in a folder tree",
		Long: `videoextend looks for folders holding at least two video frames, sends the
first and last frame of each to a list of vision models and writes their
continuation prompts to video_prompt.md next to the frames.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			} else {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				root = wd
			}
			return run(cmd.Context(), cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&flags.backends, "backend", "b", nil, "Backend to query as provider/model, repeatable (replaces the default list)")
	f.IntVarP(&flags.workers, "workers", "w", 4, "Number of frame pairs processed concurrently")
	f.BoolVar(&flags.parallelBackends, "parallel-backends", false, "Query all backends of a pair concurrently")
	f.DurationVar(&flags.timeout, "timeout", 2*time.Minute, "Timeout for a single backend call")
	f.DurationVar(&flags.rateInterval, "rate-interval", 0, "Minimum spacing between backend calls (0 disables)")
	f.StringVarP(&flags.template, "template", "t", "video", "Name of the prompt template")
	f.StringVar(&flags.templateDir, "template-dir", "", "Directory holding prompt templates (default: the llm templates directory)")
	f.StringVar(&flags.logFile, "log-file", "videoextend.log", "Debug log file (empty disables it)")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Show debug logs on the console")

	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
