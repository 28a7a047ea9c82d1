package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"shisho/internal/logging"
	"shisho/internal/resolver"
	"shisho/internal/services/ed2k"
	"shisho/internal/store"
	"shisho/internal/workflow"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var promptLogin bool

	cmd := &cobra.Command{
		Use:   "rename PATH [PATH...]",
		Short: "Identify files by content hash and rename them",
		Long: "Identify each file (or every file in each directory) against AniDB " +
			"by its ed2k hash and rename it to the canonical episode name.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, ctx, args, dryRun, promptLogin)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show planned renames without touching files")
	cmd.Flags().BoolVar(&promptLogin, "prompt-login", false, "Re-enter AniDB credentials instead of using the stored ones")
	return cmd
}

func runRename(cmd *cobra.Command, cmdCtx *commandContext, args []string, dryRun, promptLogin bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another shisho instance is already running")
	}
	defer lock.Unlock()

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer st.Close()

	creds, prompted, err := ensureCredentials(signalCtx, cmd, st, promptLogin)
	if err != nil {
		return err
	}

	client, err := dialClient(cfg, creds, logger)
	if err != nil {
		return err
	}
	defer func() {
		// Log out even when the run was interrupted.
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer closeCancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("close client", logging.Error(err))
		}
	}()

	if prompted {
		if err := validateAndStore(signalCtx, client, st, creds); err != nil {
			return err
		}
	}

	hasher := ed2k.NewCLI(ed2k.WithBinary(cfg.Ed2k.Binary))
	res := resolver.New(hasher, st, client, resolver.WithLogger(logger))
	runner := workflow.NewRunner(res,
		workflow.WithLogger(logger),
		workflow.WithDryRun(dryRun),
		workflow.WithProgress(newProgressPrinter(cmd.ErrOrStderr())))

	var total workflow.Summary
	start := time.Now()
	for _, path := range args {
		result, err := runner.Run(signalCtx, path)
		if err != nil {
			return err
		}
		renderReport(cmd.OutOrStdout(), result)
		total = addSummaries(total, result.Summary)
	}

	logger.Info("all paths processed", logging.Duration("elapsed", time.Since(start)))
	if !total.Clean() {
		failed := total.Unidentified + total.Collisions + total.Failed
		return fmt.Errorf("%d file(s) could not be renamed", failed)
	}
	return nil
}

func addSummaries(a, b workflow.Summary) workflow.Summary {
	return workflow.Summary{
		Renamed:      a.Renamed + b.Renamed,
		Planned:      a.Planned + b.Planned,
		Unchanged:    a.Unchanged + b.Unchanged,
		Unidentified: a.Unidentified + b.Unidentified,
		Collisions:   a.Collisions + b.Collisions,
		Failed:       a.Failed + b.Failed,
	}
}
