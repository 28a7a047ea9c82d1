package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shisho/internal/logging"
	"shisho/internal/store"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Validate AniDB credentials and store them for later runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, ctx)
		},
	}
}

func runLogin(cmd *cobra.Command, cmdCtx *commandContext) error {
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

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer st.Close()

	creds, err := promptCredentials(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	client, err := dialClient(cfg, creds, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer closeCancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("close client", logging.Error(err))
		}
	}()

	if err := validateAndStore(signalCtx, client, st, creds); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Login verified; credentials stored.")
	return nil
}
