package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"shisho/internal/config"
	"shisho/internal/services/anidb"
	"shisho/internal/store"
)

func clientSettings(cfg *config.Config) anidb.Settings {
	return anidb.Settings{
		ClientName:      cfg.AniDB.ClientName,
		ClientVersion:   cfg.AniDB.ClientVersion,
		ProtocolVersion: cfg.AniDB.ProtocolVersion,
		RequestInterval: cfg.RequestInterval(),
		FloodWait:       cfg.FloodWait(),
		RetryAttempts:   cfg.AniDB.RetryAttempts,
	}
}

// dialClient opens the UDP transport and wraps it in a protocol client.
func dialClient(cfg *config.Config, creds anidb.Credentials, logger *slog.Logger) (*anidb.Client, error) {
	transport, err := anidb.DialUDP(cfg.AniDB.Server, cfg.AniDB.Port, cfg.AniDB.LocalPort, cfg.Timeout())
	if err != nil {
		return nil, fmt.Errorf("dial %s:%d: %w", cfg.AniDB.Server, cfg.AniDB.Port, err)
	}
	return anidb.New(clientSettings(cfg), creds, transport, anidb.WithLogger(logger)), nil
}

// ensureCredentials returns the login pair to authenticate with, prompting
// when none is stored or the user asked to re-enter it. The second return
// reports whether the pair came from a prompt and still needs validating
// and persisting.
func ensureCredentials(ctx context.Context, cmd *cobra.Command, st *store.Store, forcePrompt bool) (anidb.Credentials, bool, error) {
	if !forcePrompt {
		stored, err := st.Credentials(ctx)
		if err != nil {
			return anidb.Credentials{}, false, fmt.Errorf("read stored credentials: %w", err)
		}
		if stored != nil {
			return anidb.Credentials{Username: stored.Username, Password: stored.Password}, false, nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "No stored AniDB login; enter credentials once and they will be remembered.")
	}
	creds, err := promptCredentials(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return anidb.Credentials{}, false, err
	}
	return creds, true, nil
}

// validateAndStore checks a freshly prompted login against the server before
// persisting it. Credentials are only remembered once they have worked.
func validateAndStore(ctx context.Context, client *anidb.Client, st *store.Store, creds anidb.Credentials) error {
	if err := client.Login(ctx); err != nil {
		return err
	}
	if err := st.PutCredentials(ctx, store.Credentials{Username: creds.Username, Password: creds.Password}); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}
