package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/rigbot/internal/config"
	"github.com/nextlevelbuilder/rigbot/internal/session"
	"github.com/nextlevelbuilder/rigbot/internal/web"
)

func webCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Run only the build viewer web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := session.OpenSQLite(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = web.NewServer(cfg.Web.Addr, store).Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
