package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/rigbot/internal/catalog"
	"github.com/nextlevelbuilder/rigbot/internal/channels/telegram"
	"github.com/nextlevelbuilder/rigbot/internal/config"
	"github.com/nextlevelbuilder/rigbot/internal/flow"
	"github.com/nextlevelbuilder/rigbot/internal/pricing"
	"github.com/nextlevelbuilder/rigbot/internal/review"
	"github.com/nextlevelbuilder/rigbot/internal/session"
	"github.com/nextlevelbuilder/rigbot/internal/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, web viewer and scheduled price refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram token is not set (config or %s)", config.EnvBotToken)
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Open(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	if _, err := os.Stat(cfg.Catalog.CSVPath); err == nil {
		if _, _, err := cat.ImportCSV(ctx, cfg.Catalog.CSVPath); err != nil {
			slog.Warn("initial catalog import failed", "path", cfg.Catalog.CSVPath, "error", err)
		}
	}

	store, err := session.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	sessions, err := session.NewCache(store, cfg.Sessions.CacheSize)
	if err != nil {
		return fmt.Errorf("create session cache: %w", err)
	}

	reviewer := review.New(review.Config{
		APIKey:    cfg.AI.APIKey,
		APIBase:   cfg.AI.APIBase,
		Model:     cfg.AI.Model,
		TimeoutMs: cfg.AI.TimeoutMs,
	})

	tracker := flow.NewTracker(sessions, cat, reviewer)

	channel, err := telegram.NewChannel(cfg.Telegram.Token, tracker)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return channel.Run(gctx)
	})

	g.Go(func() error {
		return web.NewServer(cfg.Web.Addr, store).Run(gctx)
	})

	if cfg.Refresh.Enabled {
		scraper := pricing.NewScraper(cfg.Refresh.PriceSelector,
			time.Duration(cfg.Refresh.TimeoutMs)*time.Millisecond)
		refresher := pricing.NewRefresher(cat, scraper,
			time.Duration(cfg.Refresh.MinDelayMs)*time.Millisecond,
			time.Duration(cfg.Refresh.MaxDelayMs)*time.Millisecond,
			cfg.Refresh.Divisors)
		schedule, err := pricing.NewSchedule(refresher, cfg.Refresh.Schedule)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return schedule.Run(gctx)
		})
	}

	if cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(cat, cfg.Catalog.CSVPath)
		if err != nil {
			return fmt.Errorf("create catalog watcher: %w", err)
		}
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	slog.Info("rigbot started")

	err = g.Wait()

	// Persist whatever is still dirty in the cache before exiting.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sessions.FlushAll(flushCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("rigbot stopped")
	return nil
}
