package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/manager"
	"github.com/kasuboski/watchlistarr/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the sync loops",
	Long:  `run the token check, incremental, full and removal sync loops until interrupted`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		log := logger.Get()

		c := buildComponents(cfg)
		if c.movies == nil && c.shows == nil {
			log.Warn("neither radarr nor sonarr is configured, entries will only be skipped")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithCtx(ctx, log)

		scheduler := manager.NewScheduler(c.engine, manager.ScheduleFromConfig(cfg))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})

		if cfg.Server.Port > 0 {
			srv := server.New(log, scheduler)
			g.Go(func() error {
				return srv.Serve(gctx, cfg.Server.Port)
			})
		}

		if err := g.Wait(); err != nil {
			log.Fatalw("stopped with error", zap.Error(err))
		}
		log.Info("stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
