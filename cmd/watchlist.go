package cmd

import (
	"context"
	"time"

	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchlistFull bool

// watchlistCmd prints the normalized watchlist
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "print the watchlist",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		log := logger.Get()

		c := buildComponents(cfg)
		ctx := logger.WithCtx(context.Background(), log)

		entries, err := c.reader.Read(ctx, watchlistFull)
		if err != nil {
			log.Fatalw("failed to read watchlist", zap.Error(err))
		}

		if err := printEntries(cmd.OutOrStdout(), entries, time.Now()); err != nil {
			log.Fatalw("failed to print watchlist", zap.Error(err))
		}
	},
}

func init() {
	watchlistCmd.Flags().BoolVar(&watchlistFull, "full", false, "include collaborator watchlists")
	rootCmd.AddCommand(watchlistCmd)
}
