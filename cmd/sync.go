package cmd

import (
	"context"

	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncFull bool

// syncCmd runs one reconciliation pass
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "run one reconciliation pass",
	Long:  `read the watchlist once and add every missing title to the configured managers`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		log := logger.Get()

		c := buildComponents(cfg)
		ctx := logger.WithCtx(context.Background(), log)

		report, err := c.engine.Sync(ctx, syncFull)
		if err != nil {
			log.Fatalw("failed to read watchlist", zap.Error(err))
		}

		if err := printReport(cmd.OutOrStdout(), report); err != nil {
			log.Fatalw("failed to print report", zap.Error(err))
		}
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "include collaborator watchlists")
	rootCmd.AddCommand(syncCmd)
}
