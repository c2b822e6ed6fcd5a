package cmd

import (
	"context"
	"strings"

	"github.com/kasuboski/watchlistarr/pkg/arr"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lookupYear int

// lookupCmd groups manager lookups
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "resolve a title the way a sync would",
}

var lookupMovieCmd = &cobra.Command{
	Use:   "movie <title>",
	Short: "look up a movie in radarr",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLookup(cmd, args, func(c components) *arr.Client { return c.movies }, "radarr")
	},
}

var lookupTVCmd = &cobra.Command{
	Use:   "tv <title>",
	Short: "look up a show in sonarr",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLookup(cmd, args, func(c components) *arr.Client { return c.shows }, "sonarr")
	},
}

func runLookup(cmd *cobra.Command, args []string, pick func(components) *arr.Client, name string) {
	cfg := loadConfig()
	log := logger.Get()

	client := pick(buildComponents(cfg))
	if client == nil {
		log.Fatalw("manager is not configured", zap.String("manager", name))
	}

	ctx := logger.WithCtx(context.Background(), log)
	res, err := client.Lookup(ctx, strings.Join(args, " "), lookupYear)
	if err != nil {
		log.Fatalw("lookup failed", zap.Error(err))
	}

	if err := printLookup(cmd.OutOrStdout(), client.Name(), res); err != nil {
		log.Fatalw("failed to print lookup", zap.Error(err))
	}
}

func init() {
	lookupCmd.PersistentFlags().IntVar(&lookupYear, "year", 0, "release year")
	lookupCmd.AddCommand(lookupMovieCmd, lookupTVCmd)
	rootCmd.AddCommand(lookupCmd)
}
