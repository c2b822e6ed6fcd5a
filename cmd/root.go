package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/kasuboski/watchlistarr/config"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "watchlistarr",
	Short: "sync a plex watchlist into radarr and sonarr",
	Long:  `watchlistarr keeps a plex watchlist mirrored into radarr for movies and sonarr for shows`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

const (
	defaultRefreshSeconds = 10
	defaultDeleteDays     = 7
)

func initConfig() {
	viper.SetConfigFile(cfgFile)

	viper.SetEnvPrefix("WATCHLISTARR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("interval.seconds", defaultRefreshSeconds)

	viper.SetDefault("radarr.baseUrl", "")
	viper.SetDefault("radarr.apikey", "")
	viper.SetDefault("radarr.qualityProfile", "")
	viper.SetDefault("radarr.rootFolder", "")
	viper.SetDefault("radarr.bypassIgnored", false)
	viper.SetDefault("radarr.tags", []string{})

	viper.SetDefault("sonarr.baseUrl", "")
	viper.SetDefault("sonarr.apikey", "")
	viper.SetDefault("sonarr.qualityProfile", "")
	viper.SetDefault("sonarr.rootFolder", "")
	viper.SetDefault("sonarr.bypassIgnored", false)
	viper.SetDefault("sonarr.seasonMonitoring", "all")
	viper.SetDefault("sonarr.tags", []string{})

	viper.SetDefault("plex.token", "")
	viper.SetDefault("plex.skipfriendsync", false)
	viper.SetDefault("plex.baseUrl", watchlist.DefaultBaseURL)
	viper.SetDefault("plex.pageSize", watchlist.DefaultPageSize)

	viper.SetDefault("delete.movie", false)
	viper.SetDefault("delete.endedShow", false)
	viper.SetDefault("delete.continuingShow", false)
	viper.SetDefault("delete.deleteFiles", true)
	viper.SetDefault("delete.interval.days", defaultDeleteDays)

	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.maxRetries", 3)

	viper.SetDefault("sync.spacing", 100*time.Millisecond)

	viper.SetDefault("server.port", 0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)
	viper.SetDefault("logging.file", "")
}

// loadConfig reads and validates the configuration then applies its logging section.
// An unusable configuration ends the process.
func loadConfig() config.Config {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Get().Fatalw("failed to read configurations", zap.String("file", viper.ConfigFileUsed()), zap.Error(err))
	}

	logger.Init(logger.Options{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.JSON,
		File:  cfg.Logging.File,
	})

	return cfg
}
