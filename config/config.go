package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Interval Interval `json:"interval" yaml:"interval" mapstructure:"interval"`
	Sonarr   Sonarr   `json:"sonarr" yaml:"sonarr" mapstructure:"sonarr"`
	Radarr   Radarr   `json:"radarr" yaml:"radarr" mapstructure:"radarr"`
	Plex     Plex     `json:"plex" yaml:"plex" mapstructure:"plex"`
	Delete   Delete   `json:"delete" yaml:"delete" mapstructure:"delete"`
	HTTP     HTTP     `json:"http" yaml:"http" mapstructure:"http"`
	Sync     Sync     `json:"sync" yaml:"sync" mapstructure:"sync"`
	Server   Server   `json:"server" yaml:"server" mapstructure:"server"`
	Logging  Logging  `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// Interval is the refresh interval of the incremental watchlist sync
type Interval struct {
	Seconds uint64 `json:"seconds" yaml:"seconds" mapstructure:"seconds" validate:"gte=1"`
}

// Sonarr configures the show manager. An empty BaseURL disables show syncing.
type Sonarr struct {
	BaseURL          string   `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl" validate:"omitempty,url"`
	APIKey           string   `json:"apikey" yaml:"apikey" mapstructure:"apikey" validate:"required_with=BaseURL"`
	QualityProfile   string   `json:"qualityProfile" yaml:"qualityProfile" mapstructure:"qualityProfile"`
	RootFolder       string   `json:"rootFolder" yaml:"rootFolder" mapstructure:"rootFolder"`
	BypassIgnored    bool     `json:"bypassIgnored" yaml:"bypassIgnored" mapstructure:"bypassIgnored"`
	SeasonMonitoring string   `json:"seasonMonitoring" yaml:"seasonMonitoring" mapstructure:"seasonMonitoring" validate:"omitempty,oneof=all future missing existing firstSeason latestSeason pilot none"`
	Tags             []string `json:"tags" yaml:"tags" mapstructure:"tags"`
}

// Radarr configures the movie manager. An empty BaseURL disables movie syncing.
type Radarr struct {
	BaseURL        string   `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl" validate:"omitempty,url"`
	APIKey         string   `json:"apikey" yaml:"apikey" mapstructure:"apikey" validate:"required_with=BaseURL"`
	QualityProfile string   `json:"qualityProfile" yaml:"qualityProfile" mapstructure:"qualityProfile"`
	RootFolder     string   `json:"rootFolder" yaml:"rootFolder" mapstructure:"rootFolder"`
	BypassIgnored  bool     `json:"bypassIgnored" yaml:"bypassIgnored" mapstructure:"bypassIgnored"`
	Tags           []string `json:"tags" yaml:"tags" mapstructure:"tags"`
}

// Configured reports whether show syncing is enabled
func (s Sonarr) Configured() bool {
	return s.BaseURL != ""
}

// Configured reports whether movie syncing is enabled
func (r Radarr) Configured() bool {
	return r.BaseURL != ""
}

type Plex struct {
	Token          string `json:"token" yaml:"token" mapstructure:"token" validate:"required"`
	SkipFriendSync bool   `json:"skipfriendsync" yaml:"skipfriendsync" mapstructure:"skipfriendsync"`
	BaseURL        string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl" validate:"required,url"`
	PageSize       int    `json:"pageSize" yaml:"pageSize" mapstructure:"pageSize" validate:"gte=1"`
}

// Delete houses the removal sync gates
type Delete struct {
	Movie          bool           `json:"movie" yaml:"movie" mapstructure:"movie"`
	EndedShow      bool           `json:"endedShow" yaml:"endedShow" mapstructure:"endedShow"`
	ContinuingShow bool           `json:"continuingShow" yaml:"continuingShow" mapstructure:"continuingShow"`
	DeleteFiles    bool           `json:"deleteFiles" yaml:"deleteFiles" mapstructure:"deleteFiles"`
	Interval       DeleteInterval `json:"interval" yaml:"interval" mapstructure:"interval"`
}

type DeleteInterval struct {
	Days uint64 `json:"days" yaml:"days" mapstructure:"days" validate:"gte=1"`
}

// Enabled reports whether any removal gate is set
func (d Delete) Enabled() bool {
	return d.Movie || d.EndedShow || d.ContinuingShow
}

type HTTP struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// MaxRetries is how many times a 429 is retried after the first attempt
	MaxRetries int `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries" validate:"gte=0"`
}

type Sync struct {
	Spacing time.Duration `json:"spacing" yaml:"spacing" mapstructure:"spacing" validate:"gte=0"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

type Logging struct {
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `json:"json" yaml:"json" mapstructure:"json"`
	File  string `json:"file" yaml:"file" mapstructure:"file"`
}

// RefreshInterval is the incremental sync interval
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Interval.Seconds) * time.Second
}

// DeleteInterval is the removal sync interval
func (c Config) DeleteInterval() time.Duration {
	return time.Duration(c.Delete.Interval.Days) * 24 * time.Hour
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}

// Load reads a configuration and validates it
func Load(cu ConfigUnmarshaler) (Config, error) {
	c, err := New(cu)
	if err != nil {
		return c, err
	}

	return c, Validate(c)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for values the service cannot start with
func Validate(c Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
