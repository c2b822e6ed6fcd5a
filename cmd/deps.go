package cmd

import (
	"github.com/kasuboski/watchlistarr/config"
	"github.com/kasuboski/watchlistarr/pkg/arr"
	mhttp "github.com/kasuboski/watchlistarr/pkg/http"
	"github.com/kasuboski/watchlistarr/pkg/manager"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
)

// components are the long lived adapters shared by every pass
type components struct {
	reader *watchlist.Reader
	movies *arr.Client
	shows  *arr.Client
	engine *manager.Engine
}

func buildComponents(cfg config.Config) components {
	client := mhttp.New(cfg.HTTP.Timeout, cfg.HTTP.MaxRetries)

	c := components{
		reader: watchlist.NewReader(client, cfg.Plex),
	}

	var targets manager.Targets
	if cfg.Radarr.Configured() {
		c.movies = arr.NewMovieClient(client, cfg.Radarr)
		targets.Movie = c.movies
	}
	if cfg.Sonarr.Configured() {
		c.shows = arr.NewSeriesClient(client, cfg.Sonarr)
		targets.Show = c.shows
	}

	c.engine = manager.NewEngine(c.reader, targets, cfg.Sync.Spacing, cfg.Delete)
	return c
}
