package arr

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/goccy/go-json"
	mhttp "github.com/kasuboski/watchlistarr/pkg/http"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
	"go.uber.org/zap"
)

// Add resolves entry against the manager's metadata index and adds it unless the
// library already holds a title sharing any of the manager's id namespaces.
// AlreadyExists is a successful outcome. Rejected adds are not retried.
func (c *Client) Add(ctx context.Context, entry watchlist.Entry) (AddResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("manager", c.flavor.name),
		zap.String("title", entry.Title),
		zap.String("entry_id", entry.ID))

	if entry.Kind != c.flavor.kind {
		return AddResult{}, syncerr.E(syncerr.KindMismatch, c.op("add"),
			fmt.Errorf("%s entry sent to %s manager", entry.Kind, c.flavor.kind))
	}

	match, err := c.Lookup(ctx, entry.Title, entry.Year)
	if err != nil {
		return AddResult{}, err
	}

	library, err := c.ListLibrary(ctx)
	if err != nil {
		return AddResult{}, err
	}

	for _, rec := range library {
		if rec.Shares(match.ExternalIDs, c.flavor.namespaces) {
			log.Infow("title already in library, skipping", zap.Int("library_id", rec.ID))
			return AddResult{Status: AlreadyExists, Match: match}, nil
		}
	}

	opts, err := c.ResolvePlacementOptions(ctx)
	if err != nil {
		return AddResult{}, err
	}
	placement := c.ResolvePlacement(ctx, opts)

	log.Infow("adding title",
		zap.Int("quality_profile_id", placement.QualityProfileID),
		zap.String("root_folder_path", placement.RootFolderPath),
		zap.Ints("tags", placement.Tags))

	body, err := c.addRequest(match, placement)
	if err != nil {
		return AddResult{}, syncerr.E(syncerr.Unknown, c.op("add"), err)
	}

	err = c.http.PostJSON(ctx, c.endpoint(c.flavor.collection), body, nil, mhttp.SetQueryParam("apikey", c.apiKey))
	if err != nil {
		var statusErr *mhttp.StatusError
		if errors.As(err, &statusErr) {
			return AddResult{}, syncerr.Rejected(c.op("add"), err, statusErr.Body)
		}
		return AddResult{}, classify(c.op("add"), err)
	}

	log.Infow("added title", zap.String("match", match.Title))
	return AddResult{Status: Added, Match: match}, nil
}

// addRequest overlays the canonical record, placement and add options on the
// lookup record's remaining fields
func (c *Client) addRequest(match LookupResult, p Placement) (map[string]json.RawMessage, error) {
	body := make(map[string]json.RawMessage, len(match.Extra)+16)
	maps.Copy(body, match.Extra)

	fields := map[string]any{
		"title":            match.Title,
		"sortTitle":        match.SortTitle,
		"year":             match.Year,
		"qualityProfileId": p.QualityProfileID,
		"rootFolderPath":   p.RootFolderPath,
		"monitored":        true,
		"tags":             p.Tags,
		"addOptions":       c.addOptions(),
	}

	if match.IMDB != "" {
		fields["imdbId"] = match.IMDB
	}
	if c.flavor.kind == watchlist.Movie {
		fields["originalTitle"] = match.OriginalTitle
	}
	for ns, key := range map[Namespace]string{TMDB: "tmdbId", TVDB: "tvdbId"} {
		if id, ok := match.Get(ns); ok {
			fields[key] = id
		}
	}

	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", k, err)
		}
		body[k] = b
	}

	return body, nil
}

func (c *Client) addOptions() map[string]any {
	if c.flavor.kind == watchlist.Movie {
		return map[string]any{"searchForMovie": true}
	}

	return map[string]any{
		"monitor":                  c.seasonMonitoring,
		"searchForMissingEpisodes": true,
	}
}
