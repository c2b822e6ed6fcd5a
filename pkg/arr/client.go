// Package arr adapts the movie and show library managers' v3 REST APIs.
package arr

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/kasuboski/watchlistarr/config"
	mhttp "github.com/kasuboski/watchlistarr/pkg/http"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
	"go.uber.org/zap"
)

const (
	apiPrefix = "/api/v3"

	// fallbackTierID is used when a manager reports no quality profiles
	fallbackTierID = 1

	DefaultMovieRoot  = "/mnt/shared/movies"
	DefaultSeriesRoot = "/tv"
	DefaultMonitor    = "all"
)

// flavor holds what differs between the movie and show managers
type flavor struct {
	kind        watchlist.Kind
	name        string
	collection  string
	defaultRoot string
	// namespaces are the id namespaces an existing library record may match on
	namespaces []Namespace
}

var (
	movieFlavor = flavor{
		kind:        watchlist.Movie,
		name:        "radarr",
		collection:  "movie",
		defaultRoot: DefaultMovieRoot,
		namespaces:  []Namespace{TMDB},
	}
	seriesFlavor = flavor{
		kind:        watchlist.Show,
		name:        "sonarr",
		collection:  "series",
		defaultRoot: DefaultSeriesRoot,
		namespaces:  []Namespace{TVDB, TMDB},
	}
)

// Client talks to one library manager. It is built once and shared by every reconciliation pass.
type Client struct {
	http    *mhttp.Client
	flavor  flavor
	baseURL string
	apiKey  string

	qualityProfile   string
	rootFolder       string
	tags             []string
	seasonMonitoring string
	bypassIgnored    bool
}

// NewMovieClient creates an adapter for the movie manager
func NewMovieClient(client *mhttp.Client, cfg config.Radarr) *Client {
	return &Client{
		http:           client,
		flavor:         movieFlavor,
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		qualityProfile: cfg.QualityProfile,
		rootFolder:     cfg.RootFolder,
		tags:           cfg.Tags,
		bypassIgnored:  cfg.BypassIgnored,
	}
}

// NewSeriesClient creates an adapter for the show manager
func NewSeriesClient(client *mhttp.Client, cfg config.Sonarr) *Client {
	monitor := cfg.SeasonMonitoring
	if monitor == "" {
		monitor = DefaultMonitor
	}

	return &Client{
		http:             client,
		flavor:           seriesFlavor,
		baseURL:          strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:           cfg.APIKey,
		qualityProfile:   cfg.QualityProfile,
		rootFolder:       cfg.RootFolder,
		tags:             cfg.Tags,
		seasonMonitoring: monitor,
		bypassIgnored:    cfg.BypassIgnored,
	}
}

// Kind is the kind of entry this manager accepts
func (c *Client) Kind() watchlist.Kind {
	return c.flavor.kind
}

func (c *Client) Name() string {
	return c.flavor.name
}

// BypassIgnored reports the configured id bypass flag. It is carried but not acted on.
func (c *Client) BypassIgnored() bool {
	return c.bypassIgnored
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + apiPrefix + "/" + path
}

func (c *Client) op(name string) string {
	return c.flavor.name + "." + name
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any, editors ...mhttp.RequestEditorFn) error {
	editors = append(editors, mhttp.SetQueryParam("apikey", c.apiKey))
	if err := c.http.GetJSON(ctx, c.endpoint(path), out, editors...); err != nil {
		return classify(op, err)
	}
	return nil
}

// classify tags a transport failure for a read operation
func classify(op string, err error) error {
	if mhttp.IsDecode(err) {
		return syncerr.E(syncerr.ParseFailure, op, err)
	}
	return syncerr.E(syncerr.ManagerUnavailable, op, err)
}

// ListLibrary returns every title currently in the manager's library
func (c *Client) ListLibrary(ctx context.Context) ([]LibraryRecord, error) {
	var records []LibraryRecord
	if err := c.getJSON(ctx, c.op("library"), c.flavor.collection, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Lookup searches the manager's metadata index and returns the top ranked result
func (c *Client) Lookup(ctx context.Context, title string, year int) (LookupResult, error) {
	log := logger.FromCtx(ctx)
	op := c.op("lookup")

	term := watchlist.Entry{Title: title, Year: year}.SearchTerm()
	log.Debugw("looking up title", zap.String("manager", c.flavor.name), zap.String("term", term))

	var results []json.RawMessage
	err := c.getJSON(ctx, op, c.flavor.collection+"/lookup", &results, mhttp.SetQueryParam("term", term))
	if err != nil {
		return LookupResult{}, err
	}

	if len(results) == 0 {
		return LookupResult{}, syncerr.E(syncerr.NotFound, op, fmt.Errorf("no results for %q", term))
	}

	top, err := decodeLookup(results[0])
	if err != nil {
		return LookupResult{}, syncerr.E(syncerr.ParseFailure, op, err)
	}

	log.Debugw("found title",
		zap.String("manager", c.flavor.name),
		zap.String("title", top.Title),
		zap.Int("year", top.Year))
	return top, nil
}

func decodeLookup(raw json.RawMessage) (LookupResult, error) {
	var result LookupResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("failed to decode lookup result: %w", err)
	}

	if err := json.Unmarshal(raw, &result.Extra); err != nil {
		return result, fmt.Errorf("failed to decode lookup result fields: %w", err)
	}
	for _, k := range canonicalFields {
		delete(result.Extra, k)
	}

	return result, nil
}

// QualityProfiles returns the manager's quality tiers in its ranked order
func (c *Client) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := c.getJSON(ctx, c.op("qualityprofile"), "qualityprofile", &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// RootFolders returns the manager's storage roots in its ranked order
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var roots []RootFolder
	if err := c.getJSON(ctx, c.op("rootfolder"), "rootfolder", &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// Tags returns the manager's tags keyed by label
func (c *Client) Tags(ctx context.Context) (map[string]int, error) {
	var tags []Tag
	if err := c.getJSON(ctx, c.op("tag"), "tag", &tags); err != nil {
		return nil, err
	}

	byLabel := make(map[string]int, len(tags))
	for _, t := range tags {
		byLabel[t.Label] = t.ID
	}
	return byLabel, nil
}

// ResolvePlacementOptions takes a live snapshot of the manager's tiers, roots and tags.
// A tag listing failure leaves Tags empty instead of failing the snapshot.
func (c *Client) ResolvePlacementOptions(ctx context.Context) (PlacementOptions, error) {
	log := logger.FromCtx(ctx)

	tiers, err := c.QualityProfiles(ctx)
	if err != nil {
		return PlacementOptions{}, err
	}

	roots, err := c.RootFolders(ctx)
	if err != nil {
		return PlacementOptions{}, err
	}

	tags, err := c.Tags(ctx)
	if err != nil {
		log.Warnw("failed to list tags, adding without tags", zap.String("manager", c.flavor.name), zap.Error(err))
		tags = map[string]int{}
	}

	return PlacementOptions{Tiers: tiers, Roots: roots, Tags: tags}, nil
}

// ResolvePlacement applies the configured tier, root and tag names to opts
func (c *Client) ResolvePlacement(ctx context.Context, opts PlacementOptions) Placement {
	log := logger.FromCtx(ctx).With(zap.String("manager", c.flavor.name))

	p := Placement{
		QualityProfileID: fallbackTierID,
		Tags:             []int{},
		SeasonMonitoring: c.seasonMonitoring,
	}

	if len(opts.Tiers) > 0 {
		p.QualityProfileID = opts.Tiers[0].ID
	}
	if c.qualityProfile != "" {
		matched := false
		for _, t := range opts.Tiers {
			if t.Name == c.qualityProfile {
				p.QualityProfileID = t.ID
				matched = true
				break
			}
		}
		if !matched {
			log.Warnw("quality profile not found, using default",
				zap.String("quality_profile", c.qualityProfile),
				zap.Int("quality_profile_id", p.QualityProfileID))
		}
	}

	p.RootFolderPath = c.resolveRoot(opts.Roots, log)

	for _, name := range c.tags {
		if id, ok := opts.Tags[name]; ok {
			p.Tags = append(p.Tags, id)
		}
	}

	return p
}

func (c *Client) resolveRoot(roots []RootFolder, log *zap.SugaredLogger) string {
	if len(roots) == 0 {
		if c.rootFolder != "" {
			return c.rootFolder
		}
		return c.flavor.defaultRoot
	}

	if c.rootFolder == "" {
		return roots[0].Path
	}

	for _, r := range roots {
		if r.Path == c.rootFolder {
			return r.Path
		}
	}

	log.Warnw("root folder not found, using default",
		zap.String("root_folder", c.rootFolder),
		zap.String("root_folder_path", roots[0].Path))
	return roots[0].Path
}

// String identifies the manager without its credentials
func (c *Client) String() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.flavor.name
	}
	return c.flavor.name + "@" + u.Host
}
