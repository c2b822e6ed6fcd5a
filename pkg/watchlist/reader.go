package watchlist

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kasuboski/watchlistarr/config"
	mhttp "github.com/kasuboski/watchlistarr/pkg/http"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/pagination"
	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://metadata.provider.plex.tv"
	DefaultPageSize = 50

	watchlistPath = "/library/sections/watchlist/all"
)

// Reader fetches and normalizes the watchlist of the configured account
type Reader struct {
	client         *mhttp.Client
	baseURL        string
	token          string
	pageSize       int
	maxPages       int
	skipFriendSync bool
	now            func() time.Time
}

// NewReader creates a watchlist reader for the account owning cfg.Token
func NewReader(client *mhttp.Client, cfg config.Plex) *Reader {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Reader{
		client:         client,
		baseURL:        baseURL,
		token:          cfg.Token,
		pageSize:       pageSize,
		maxPages:       pagination.MaxPages,
		skipFriendSync: cfg.SkipFriendSync,
		now:            time.Now,
	}
}

// Read returns the primary watchlist, followed by collaborator watchlists when
// includeCollaborators is set and friend sync is not disabled
func (r *Reader) Read(ctx context.Context, includeCollaborators bool) ([]Entry, error) {
	log := logger.FromCtx(ctx)

	entries, err := r.FetchWatchlist(ctx)
	if err != nil {
		return nil, err
	}

	if !includeCollaborators || r.skipFriendSync {
		return entries, nil
	}

	friends, err := r.FetchCollaboratorWatchlists(ctx)
	if err != nil {
		return nil, err
	}

	merged := merge(entries, friends)
	log.Debugw("merged collaborator watchlists",
		zap.Int("primary", len(entries)),
		zap.Int("collaborators", len(friends)),
		zap.Int("total", len(merged)))

	return merged, nil
}

// FetchWatchlist pages through the primary account's watchlist. A host that
// does not echo the requested window is read as a single page.
func (r *Reader) FetchWatchlist(ctx context.Context) ([]Entry, error) {
	log := logger.FromCtx(ctx)
	observedAt := r.now()

	var entries []Entry
	records := 0
	window := pagination.First(r.pageSize)
	for pages := 1; ; pages++ {
		page, err := r.fetchPage(ctx, window, observedAt)
		if err != nil {
			return nil, err
		}

		if !window.Honored(page.Offset, page.Paged, page.Records) {
			if window.Offset == 0 {
				entries = append(entries, page.Entries...)
				records += page.Records
			}
			log.Debugw("watchlist host ignored paging", zap.Int("offset", window.Offset), zap.Int("records", page.Records))
			break
		}
		entries = append(entries, page.Entries...)
		records += page.Records

		next, more := window.Next(page.Records, page.TotalSize)
		if !more {
			break
		}
		if pages >= r.maxPages {
			log.Warnw("watchlist page limit reached", zap.Int("pages", pages), zap.Int("records", records))
			break
		}
		window = next
	}

	entries = merge(entries, nil)
	log.Debugw("fetched watchlist", zap.Int("entries", len(entries)), zap.Int("records", records))
	return entries, nil
}

// FetchCollaboratorWatchlists returns the watchlists of the account's friends.
// TODO: merge friend watchlists once the collaborator endpoint and its ownership semantics are decided.
func (r *Reader) FetchCollaboratorWatchlists(ctx context.Context) ([]Entry, error) {
	log := logger.FromCtx(ctx)
	if r.skipFriendSync {
		log.Debug("skipping collaborator watchlists as configured")
		return nil, nil
	}

	log.Debug("collaborator watchlists are not synced yet")
	return nil, nil
}

func (r *Reader) fetchPage(ctx context.Context, window pagination.Window, observedAt time.Time) (Page, error) {
	b, err := r.client.Get(ctx, r.baseURL+watchlistPath,
		mhttp.SetHeader("Accept", "application/xml"),
		mhttp.SetQueryParam("X-Plex-Token", r.token),
		mhttp.SetQueryParam("X-Plex-Container-Start", strconv.Itoa(window.Offset)),
		mhttp.SetQueryParam("X-Plex-Container-Size", strconv.Itoa(window.Size)),
	)
	if err != nil {
		return Page{}, syncerr.E(syncerr.SourceUnavailable, "watchlist.fetch", err)
	}

	page, err := ParseDocument(b, SelfUser, observedAt)
	if err != nil {
		return Page{}, syncerr.E(syncerr.ParseFailure, "watchlist.parse", err)
	}

	return page, nil
}

// merge appends extra to entries, dropping keys already present
func merge(entries, extra []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries)+len(extra))
	merged := make([]Entry, 0, len(entries)+len(extra))

	for _, list := range [][]Entry{entries, extra} {
		for _, e := range list {
			if _, ok := seen[e.Key()]; ok {
				continue
			}
			seen[e.Key()] = struct{}{}
			merged = append(merged, e)
		}
	}

	return merged
}
