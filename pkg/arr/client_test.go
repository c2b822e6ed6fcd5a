package arr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/kasuboski/watchlistarr/config"
	mhttp "github.com/kasuboski/watchlistarr/pkg/http"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testAPIKey = "secret-key"

// fakeManager emulates the v3 API of one manager
type fakeManager struct {
	collection string

	mu      sync.Mutex
	lookups map[string]string
	library string
	tiers   string
	roots   string
	tags    string
	// addStatus is returned for POSTs, 201 when zero
	addStatus int
	addReply  string
	posts     []map[string]any
	terms     []string
}

func newFakeManager(collection string) *fakeManager {
	return &fakeManager{
		collection: collection,
		lookups:    map[string]string{},
		library:    `[]`,
		tiers:      `[{"id":1,"name":"Any"},{"id":4,"name":"HD-1080p"}]`,
		roots:      `[{"id":1,"path":"/data/media"},{"id":2,"path":"/data/other"}]`,
		tags:       `[{"id":7,"label":"watchlist"},{"id":8,"label":"kids"}]`,
	}
}

func (f *fakeManager) Posts() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts
}

func (f *fakeManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("apikey") != testAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/"+f.collection+"/lookup":
		term := r.URL.Query().Get("term")
		f.terms = append(f.terms, term)
		res, ok := f.lookups[term]
		if !ok {
			res = `[]`
		}
		io.WriteString(w, res)
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/"+f.collection:
		io.WriteString(w, f.library)
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/qualityprofile":
		io.WriteString(w, f.tiers)
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/rootfolder":
		io.WriteString(w, f.roots)
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/tag":
		if f.tags == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, f.tags)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v3/"+f.collection:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.posts = append(f.posts, body)

		status := f.addStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		reply := f.addReply
		if reply == "" {
			reply = `{"id":100}`
		}
		io.WriteString(w, reply)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testHTTP() *mhttp.Client {
	return mhttp.New(time.Second, 1)
}

func TestExternalIDs(t *testing.T) {
	var ids ExternalIDs
	require.NoError(t, json.Unmarshal([]byte(`{"tmdbId":438631,"tvdbId":null}`), &ids))

	tmdb, ok := ids.Get(TMDB)
	assert.True(t, ok)
	assert.Equal(t, 438631, tmdb)

	_, ok = ids.Get(TVDB)
	assert.False(t, ok, "null is not an id")

	var zero ExternalIDs
	require.NoError(t, json.Unmarshal([]byte(`{"tmdbId":0}`), &zero))
	_, ok = zero.Get(TMDB)
	assert.False(t, ok, "zero is not an id")

	tests := []struct {
		name       string
		a, b       string
		namespaces []Namespace
		want       bool
	}{
		{"same tmdb", `{"tmdbId":1}`, `{"tmdbId":1}`, []Namespace{TMDB}, true},
		{"different tmdb", `{"tmdbId":1}`, `{"tmdbId":2}`, []Namespace{TMDB}, false},
		{"tvdb outside namespaces", `{"tvdbId":5}`, `{"tvdbId":5}`, []Namespace{TMDB}, false},
		{"tvdb in namespaces", `{"tvdbId":5,"tmdbId":1}`, `{"tvdbId":5,"tmdbId":2}`, []Namespace{TVDB, TMDB}, true},
		{"both missing", `{}`, `{}`, []Namespace{TVDB, TMDB}, false},
		{"zero ids never match", `{"tmdbId":0}`, `{"tmdbId":0}`, []Namespace{TMDB}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a, b ExternalIDs
			require.NoError(t, json.Unmarshal([]byte(tt.a), &a))
			require.NoError(t, json.Unmarshal([]byte(tt.b), &b))
			assert.Equal(t, tt.want, a.Shares(b, tt.namespaces))
		})
	}
}

func TestClient_Lookup(t *testing.T) {
	fake := newFakeManager("movie")
	fake.lookups["Dune 2021"] = `[
		{"title":"Dune","sortTitle":"dune","originalTitle":"Dune","year":2021,"tmdbId":438631,"imdbId":"tt1160419","runtime":155,"images":[{"coverType":"poster"}]},
		{"title":"Dune","year":1984,"tmdbId":841}
	]`
	fake.lookups["Nothing"] = `[]`
	fake.lookups["Garbage"] = `["not a record"]`
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewMovieClient(testHTTP(), config.Radarr{BaseURL: srv.URL, APIKey: testAPIKey})

	t.Run("top ranked result with extra fields", func(t *testing.T) {
		got, err := c.Lookup(context.Background(), "Dune", 2021)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
		assert.Equal(t, "dune", got.SortTitle)
		assert.Equal(t, 2021, got.Year)
		assert.Equal(t, "tt1160419", got.IMDB)

		tmdb, ok := got.Get(TMDB)
		require.True(t, ok)
		assert.Equal(t, 438631, tmdb)

		assert.JSONEq(t, `155`, string(got.Extra["runtime"]))
		assert.JSONEq(t, `[{"coverType":"poster"}]`, string(got.Extra["images"]))
		assert.NotContains(t, got.Extra, "title")
		assert.NotContains(t, got.Extra, "tmdbId")
	})

	t.Run("empty result set is not found", func(t *testing.T) {
		_, err := c.Lookup(context.Background(), "Nothing", 0)
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.NotFound))
	})

	t.Run("undecodable record is a parse failure", func(t *testing.T) {
		_, err := c.Lookup(context.Background(), "Garbage", 0)
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.ParseFailure))
	})

	t.Run("bad key is manager unavailable and redacted", func(t *testing.T) {
		bad := NewMovieClient(testHTTP(), config.Radarr{BaseURL: srv.URL, APIKey: "wrong-key"})
		_, err := bad.Lookup(context.Background(), "Dune", 2021)
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.ManagerUnavailable))
		assert.NotContains(t, err.Error(), "wrong-key")
	})

	t.Run("unreachable manager", func(t *testing.T) {
		down := NewMovieClient(testHTTP(), config.Radarr{BaseURL: "http://127.0.0.1:1", APIKey: testAPIKey})
		_, err := down.ListLibrary(context.Background())
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.ManagerUnavailable))
	})
}

func TestClient_ResolvePlacementOptions(t *testing.T) {
	t.Run("snapshot", func(t *testing.T) {
		fake := newFakeManager("movie")
		srv := httptest.NewServer(fake)
		defer srv.Close()

		c := NewMovieClient(testHTTP(), config.Radarr{BaseURL: srv.URL, APIKey: testAPIKey})
		opts, err := c.ResolvePlacementOptions(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []QualityProfile{{ID: 1, Name: "Any"}, {ID: 4, Name: "HD-1080p"}}, opts.Tiers)
		assert.Equal(t, []RootFolder{{ID: 1, Path: "/data/media"}, {ID: 2, Path: "/data/other"}}, opts.Roots)
		assert.Equal(t, map[string]int{"watchlist": 7, "kids": 8}, opts.Tags)
	})

	t.Run("tag failure leaves tags empty", func(t *testing.T) {
		fake := newFakeManager("movie")
		fake.tags = ""
		srv := httptest.NewServer(fake)
		defer srv.Close()

		c := NewMovieClient(testHTTP(), config.Radarr{BaseURL: srv.URL, APIKey: testAPIKey})
		opts, err := c.ResolvePlacementOptions(context.Background())
		require.NoError(t, err)
		assert.Empty(t, opts.Tags)
	})

	t.Run("tier failure fails the snapshot", func(t *testing.T) {
		fake := newFakeManager("movie")
		fake.tiers = `{"broken":`
		srv := httptest.NewServer(fake)
		defer srv.Close()

		c := NewMovieClient(testHTTP(), config.Radarr{BaseURL: srv.URL, APIKey: testAPIKey})
		_, err := c.ResolvePlacementOptions(context.Background())
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.ParseFailure))
	})
}

func TestClient_ResolvePlacement(t *testing.T) {
	opts := PlacementOptions{
		Tiers: []QualityProfile{{ID: 1, Name: "Any"}, {ID: 4, Name: "HD-1080p"}},
		Roots: []RootFolder{{ID: 1, Path: "/data/media"}, {ID: 2, Path: "/data/other"}},
		Tags:  map[string]int{"watchlist": 7},
	}

	tests := []struct {
		name  string
		cfg   config.Radarr
		opts  PlacementOptions
		want  Placement
		warns []string
	}{
		{
			name: "configured tier matches",
			cfg:  config.Radarr{QualityProfile: "HD-1080p"},
			opts: opts,
			want: Placement{QualityProfileID: 4, RootFolderPath: "/data/media", Tags: []int{}},
		},
		{
			name: "no configured tier uses first",
			cfg:  config.Radarr{},
			opts: opts,
			want: Placement{QualityProfileID: 1, RootFolderPath: "/data/media", Tags: []int{}},
		},
		{
			name:  "unmatched tier uses first",
			cfg:   config.Radarr{QualityProfile: "hd-1080p"},
			opts:  opts,
			want:  Placement{QualityProfileID: 1, RootFolderPath: "/data/media", Tags: []int{}},
			warns: []string{"quality profile not found, using default"},
		},
		{
			name: "configured root matches",
			cfg:  config.Radarr{RootFolder: "/data/other"},
			opts: opts,
			want: Placement{QualityProfileID: 1, RootFolderPath: "/data/other", Tags: []int{}},
		},
		{
			name:  "unmatched root uses first",
			cfg:   config.Radarr{RootFolder: "/nope"},
			opts:  opts,
			want:  Placement{QualityProfileID: 1, RootFolderPath: "/data/media", Tags: []int{}},
			warns: []string{"root folder not found, using default"},
		},
		{
			name: "no roots reported uses configured root",
			cfg:  config.Radarr{RootFolder: "/movies"},
			opts: PlacementOptions{},
			want: Placement{QualityProfileID: fallbackTierID, RootFolderPath: "/movies", Tags: []int{}},
		},
		{
			name: "nothing reported uses literals",
			cfg:  config.Radarr{},
			opts: PlacementOptions{},
			want: Placement{QualityProfileID: fallbackTierID, RootFolderPath: DefaultMovieRoot, Tags: []int{}},
		},
		{
			name: "unresolved tags are dropped",
			cfg:  config.Radarr{Tags: []string{"missing", "watchlist"}},
			opts: opts,
			want: Placement{QualityProfileID: 1, RootFolderPath: "/data/media", Tags: []int{7}},
		},
		{
			name:  "unmatched tier and root both warn",
			cfg:   config.Radarr{QualityProfile: "Ultra", RootFolder: "/nope"},
			opts:  opts,
			want:  Placement{QualityProfileID: 1, RootFolderPath: "/data/media", Tags: []int{}},
			warns: []string{"quality profile not found, using default", "root folder not found, using default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			ctx := logger.WithCtx(context.Background(), zap.New(core).Sugar())

			c := NewMovieClient(testHTTP(), tt.cfg)
			assert.Equal(t, tt.want, c.ResolvePlacement(ctx, tt.opts))

			var warns []string
			for _, entry := range logs.All() {
				warns = append(warns, entry.Message)
			}
			assert.Equal(t, tt.warns, warns)
		})
	}

	t.Run("series carries season monitoring", func(t *testing.T) {
		c := NewSeriesClient(testHTTP(), config.Sonarr{})
		p := c.ResolvePlacement(context.Background(), PlacementOptions{})
		assert.Equal(t, DefaultSeriesRoot, p.RootFolderPath)
		assert.Equal(t, DefaultMonitor, p.SeasonMonitoring)

		c = NewSeriesClient(testHTTP(), config.Sonarr{SeasonMonitoring: "future"})
		assert.Equal(t, "future", c.ResolvePlacement(context.Background(), PlacementOptions{}).SeasonMonitoring)
	})
}

func TestClient_Identity(t *testing.T) {
	movies := NewMovieClient(testHTTP(), config.Radarr{BaseURL: "http://radarr:7878/", APIKey: testAPIKey, BypassIgnored: true})
	assert.Equal(t, "radarr", movies.Name())
	assert.EqualValues(t, "movie", movies.Kind())
	assert.Equal(t, "radarr@radarr:7878", movies.String())
	assert.True(t, movies.BypassIgnored())

	shows := NewSeriesClient(testHTTP(), config.Sonarr{BaseURL: "http://sonarr:8989"})
	assert.Equal(t, "sonarr", shows.Name())
	assert.EqualValues(t, "show", shows.Kind())
}
