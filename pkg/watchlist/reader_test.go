package watchlist

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasuboski/watchlistarr/config"
	mhttp "github.com/kasuboski/watchlistarr/pkg/http"
	"github.com/kasuboski/watchlistarr/pkg/pagination"
	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedWatchlist serves records in pages honoring the container start/size params
func pagedWatchlist(t *testing.T, records []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != watchlistPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("X-Plex-Token") != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		start, _ := strconv.Atoi(r.URL.Query().Get("X-Plex-Container-Start"))
		size, _ := strconv.Atoi(r.URL.Query().Get("X-Plex-Container-Size"))
		end := min(start+size, len(records))
		if start > end {
			start = end
		}

		fmt.Fprintf(w, `<MediaContainer size="%d" totalSize="%d" offset="%d">`, end-start, len(records), start)
		for _, rec := range records[start:end] {
			fmt.Fprint(w, rec)
		}
		fmt.Fprint(w, `</MediaContainer>`)
	}))
}

func newTestReader(url string, cfg config.Plex) *Reader {
	cfg.BaseURL = url
	r := NewReader(mhttp.New(time.Second, 1), cfg)
	r.now = func() time.Time { return observed }
	return r
}

func TestNewReader(t *testing.T) {
	r := NewReader(mhttp.New(time.Second, 0), config.Plex{Token: "token"})
	assert.Equal(t, "https://metadata.provider.plex.tv", r.baseURL)
	assert.Equal(t, DefaultPageSize, r.pageSize)
	assert.Equal(t, pagination.MaxPages, r.maxPages)

	r = NewReader(mhttp.New(time.Second, 0), config.Plex{BaseURL: "http://plex.local/", PageSize: 10})
	assert.Equal(t, "http://plex.local", r.baseURL)
	assert.Equal(t, 10, r.pageSize)
}

func TestReader_FetchWatchlist(t *testing.T) {
	t.Run("pages through the whole watchlist", func(t *testing.T) {
		srv := pagedWatchlist(t, []string{
			`<Video type="movie" ratingKey="1" title="Dune" year="2021"/>`,
			`<Video type="movie" ratingKey="2" title="Broken"/>`,
			`<Directory type="show" ratingKey="3" title="Severance" year="2022"/>`,
			`<Video ratingKey="4" title="Dropped"/>`,
			`<Video type="movie" ratingKey="5" title="Arrival" year="2016"/>`,
		})
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "token", PageSize: 2})
		entries, err := r.FetchWatchlist(context.Background())
		require.NoError(t, err)

		var ids []string
		for _, e := range entries {
			ids = append(ids, e.Key())
		}
		assert.Equal(t, []string{"movie:1", "movie:2", "show:3", "movie:5"}, ids)
	})

	t.Run("host ignoring paging is read once", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, `<MediaContainer size="2">
  <Video type="movie" ratingKey="1" title="Dune" year="2021"/>
  <Directory type="show" ratingKey="3" title="Severance" year="2022"/>
</MediaContainer>`)
		}))
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "token", PageSize: 2})
		entries, err := r.FetchWatchlist(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.EqualValues(t, 1, requests.Load())
	})

	t.Run("host returning more than a page is read once", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, `<MediaContainer size="3" offset="0">
  <Video type="movie" ratingKey="1" title="Dune" year="2021"/>
  <Video type="movie" ratingKey="2" title="Arrival" year="2016"/>
  <Directory type="show" ratingKey="3" title="Severance" year="2022"/>
</MediaContainer>`)
		}))
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "token", PageSize: 2})
		entries, err := r.FetchWatchlist(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 3)
		assert.EqualValues(t, 1, requests.Load())
	})

	t.Run("later page with the wrong offset is dropped", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, `<MediaContainer size="2" offset="0">
  <Video type="movie" ratingKey="1" title="Dune" year="2021"/>
  <Video type="movie" ratingKey="2" title="Arrival" year="2016"/>
</MediaContainer>`)
		}))
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "token", PageSize: 2})
		entries, err := r.FetchWatchlist(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.EqualValues(t, 2, requests.Load())
	})

	t.Run("endless listing stops at the page limit", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			start, _ := strconv.Atoi(r.URL.Query().Get("X-Plex-Container-Start"))
			fmt.Fprintf(w, `<MediaContainer size="1" offset="%d"><Video type="movie" ratingKey="%d" title="Movie"/></MediaContainer>`, start, start)
		}))
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "token", PageSize: 1})
		r.maxPages = 5
		entries, err := r.FetchWatchlist(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 5)
		assert.EqualValues(t, 5, requests.Load())
	})

	t.Run("bad token is source unavailable", func(t *testing.T) {
		srv := pagedWatchlist(t, nil)
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "expired"})
		_, err := r.FetchWatchlist(context.Background())
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.SourceUnavailable))
		assert.NotContains(t, err.Error(), "expired")
	})

	t.Run("undecodable document is a parse failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"MediaContainer":{}}`))
		}))
		defer srv.Close()

		r := newTestReader(srv.URL, config.Plex{Token: "token"})
		_, err := r.FetchWatchlist(context.Background())
		require.Error(t, err)
		assert.True(t, syncerr.Is(err, syncerr.ParseFailure))
	})
}

func TestReader_Read(t *testing.T) {
	srv := pagedWatchlist(t, []string{
		`<Video type="movie" ratingKey="1" title="Dune" year="2021"/>`,
		`<Video type="movie" ratingKey="1" title="Dune" year="2021"/>`,
	})
	defer srv.Close()

	t.Run("without collaborators", func(t *testing.T) {
		r := newTestReader(srv.URL, config.Plex{Token: "token"})
		entries, err := r.Read(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, SelfUser, entries[0].UserID)
		assert.Equal(t, observed, entries[0].ObservedAt)
	})

	t.Run("with collaborators", func(t *testing.T) {
		r := newTestReader(srv.URL, config.Plex{Token: "token"})
		entries, err := r.Read(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("friend sync skipped", func(t *testing.T) {
		r := newTestReader(srv.URL, config.Plex{Token: "token", SkipFriendSync: true})
		entries, err := r.Read(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		friends, err := r.FetchCollaboratorWatchlists(context.Background())
		require.NoError(t, err)
		assert.Empty(t, friends)
	})
}

func TestMerge(t *testing.T) {
	primary := []Entry{
		{ID: "1", Kind: Movie, UserID: SelfUser},
		{ID: "1", Kind: Show, UserID: SelfUser},
	}
	friends := []Entry{
		{ID: "1", Kind: Movie, UserID: "friend"},
		{ID: "2", Kind: Movie, UserID: "friend"},
	}

	got := merge(primary, friends)
	assert.Equal(t, []Entry{
		{ID: "1", Kind: Movie, UserID: SelfUser},
		{ID: "1", Kind: Show, UserID: SelfUser},
		{ID: "2", Kind: Movie, UserID: "friend"},
	}, got)
}
