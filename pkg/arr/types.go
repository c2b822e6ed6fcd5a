package arr

import (
	"github.com/goccy/go-json"
	"github.com/oapi-codegen/nullable"
)

// Namespace is an external metadata id namespace a manager indexes titles under
type Namespace string

const (
	TMDB Namespace = "tmdb"
	TVDB Namespace = "tvdb"
)

// ExternalIDs are the cross reference ids of a title
type ExternalIDs struct {
	TMDB nullable.Nullable[int] `json:"tmdbId,omitempty"`
	TVDB nullable.Nullable[int] `json:"tvdbId,omitempty"`
	IMDB string                 `json:"imdbId,omitempty"`
}

// Get returns the id in namespace ns. Missing, null and zero ids are not ids.
func (e ExternalIDs) Get(ns Namespace) (int, bool) {
	var n nullable.Nullable[int]
	switch ns {
	case TMDB:
		n = e.TMDB
	case TVDB:
		n = e.TVDB
	default:
		return 0, false
	}

	if !n.IsSpecified() || n.IsNull() {
		return 0, false
	}

	v, err := n.Get()
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

// Shares reports whether e and other carry the same id on any of namespaces
func (e ExternalIDs) Shares(other ExternalIDs, namespaces []Namespace) bool {
	for _, ns := range namespaces {
		a, ok := e.Get(ns)
		if !ok {
			continue
		}
		if b, ok := other.Get(ns); ok && a == b {
			return true
		}
	}
	return false
}

// LookupResult is the manager's canonical record for a title
type LookupResult struct {
	Title         string `json:"title"`
	SortTitle     string `json:"sortTitle"`
	OriginalTitle string `json:"originalTitle,omitempty"`
	// Year is zero when the manager does not know it
	Year int `json:"year"`
	ExternalIDs
	// Extra holds the remaining fields of the record, kept verbatim
	Extra map[string]json.RawMessage `json:"-"`
}

// canonicalFields are decoded into LookupResult and never kept in Extra
var canonicalFields = []string{"title", "sortTitle", "originalTitle", "year", "tmdbId", "tvdbId", "imdbId"}

// LibraryRecord is the dedup projection of one title already in a manager's library
type LibraryRecord struct {
	ID int `json:"id"`
	ExternalIDs
}

type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type RootFolder struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

type Tag struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// PlacementOptions is a live snapshot of what a manager can place titles into.
// The first tier and root are the manager's defaults.
type PlacementOptions struct {
	Tiers []QualityProfile
	Roots []RootFolder
	// Tags maps tag labels to ids
	Tags map[string]int
}

// Placement is the resolved set of settings used to add one title
type Placement struct {
	QualityProfileID int    `json:"qualityProfileId"`
	RootFolderPath   string `json:"rootFolderPath"`
	Tags             []int  `json:"tags"`
	// SeasonMonitoring is only set for shows
	SeasonMonitoring string `json:"seasonMonitoring,omitempty"`
}

type AddStatus string

const (
	Added         AddStatus = "Added"
	AlreadyExists AddStatus = "AlreadyExists"
)

// AddResult is the terminal outcome of a successful Add
type AddResult struct {
	Status AddStatus
	// Match is the lookup record the entry resolved to
	Match LookupResult
}
