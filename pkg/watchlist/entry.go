package watchlist

import (
	"strconv"
	"time"
)

// Kind is the kind of title an entry tracks
type Kind string

const (
	Movie Kind = "movie"
	Show  Kind = "show"
)

// SelfUser is the owner id of entries from the primary account
const SelfUser = "self"

// Entry is one title the user or a collaborator wants tracked.
// ID and Kind identify an entry within one poll.
type Entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Year is zero when the source does not know the release year
	Year       int       `json:"year,omitempty"`
	Kind       Kind      `json:"kind"`
	GUID       string    `json:"guid,omitempty"`
	ObservedAt time.Time `json:"observedAt"`
	UserID     string    `json:"userId"`
}

// Key identifies the entry within one poll
func (e Entry) Key() string {
	return string(e.Kind) + ":" + e.ID
}

// HasYear reports whether the release year is known
func (e Entry) HasYear() bool {
	return e.Year > 0
}

// SearchTerm is the lookup term for the entry: the title, followed by the year when known
func (e Entry) SearchTerm() string {
	if !e.HasYear() {
		return e.Title
	}
	return e.Title + " " + strconv.Itoa(e.Year)
}
