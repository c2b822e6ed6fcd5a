// Package manager reconciles watchlist snapshots into the library managers
// and schedules the periodic sync loops.
package manager

import (
	"context"

	"github.com/kasuboski/watchlistarr/pkg/arr"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_manager.go github.com/kasuboski/watchlistarr/pkg/manager Target,WatchlistReader

// Target is a library manager entries of one kind are added to
type Target interface {
	Kind() watchlist.Kind
	Name() string
	Add(ctx context.Context, entry watchlist.Entry) (arr.AddResult, error)
}

// WatchlistReader produces a fresh watchlist snapshot
type WatchlistReader interface {
	Read(ctx context.Context, includeCollaborators bool) ([]watchlist.Entry, error)
}

// Targets routes entries by kind. A nil target means that kind is not synced.
type Targets struct {
	Movie Target
	Show  Target
}

// For returns the target for kind, or nil
func (t Targets) For(kind watchlist.Kind) Target {
	switch kind {
	case watchlist.Movie:
		return t.Movie
	case watchlist.Show:
		return t.Show
	default:
		return nil
	}
}
