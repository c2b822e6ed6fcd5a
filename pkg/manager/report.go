package manager

import (
	"time"

	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
)

type Status string

const (
	StatusAdded         Status = "Added"
	StatusAlreadyExists Status = "AlreadyExists"
	StatusSkipped       Status = "Skipped"
	StatusFailed        Status = "Failed"
)

// Outcome is the terminal result of one entry in a reconciliation pass
type Outcome struct {
	Entry   watchlist.Entry `json:"entry"`
	Status  Status          `json:"status"`
	Manager string          `json:"manager,omitempty"`
	// Reason is set for failed entries
	Reason syncerr.Kind `json:"reason,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Report aggregates the outcomes of one reconciliation pass in entry order
type Report struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Counts tallies outcomes by status
func (r Report) Counts() map[Status]int {
	counts := map[Status]int{
		StatusAdded:         0,
		StatusAlreadyExists: 0,
		StatusSkipped:       0,
		StatusFailed:        0,
	}
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Failed returns the failed outcomes
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
