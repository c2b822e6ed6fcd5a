package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/watchlistarr/pkg/arr"
	"github.com/kasuboski/watchlistarr/pkg/manager"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var caser = cases.Title(language.English)

func yearText(year int) string {
	if year <= 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func printEntries(w io.Writer, entries []watchlist.Entry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTITLE\tYEAR\tID\tOWNER")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", caser.String(string(e.Kind)), e.Title, yearText(e.Year), e.ID, e.UserID)
	}
	fmt.Fprintf(tw, "\n%s entries observed %s\n", humanize.Comma(int64(len(entries))), humanize.RelTime(firstObserved(entries, now), now, "ago", "from now"))
	return tw.Flush()
}

func firstObserved(entries []watchlist.Entry, now time.Time) time.Time {
	if len(entries) == 0 {
		return now
	}
	return entries[0].ObservedAt
}

func printReport(w io.Writer, report manager.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tKIND\tTITLE\tMANAGER\tREASON")
	for _, o := range report.Outcomes {
		name := o.Manager
		if name == "" {
			name = "-"
		}
		reason := string(o.Reason)
		if o.Error != "" {
			reason = fmt.Sprintf("%s (%s)", reason, o.Error)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Status, caser.String(string(o.Entry.Kind)), o.Entry.Title, name, reason)
	}

	counts := report.Counts()
	fmt.Fprintf(tw, "\nrun %s: %s added, %s already present, %s skipped, %s failed in %s\n",
		report.RunID,
		humanize.Comma(int64(counts[manager.StatusAdded])),
		humanize.Comma(int64(counts[manager.StatusAlreadyExists])),
		humanize.Comma(int64(counts[manager.StatusSkipped])),
		humanize.Comma(int64(counts[manager.StatusFailed])),
		report.Duration().Round(time.Millisecond))
	return tw.Flush()
}

func printLookup(w io.Writer, name string, res arr.LookupResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "MANAGER\t%s\n", name)
	fmt.Fprintf(tw, "TITLE\t%s\n", res.Title)
	fmt.Fprintf(tw, "SORT TITLE\t%s\n", res.SortTitle)
	fmt.Fprintf(tw, "YEAR\t%s\n", yearText(res.Year))
	for _, ns := range []arr.Namespace{arr.TMDB, arr.TVDB} {
		if id, ok := res.Get(ns); ok {
			fmt.Fprintf(tw, "%s\t%d\n", caser.String(string(ns)), id)
		}
	}
	if res.IMDB != "" {
		fmt.Fprintf(tw, "IMDB\t%s\n", res.IMDB)
	}
	fmt.Fprintf(tw, "EXTRA FIELDS\t%s\n", humanize.Comma(int64(len(res.Extra))))
	return tw.Flush()
}
