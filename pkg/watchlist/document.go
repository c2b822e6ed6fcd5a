package watchlist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const rootTag = "MediaContainer"

// ErrUnexpectedDocument is returned when a document parses but is not a watchlist container
var ErrUnexpectedDocument = errors.New("unexpected watchlist document")

// recordShape describes one record element of the watchlist document
type recordShape struct {
	kind Kind
	// marker is the value the type attribute carries for this shape
	marker string
}

// shapes are keyed by element name
var shapes = map[string]recordShape{
	"Video":     {kind: Movie, marker: "movie"},
	"Directory": {kind: Show, marker: "show"},
}

// Page is one decoded page of the watchlist document
type Page struct {
	Entries []Entry
	// Records counts record elements on the page, including dropped ones
	Records int
	// TotalSize is the container's advertised total, zero when absent
	TotalSize int
	// Offset is the container's echoed start, valid when Paged is set
	Offset int
	Paged  bool
}

// ParseDocument decodes a watchlist document. Records missing an identifier,
// title or kind marker are dropped. Entries keep document order.
func ParseDocument(b []byte, userID string, observedAt time.Time) (Page, error) {
	var page Page

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return page, fmt.Errorf("failed to parse watchlist document: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != rootTag {
		return page, ErrUnexpectedDocument
	}

	if total := root.SelectAttrValue("totalSize", ""); total != "" {
		n, err := strconv.Atoi(total)
		if err != nil {
			return page, fmt.Errorf("invalid totalSize %q: %w", total, err)
		}
		page.TotalSize = n
	}

	if offset, err := strconv.Atoi(root.SelectAttrValue("offset", "")); err == nil {
		page.Offset = offset
		page.Paged = true
	}

	for _, el := range root.ChildElements() {
		shape, ok := shapes[el.Tag]
		if !ok {
			continue
		}
		page.Records++

		entry, ok := toEntry(el, shape, userID, observedAt)
		if !ok {
			continue
		}
		page.Entries = append(page.Entries, entry)
	}

	return page, nil
}

func toEntry(el *etree.Element, shape recordShape, userID string, observedAt time.Time) (Entry, bool) {
	if el.SelectAttrValue("type", "") != shape.marker {
		return Entry{}, false
	}

	id := strings.TrimSpace(el.SelectAttrValue("ratingKey", ""))
	title := strings.TrimSpace(el.SelectAttrValue("title", ""))
	if id == "" || title == "" {
		return Entry{}, false
	}

	year, err := strconv.Atoi(el.SelectAttrValue("year", ""))
	if err != nil || year < 0 {
		year = 0
	}

	return Entry{
		ID:         id,
		Title:      title,
		Year:       year,
		Kind:       shape.kind,
		GUID:       el.SelectAttrValue("guid", ""),
		ObservedAt: observedAt,
		UserID:     userID,
	}, true
}
