// Package pagination walks offset based listings.
package pagination

// MaxPages bounds a walk over a listing that never signals its end
const MaxPages = 1000

// Window is one offset based page request
type Window struct {
	Offset int
	Size   int
}

// First returns the first window of size. Sizes below one are clamped to one.
func First(size int) Window {
	return Window{Offset: 0, Size: max(size, 1)}
}

// Honored reports whether a page served for w respected it. The listing must
// echo w's offset and return at most w.Size records. A listing that ignores
// paging sends the same page for every window.
func (w Window) Honored(offset int, echoed bool, records int) bool {
	return echoed && offset == w.Offset && records <= w.Size
}

// Next returns the window after w given how many records w returned and the
// advertised total. ok is false once an empty page is seen or total is reached.
// A zero total means the listing does not advertise one.
func (w Window) Next(records, total int) (next Window, ok bool) {
	if records <= 0 {
		return w, false
	}

	next = Window{Offset: w.Offset + records, Size: w.Size}
	if total > 0 && next.Offset >= total {
		return next, false
	}
	if total <= 0 && records < w.Size {
		return next, false
	}

	return next, true
}
