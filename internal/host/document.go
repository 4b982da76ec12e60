// Package host models the browser document a navigation shell is mounted
// into: the current route, the scroll lock on the document root, and the
// pointer-down and route-change listeners.
//
// Events are dispatched one at a time. A Document behaves like a
// single-threaded event loop even though HTTP handlers call it concurrently:
// every dispatch and every Run holds the same mutex, so each handler runs to
// completion before the next one starts.
package host

import (
	"errors"
	"sync"
)

// ErrPointerEventsUnsupported is returned by OnPointerDown when the client
// cannot report pointer events.
var ErrPointerEventsUnsupported = errors.New("host: pointer events unsupported")

// Target is a pointer-down target, described by the element ids from the
// target up to the document root. Elements without an id are omitted.
type Target struct {
	IDs []string
}

// Within reports whether the target is the element id or one of its
// descendants.
func (t Target) Within(id string) bool {
	if id == "" {
		return false
	}
	for _, v := range t.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Options configures the capabilities of a Document.
type Options struct {
	PointerEvents bool
}

type pointerListener struct {
	id int
	fn func(Target)
}

type routeListener struct {
	id int
	fn func(string)
}

// Document is one browser session's page.
type Document struct {
	dispatchMu sync.Mutex

	mu            sync.Mutex
	path          string
	scrollLocked  bool
	pointerEvents bool
	nextID        int
	pointer       []pointerListener
	route         []routeListener
}

// NewDocument returns an empty document with no known path.
func NewDocument(opts Options) *Document {
	return &Document{pointerEvents: opts.PointerEvents}
}

// Run executes fn on the document's event loop. fn must not call Run,
// Navigate or PointerDown.
func (d *Document) Run(fn func()) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	fn()
}

// OnPointerDown registers fn for pointer-down events and returns a function
// that removes it.
func (d *Document) OnPointerDown(fn func(Target)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pointerEvents {
		return nil, ErrPointerEventsUnsupported
	}
	d.nextID++
	id := d.nextID
	d.pointer = append(d.pointer, pointerListener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.pointer {
			if l.id == id {
				d.pointer = append(d.pointer[:i], d.pointer[i+1:]...)
				return
			}
		}
	}, nil
}

// OnRouteChange registers fn for route changes and returns a function that
// removes it.
func (d *Document) OnRouteChange(fn func(path string)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.route = append(d.route, routeListener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.route {
			if l.id == id {
				d.route = append(d.route[:i], d.route[i+1:]...)
				return
			}
		}
	}
}

// Navigate sets the current path. Route-change listeners fire only when the
// path differs from the previous one. It reports whether the path changed.
func (d *Document) Navigate(path string) bool {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.mu.Lock()
	if d.path == path {
		d.mu.Unlock()
		return false
	}
	d.path = path
	listeners := make([]routeListener, len(d.route))
	copy(listeners, d.route)
	d.mu.Unlock()

	for _, l := range listeners {
		l.fn(path)
	}
	return true
}

// PointerDown dispatches a pointer-down event to the registered listeners.
func (d *Document) PointerDown(t Target) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.mu.Lock()
	listeners := make([]pointerListener, len(d.pointer))
	copy(listeners, d.pointer)
	d.mu.Unlock()

	for _, l := range listeners {
		l.fn(t)
	}
}

// Path returns the current path, or "" before the first navigation.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// Engage suppresses background scrolling on the document root.
func (d *Document) Engage() {
	d.mu.Lock()
	d.scrollLocked = true
	d.mu.Unlock()
}

// Release re-enables background scrolling.
func (d *Document) Release() {
	d.mu.Lock()
	d.scrollLocked = false
	d.mu.Unlock()
}

// ScrollLocked reports whether background scrolling is suppressed.
func (d *Document) ScrollLocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrollLocked
}

// Listeners returns the number of registered listeners.
func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pointer) + len(d.route)
}
