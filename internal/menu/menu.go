// Package menu implements the open/closed state of the mobile navigation
// panel.
//
// The scroll lock follows the state, not the transitions: it is engaged on
// entering Open and released on every way out of Open, including Teardown.
package menu

import (
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/host"
)

// State of the panel.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	default:
		return "closed"
	}
}

// ScrollLock suppresses background scrolling while the panel is open.
type ScrollLock interface {
	Engage()
	Release()
}

// Region is the area a click may land in without dismissing the panel.
type Region interface {
	Contains(target host.Target) bool
}

type noopLock struct{}

func (noopLock) Engage()  {}
func (noopLock) Release() {}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for transition traces.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// Machine is not safe for concurrent use; callers serialize access (see
// host.Document.Run).
type Machine struct {
	state  State
	held   bool
	lock   ScrollLock
	region Region
	log    *zap.Logger
}

// New returns a Closed machine. A nil region treats every click as outside.
func New(lock ScrollLock, region Region, opts ...Option) *Machine {
	if lock == nil {
		lock = noopLock{}
	}
	m := &Machine{lock: lock, region: region, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// IsOpen reports whether the panel is open.
func (m *Machine) IsOpen() bool { return m.state == Open }

// Toggle flips the panel.
func (m *Machine) Toggle() {
	if m.state == Open {
		m.set(Closed, "toggle")
		return
	}
	m.set(Open, "toggle")
}

// Close closes the panel. Closing a closed panel does nothing.
func (m *Machine) Close() {
	m.set(Closed, "close")
}

// Navigate closes the panel after the current path changed to path.
func (m *Machine) Navigate(path string) {
	m.set(Closed, "navigate", zap.String("path", path))
}

// OutsideClick closes an open panel when target is outside the region.
func (m *Machine) OutsideClick(target host.Target) {
	if m.state != Open {
		return
	}
	if m.region != nil && m.region.Contains(target) {
		return
	}
	m.set(Closed, "outside_click")
}

// Teardown closes the panel and releases the scroll lock whatever the
// current state.
func (m *Machine) Teardown() {
	m.state = Closed
	m.held = false
	m.lock.Release()
	m.log.Debug("menu teardown")
}

func (m *Machine) set(next State, trigger string, fields ...zap.Field) {
	if m.state == next {
		return
	}
	prev := m.state
	m.state = next
	switch {
	case next == Open && !m.held:
		m.lock.Engage()
		m.held = true
	case next == Closed && m.held:
		m.lock.Release()
		m.held = false
	}
	m.log.Debug("menu transition",
		append(fields,
			zap.String("trigger", trigger),
			zap.Stringer("from", prev),
			zap.Stringer("to", next),
		)...)
}
