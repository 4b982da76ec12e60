package shell

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/host"
	"github.com/pranavc2255/portfolio/internal/menu"
	"github.com/pranavc2255/portfolio/internal/nav"
)

// Element ids the header template renders. Pointer-down targets inside
// RegionID do not dismiss the panel.
const (
	RegionID = "site-nav"
	PanelID  = "site-nav-panel"
)

// Identity is the name block shown in the header and footer.
type Identity struct {
	Name        string
	Tagline     string
	Role        string
	Affiliation string
}

// ExternalLink is a footer profile link.
type ExternalLink struct {
	Label    string
	Href     string
	External bool
}

// Options configures a Shell.
type Options struct {
	Links    []nav.Link
	Identity Identity
	Profiles []ExternalLink
	Logger   *zap.Logger
}

// HeaderView is the view model for the header and the mobile panel. Links
// feeds both the desktop row and the panel.
type HeaderView struct {
	Identity     Identity
	Links        []nav.Item
	Open         bool
	ScrollLocked bool
	RegionID     string
	PanelID      string
}

// FooterView is the view model for the footer.
type FooterView struct {
	Identity Identity
	Profiles []ExternalLink
	Year     int
}

// Shell is the persistent header and footer around page content. It owns
// the menu machine and the listeners it registers on its document.
type Shell struct {
	opts        Options
	log         *zap.Logger
	doc         *host.Document
	machine     *menu.Machine
	unsubscribe []func()
	mounted     bool
}

// Mount creates a shell inside doc and registers its listeners. If the
// document has no pointer events the panel can still be closed through
// Toggle and Close.
func Mount(doc *host.Document, opts Options) *Shell {
	if opts.Links == nil {
		opts.Links = nav.Main
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{opts: opts, log: log, doc: doc, mounted: true}
	s.machine = menu.New(doc, s, menu.WithLogger(log.Named("menu")))

	s.unsubscribe = append(s.unsubscribe, doc.OnRouteChange(s.machine.Navigate))
	removePointer, err := doc.OnPointerDown(s.machine.OutsideClick)
	switch {
	case err == nil:
		s.unsubscribe = append(s.unsubscribe, removePointer)
	case errors.Is(err, host.ErrPointerEventsUnsupported):
		log.Warn("outside-click dismissal disabled", zap.Error(err))
	default:
		log.Error("register pointer listener", zap.Error(err))
	}
	return s
}

// Unmount removes the shell's listeners and releases the scroll lock. It is
// safe to call more than once.
func (s *Shell) Unmount() {
	s.doc.Run(func() {
		if !s.mounted {
			return
		}
		for _, fn := range s.unsubscribe {
			fn()
		}
		s.unsubscribe = nil
		s.machine.Teardown()
		s.mounted = false
	})
}

// Contains reports whether target is inside the navigation region.
func (s *Shell) Contains(target host.Target) bool {
	return target.Within(RegionID)
}

// Toggle flips the mobile panel.
func (s *Shell) Toggle() {
	s.doc.Run(func() {
		if s.mounted {
			s.machine.Toggle()
		}
	})
}

// Close closes the mobile panel.
func (s *Shell) Close() {
	s.doc.Run(func() {
		if s.mounted {
			s.machine.Close()
		}
	})
}

// State returns the menu state.
func (s *Shell) State() menu.State {
	var st menu.State
	s.doc.Run(func() { st = s.machine.State() })
	return st
}

// Document returns the document the shell is mounted in.
func (s *Shell) Document() *host.Document { return s.doc }

// Header renders the header for the document's current path.
func (s *Shell) Header() HeaderView {
	var v HeaderView
	s.doc.Run(func() {
		v = HeaderView{
			Identity:     s.opts.Identity,
			Links:        nav.Build(s.opts.Links, s.doc.Path()),
			Open:         s.machine.IsOpen(),
			ScrollLocked: s.doc.ScrollLocked(),
			RegionID:     RegionID,
			PanelID:      PanelID,
		}
	})
	return v
}

// Footer renders the footer.
func (s *Shell) Footer(now time.Time) FooterView {
	return FooterView{
		Identity: s.opts.Identity,
		Profiles: s.opts.Profiles,
		Year:     now.Year(),
	}
}
