package shell

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pranavc2255/portfolio/internal/host"
	"github.com/pranavc2255/portfolio/internal/menu"
	"github.com/pranavc2255/portfolio/internal/nav"
)

var (
	outsideTarget = host.Target{IDs: []string{"main"}}
	insideTarget  = host.Target{IDs: []string{"site-nav-toggle", RegionID}}
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Links: nav.Main,
		Identity: Identity{
			Name:        "Pranav Chougule",
			Tagline:     "Robotics · AI · NDE",
			Role:        "PhD Researcher",
			Affiliation: "Drexel University",
		},
		Profiles: []ExternalLink{{Label: "GitHub", Href: "https://github.com/pranavc2255/", External: true}},
		Logger:   zaptest.NewLogger(t),
	}
}

func mountTest(t *testing.T, pointer bool) (*Shell, *host.Document) {
	t.Helper()
	doc := host.NewDocument(host.Options{PointerEvents: pointer})
	return Mount(doc, testOptions(t)), doc
}

func TestMountRegistersListeners(t *testing.T) {
	sh, doc := mountTest(t, true)
	require.Equal(t, 2, doc.Listeners())
	require.Equal(t, menu.Closed, sh.State())

	sh.Unmount()
	require.Equal(t, 0, doc.Listeners())
}

func TestRepeatedMountCyclesLeaveNoListeners(t *testing.T) {
	doc := host.NewDocument(host.Options{PointerEvents: true})
	for i := 0; i < 10; i++ {
		sh := Mount(doc, testOptions(t))
		sh.Toggle()
		sh.Unmount()
		sh.Unmount()
	}
	require.Equal(t, 0, doc.Listeners())
	require.False(t, doc.ScrollLocked())
}

func TestNavigationClosesPanel(t *testing.T) {
	sh, doc := mountTest(t, true)
	doc.Navigate("/")

	sh.Toggle()
	require.Equal(t, menu.Open, sh.State())
	require.True(t, doc.ScrollLocked())

	doc.Navigate("/background")
	require.Equal(t, menu.Closed, sh.State())
	require.False(t, doc.ScrollLocked())
}

func TestOutsideClickClosesPanel(t *testing.T) {
	sh, doc := mountTest(t, true)

	sh.Toggle()
	doc.PointerDown(insideTarget)
	require.Equal(t, menu.Open, sh.State(), "click inside the header must not dismiss")
	require.True(t, doc.ScrollLocked())

	doc.PointerDown(outsideTarget)
	require.Equal(t, menu.Closed, sh.State())
	require.False(t, doc.ScrollLocked())
}

func TestWithoutPointerEventsToggleStillWorks(t *testing.T) {
	sh, doc := mountTest(t, false)
	require.Equal(t, 1, doc.Listeners(), "only the route listener is registered")

	sh.Toggle()
	doc.PointerDown(outsideTarget)
	require.Equal(t, menu.Open, sh.State())

	sh.Close()
	require.Equal(t, menu.Closed, sh.State())
	require.False(t, doc.ScrollLocked())

	sh.Toggle()
	doc.Navigate("/contact")
	require.Equal(t, menu.Closed, sh.State())
}

func TestUnmountReleasesLock(t *testing.T) {
	sh, doc := mountTest(t, true)
	sh.Toggle()
	require.True(t, doc.ScrollLocked())

	sh.Unmount()
	require.False(t, doc.ScrollLocked())
	require.Equal(t, menu.Closed, sh.State())

	sh.Toggle()
	require.Equal(t, menu.Closed, sh.State(), "unmounted shell ignores input")
	require.False(t, doc.ScrollLocked())
}

func TestHeaderSharesActiveEvaluation(t *testing.T) {
	sh, doc := mountTest(t, true)

	v := sh.Header()
	for _, it := range v.Links {
		require.False(t, it.Active, "nothing is active before the path is known")
	}

	doc.Navigate("/publications")
	sh.Toggle()
	v = sh.Header()
	require.True(t, v.Open)
	require.True(t, v.ScrollLocked)
	require.Equal(t, RegionID, v.RegionID)
	require.Equal(t, PanelID, v.PanelID)
	require.Len(t, v.Links, len(nav.Main))
	for _, it := range v.Links {
		require.Equal(t, it.Href == "/publications", it.Active, it.Href)
	}
}

func TestFooter(t *testing.T) {
	sh, _ := mountTest(t, true)
	f := sh.Footer(time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC))
	require.Equal(t, 2026, f.Year)
	require.Equal(t, "Pranav Chougule", f.Identity.Name)
	require.Len(t, f.Profiles, 1)
}

func TestMountDefaultsToMainLinks(t *testing.T) {
	sh := Mount(host.NewDocument(host.Options{}), Options{})
	require.Len(t, sh.Header().Links, len(nav.Main))
}

func TestSessionsAcquireAndSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(SessionOptions{
		Shell:    testOptions(t),
		Document: host.Options{PointerEvents: true},
		TTL:      time.Minute,
		Now:      func() time.Time { return now },
	})

	a, idA := sessions.Acquire("")
	require.NotEmpty(t, idA)
	again, idAgain := sessions.Acquire(idA)
	require.Same(t, a, again)
	require.Equal(t, idA, idAgain)

	_, idB := sessions.Acquire("unknown-id")
	require.NotEqual(t, "unknown-id", idB)
	require.Equal(t, 2, sessions.Len())

	a.Toggle()
	require.Equal(t, 1, sessions.OpenMenus())

	now = now.Add(30 * time.Second)
	sessions.Lookup(idA)
	now = now.Add(45 * time.Second)

	require.Equal(t, 1, sessions.Sweep(), "only the idle session is swept")
	_, ok := sessions.Lookup(idB)
	require.False(t, ok)

	sessions.Close()
	require.Equal(t, 0, sessions.Len())
	require.Equal(t, 0, a.Document().Listeners())
	require.False(t, a.Document().ScrollLocked())
}

func TestSessionsEvictOldestWhenFull(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(SessionOptions{
		Shell:       testOptions(t),
		MaxSessions: 2,
		Now:         func() time.Time { return now },
	})

	first, idFirst := sessions.Acquire("")
	now = now.Add(time.Second)
	sessions.Acquire("")
	now = now.Add(time.Second)
	sessions.Acquire("")

	require.Equal(t, 2, sessions.Len())
	_, ok := sessions.Lookup(idFirst)
	require.False(t, ok)
	require.Equal(t, 0, first.Document().Listeners())
}

func TestSessionsRunStopsOnCancel(t *testing.T) {
	sessions := NewSessions(SessionOptions{Shell: testOptions(t), SweepEvery: time.Millisecond})
	sh, _ := sessions.Acquire("")
	sh.Toggle()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessions.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	require.Equal(t, 0, sessions.Len())
	require.False(t, sh.Document().ScrollLocked())
}
