package main

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/config"
	"github.com/pranavc2255/portfolio/internal/content"
	"github.com/pranavc2255/portfolio/internal/host"
	mw "github.com/pranavc2255/portfolio/internal/middleware"
	"github.com/pranavc2255/portfolio/internal/seo"
	"github.com/pranavc2255/portfolio/internal/shell"
	"github.com/pranavc2255/portfolio/internal/store"
	"github.com/pranavc2255/portfolio/web"
)

type server struct {
	cfg      *config.Config
	log      *zap.Logger
	pages    *content.Library
	sessions *shell.Sessions
	visits   *store.Store
	salt     string
	now      func() time.Time
}

// pageView is the data every page template receives. Static pages are
// exported without the server round trips of the menu.
type pageView struct {
	Meta   seo.Meta
	Header shell.HeaderView
	Footer shell.FooterView
	Page   content.Page
	Static bool
}

var notFoundPage = content.Page{
	Slug:        "not-found",
	Title:       "Page not found",
	Heading:     "Page not found",
	Eyebrow:     "404",
	Description: "The page you were looking for does not exist.",
	Body:        template.HTML(`<p>The page you were looking for does not exist. <a href="/">Return home</a>.</p>`),
}

func newRouter(s *server, tmpl *template.Template) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		s.log.Error("panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(mw.HTMX(), mw.Logger(s.log.Named("http")))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if s.visits != nil {
		r.Use(mw.Track(s.visits, s.salt, s.log.Named("tracking")))
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	session := mw.Session(s.sessions, s.cfg.Session.Secure)
	site := r.Group("/", session)
	for _, p := range s.pages.All() {
		site.GET(p.Path, s.page)
		site.HEAD(p.Path, s.page)
	}
	site.POST("/menu/toggle", s.menuToggle)
	site.POST("/menu/close", s.menuClose)
	site.POST("/menu/pointerdown", s.menuPointerDown)

	r.NoRoute(session, s.notFound)
	return r
}

func (s *server) view(sh *shell.Shell, page content.Page, static bool) pageView {
	path := page.Path
	if path == "" {
		path = sh.Document().Path()
	}
	return pageView{
		Meta:   seo.Build(siteMeta(s.cfg.Site.BaseURL), page.Title, page.Description, path, page.Keywords),
		Header: sh.Header(),
		Footer: sh.Footer(s.now()),
		Page:   page,
		Static: static,
	}
}

func (s *server) page(c *gin.Context) {
	sh := mw.ShellFrom(c)
	path := c.Request.URL.Path
	page, err := s.pages.Page(path)
	if err != nil {
		s.notFound(c)
		return
	}
	if c.Request.Method == http.MethodGet {
		sh.Document().Navigate(path)
	}
	c.HTML(http.StatusOK, "page.html", s.view(sh, page, false))
}

func (s *server) notFound(c *gin.Context) {
	sh := mw.ShellFrom(c)
	if sh == nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	if c.Request.Method == http.MethodGet {
		sh.Document().Navigate(c.Request.URL.Path)
	}
	c.HTML(http.StatusNotFound, "page.html", s.view(sh, notFoundPage, false))
}

func (s *server) menuToggle(c *gin.Context) {
	sh := mw.ShellFrom(c)
	sh.Toggle()
	s.menuResponse(c, sh)
}

func (s *server) menuClose(c *gin.Context) {
	sh := mw.ShellFrom(c)
	sh.Close()
	s.menuResponse(c, sh)
}

// menuPointerDown leaves the header in place when the pointer-down did not
// change the menu, so the element under the pointer still gets its click.
func (s *server) menuPointerDown(c *gin.Context) {
	sh := mw.ShellFrom(c)
	before := sh.State()
	sh.Document().PointerDown(host.Target{IDs: splitIDs(c.PostForm("ids"))})
	if mw.IsHTMX(c) && sh.State() == before {
		c.Header("HX-Reswap", "none")
		c.Status(http.StatusNoContent)
		return
	}
	s.menuResponse(c, sh)
}

// menuResponse answers htmx with the re-rendered header and plain form
// posts with a redirect to the "next" field or back to the current page.
// Only known page paths are redirect targets.
func (s *server) menuResponse(c *gin.Context, sh *shell.Shell) {
	if mw.IsHTMX(c) {
		c.HTML(http.StatusOK, "header", pageView{Header: sh.Header()})
		return
	}
	back := c.PostForm("next")
	if back == "" {
		back = sh.Document().Path()
	}
	if _, err := s.pages.Page(back); err != nil {
		back = "/"
	}
	c.Redirect(http.StatusSeeOther, back)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
