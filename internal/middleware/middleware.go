package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/shell"
	"github.com/pranavc2255/portfolio/internal/store"
)

// gin context keys
const (
	keyHTMX  = "portfolio.htmx"
	keyShell = "portfolio.shell"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "portfolio_sid"

// HTMX marks requests coming from htmx so handlers can answer with fragments.
func HTMX() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyHTMX, c.GetHeader("HX-Request") == "true")
		c.Next()
	}
}

// IsHTMX returns whether this is an htmx request.
func IsHTMX(c *gin.Context) bool {
	return c.GetBool(keyHTMX)
}

// Logger emits one structured log entry per request.
func Logger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_ip", c.ClientIP()),
			zap.Bool("htmx", IsHTMX(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Session binds the request to its browser session's shell, mounting a new
// one when the cookie is missing or expired.
func Session(sessions *shell.Sessions, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		sh, newID := sessions.Acquire(id)
		if newID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, newID, 0, "/", "", secure, true)
		}
		c.Set(keyShell, sh)
		c.Next()
	}
}

// ShellFrom returns the shell bound by Session.
func ShellFrom(c *gin.Context) *shell.Shell {
	v, ok := c.Get(keyShell)
	if !ok {
		return nil
	}
	sh, _ := v.(*shell.Shell)
	return sh
}

// Recorder stores page views.
type Recorder interface {
	Record(ctx context.Context, v store.Visit) error
}

var untrackedPrefixes = []string{"/static/", "/menu/", "/healthz", "/favicon"}

// Track records successful page views in the background. Requests with
// DNT: 1 are skipped.
func Track(rec Recorder, salt string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.Writer.Status() != http.StatusOK {
			return
		}
		path := c.Request.URL.Path
		for _, p := range untrackedPrefixes {
			if strings.HasPrefix(path, p) {
				return
			}
		}
		if c.GetHeader("DNT") == "1" {
			return
		}

		visit := store.Visit{
			Visitor:   store.HashVisitor(c.ClientIP(), salt),
			Path:      path,
			UserAgent: c.Request.UserAgent(),
			Timestamp: time.Now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rec.Record(ctx, visit); err != nil {
				log.Warn("record visit", zap.Error(err))
			}
		}()
	}
}
