package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/config"
	"github.com/pranavc2255/portfolio/internal/content"
	"github.com/pranavc2255/portfolio/internal/host"
	"github.com/pranavc2255/portfolio/internal/logging"
	"github.com/pranavc2255/portfolio/internal/nav"
	"github.com/pranavc2255/portfolio/internal/shell"
	"github.com/pranavc2255/portfolio/internal/store"
	"github.com/pranavc2255/portfolio/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Academic portfolio site",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "portfolio.yaml", "path to the YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), cfgPath)
			},
		},
		newExportCmd(&cfgPath),
		newStatsCmd(&cfgPath),
	)
	return root
}

func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func shellOptions(log *zap.Logger) shell.Options {
	return shell.Options{
		Links:    nav.Main,
		Identity: Identity,
		Profiles: Profiles,
		Logger:   log.Named("shell"),
	}
}

func runServe(ctx context.Context, cfgPath string) error {
	cfg, log, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.Server.Mode)

	pages, err := content.LoadEmbedded()
	if err != nil {
		return err
	}
	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	sessions := shell.NewSessions(shell.SessionOptions{
		Shell:       shellOptions(log),
		Document:    host.Options{PointerEvents: cfg.Menu.PointerEvents},
		TTL:         cfg.Session.TTL,
		SweepEvery:  cfg.Session.Sweep,
		MaxSessions: cfg.Session.MaxSessions,
	})
	go sessions.Run(ctx)

	srv := &server{
		cfg:      cfg,
		log:      log,
		pages:    pages,
		sessions: sessions,
		now:      time.Now,
	}
	if cfg.Tracking.Enabled {
		visits, err := store.Open(cfg.DB.Path, log.Named("store"))
		if err != nil {
			return err
		}
		defer visits.Close()
		srv.visits = visits
		srv.salt = cfg.Tracking.Salt
		if srv.salt == "" {
			srv.salt = generateSalt()
		}
		go pruneVisits(ctx, visits, cfg.DB.Retention, log)
		log.Info("visit tracking enabled", zap.String("db", cfg.DB.Path))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(srv, tmpl),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("mode", cfg.Server.Mode))
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	sessions.Close()
	return nil
}
