package main

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranavc2255/portfolio/internal/config"
	"github.com/pranavc2255/portfolio/internal/content"
	"github.com/pranavc2255/portfolio/internal/host"
	"github.com/pranavc2255/portfolio/internal/shell"
	"github.com/pranavc2255/portfolio/web"
)

func newExportCmd(cfgPath *string) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the site to static HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			pages, err := content.LoadEmbedded()
			if err != nil {
				return err
			}
			tmpl, err := web.Templates()
			if err != nil {
				return fmt.Errorf("parse templates: %w", err)
			}
			n, err := exportSite(outDir, cfg, pages, tmpl, log, time.Now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", n, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "dist", "output directory")
	return cmd
}

// exportSite renders every page with a freshly mounted, closed shell and
// copies the static assets. It returns the number of pages written.
func exportSite(outDir string, cfg *config.Config, pages *content.Library, tmpl *template.Template, log *zap.Logger, now func() time.Time) (int, error) {
	s := &server{cfg: cfg, log: log, pages: pages, now: now}

	count := 0
	for _, page := range pages.All() {
		if err := exportPage(outDir, s, tmpl, page); err != nil {
			return count, err
		}
		count++
	}
	if err := copyStatic(filepath.Join(outDir, "static")); err != nil {
		return count, err
	}
	return count, nil
}

func exportPage(outDir string, s *server, tmpl *template.Template, page content.Page) error {
	doc := host.NewDocument(host.Options{PointerEvents: true})
	sh := shell.Mount(doc, shellOptions(s.log))
	defer sh.Unmount()
	doc.Navigate(page.Path)

	dir := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(page.Path, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export %s: %w", page.Path, err)
	}
	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("export %s: %w", page.Path, err)
	}
	if err := tmpl.ExecuteTemplate(f, "page.html", s.view(sh, page, true)); err != nil {
		f.Close()
		return fmt.Errorf("export %s: render: %w", page.Path, err)
	}
	return f.Close()
}

func copyStatic(dst string) error {
	assets := web.Static()
	return fs.WalkDir(assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(assets, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("copy %s: %w", path.Join("static", p), err)
		}
		return nil
	})
}
