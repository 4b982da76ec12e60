// Package content loads the site's pages from embedded markdown files with
// YAML front matter.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*.md
var embedded embed.FS

// ErrNotFound is returned when no page is registered for a path.
var ErrNotFound = errors.New("content: page not found")

// Page is a rendered content page.
type Page struct {
	Path        string
	Slug        string
	Title       string
	Heading     string
	Eyebrow     string
	Description string
	Keywords    []string
	Order       int
	Body        template.HTML
}

type frontMatter struct {
	Path        string   `yaml:"path"`
	Title       string   `yaml:"title"`
	Heading     string   `yaml:"heading"`
	Eyebrow     string   `yaml:"eyebrow"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Order       int      `yaml:"order"`
}

// Library holds the parsed pages keyed by path.
type Library struct {
	pages map[string]Page
	order []string
}

// Load parses every pages/*.md file in fsys.
func Load(fsys fs.FS) (*Library, error) {
	files, err := fs.Glob(fsys, "pages/*.md")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("content: no pages found")
	}

	md := newMarkdown()
	policy := newPolicy()
	lib := &Library{pages: make(map[string]Page, len(files))}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", file, err)
		}
		page, err := parsePage(md, policy, strings.TrimSuffix(path.Base(file), ".md"), data)
		if err != nil {
			return nil, fmt.Errorf("content: %s: %w", file, err)
		}
		if _, dup := lib.pages[page.Path]; dup {
			return nil, fmt.Errorf("content: duplicate path %s in %s", page.Path, file)
		}
		lib.pages[page.Path] = page
		lib.order = append(lib.order, page.Path)
	}
	sort.SliceStable(lib.order, func(i, j int) bool {
		return lib.pages[lib.order[i]].Order < lib.pages[lib.order[j]].Order
	})
	return lib, nil
}

// LoadEmbedded parses the pages compiled into the binary.
func LoadEmbedded() (*Library, error) {
	return Load(embedded)
}

// Page returns the page registered for path.
func (l *Library) Page(p string) (Page, error) {
	page, ok := l.pages[p]
	if !ok {
		return Page{}, ErrNotFound
	}
	return page, nil
}

// All returns every page in display order.
func (l *Library) All() []Page {
	out := make([]Page, 0, len(l.order))
	for _, p := range l.order {
		out = append(out, l.pages[p])
	}
	return out
}

func parsePage(md goldmark.Markdown, policy *bluemonday.Policy, slug string, data []byte) (Page, error) {
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("parse front matter: %w", err)
		}
	}
	p := strings.TrimSpace(front.Path)
	if p == "" {
		p = "/" + slug
	}
	if !strings.HasPrefix(p, "/") {
		return Page{}, fmt.Errorf("path %q must start with /", p)
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("render markdown: %w", err)
	}

	page := Page{
		Path:        p,
		Slug:        slug,
		Title:       strings.TrimSpace(front.Title),
		Heading:     strings.TrimSpace(front.Heading),
		Eyebrow:     strings.TrimSpace(front.Eyebrow),
		Description: strings.TrimSpace(front.Description),
		Keywords:    front.Keywords,
		Order:       front.Order,
		Body:        template.HTML(policy.SanitizeBytes(buf.Bytes())),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.Heading == "" {
		page.Heading = page.Title
	}
	return page, nil
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// newPolicy allows the card markup page bodies embed between markdown
// blocks.
func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("section", "article", "figure", "figcaption")
	policy.AllowAttrs("class").OnElements("section", "article", "div", "p", "span", "ul", "li", "h2", "h3", "a")
	policy.RequireNoFollowOnLinks(false)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
