package seo

import (
	"encoding/json"
	"html/template"
	"strings"
)

// Meta is the per-page head metadata.
type Meta struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	OG          OpenGraph
	JSONLD      []template.JS
}

type OpenGraph struct {
	Title       string
	Description string
	Type        string
	URL         string
	SiteName    string
}

// Site is the identity the metadata is derived from.
type Site struct {
	Name    string
	Tagline string
	BaseURL string
	SameAs  []string
}

// Build returns the metadata for a page. An empty pageTitle yields the site
// title alone.
func Build(site Site, pageTitle, description, path string, keywords []string) Meta {
	title := site.Name + " — " + site.Tagline
	if pageTitle != "" && pageTitle != site.Name {
		title = pageTitle + " — " + site.Name
	}
	canonical := ""
	if site.BaseURL != "" {
		canonical = strings.TrimRight(site.BaseURL, "/") + path
	}
	m := Meta{
		Title:       title,
		Description: description,
		Keywords:    strings.Join(keywords, ", "),
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Type:        "website",
			URL:         canonical,
			SiteName:    site.Name,
		},
	}
	if path == "/" {
		m.JSONLD = append(m.JSONLD,
			JSON(Person(site.Name, site.Tagline, site.BaseURL, site.SameAs)),
			JSON(WebSite(site.Name, site.BaseURL)),
		)
	}
	return m
}

// JSON marshals v for a <script type="application/ld+json"> block. It
// returns an empty value on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Person returns a minimal schema.org Person.
func Person(name, jobTitle, url string, sameAs []string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     name,
	}
	if jobTitle != "" {
		m["jobTitle"] = jobTitle
	}
	if url != "" {
		m["url"] = url
	}
	if len(sameAs) > 0 {
		m["sameAs"] = sameAs
	}
	return m
}

// WebSite returns a minimal schema.org WebSite.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}
