package main

import (
	"github.com/pranavc2255/portfolio/internal/seo"
	"github.com/pranavc2255/portfolio/internal/shell"
)

var (
	Identity = shell.Identity{
		Name:        "Pranav Chougule",
		Tagline:     "Robotics · AI · NDE",
		Role:        "PhD Researcher · Robotics & AI for Infrastructure NDE",
		Affiliation: "Drexel University · Philadelphia, PA",
	}

	Profiles = []shell.ExternalLink{
		{Label: "LinkedIn", Href: "https://www.linkedin.com/in/pranavc2255/", External: true},
		{Label: "GitHub", Href: "https://github.com/pranavc2255/", External: true},
		{Label: "Email", Href: "mailto:pranavc2204@gmail.com"},
	}

	SiteTagline = "Robotics & AI for Infrastructure NDE"
)

func siteMeta(baseURL string) seo.Site {
	return seo.Site{
		Name:    Identity.Name,
		Tagline: SiteTagline,
		BaseURL: baseURL,
		SameAs:  []string{Profiles[0].Href, Profiles[1].Href},
	}
}
