package nav

// Link is one navigable site section. Display order is slice order.
type Link struct {
	Path  string // e.g. "/research"
	Label string
}

// Item is a view model for templates.
type Item struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Link{
	{Path: "/", Label: "Home"},
	{Path: "/research", Label: "Research"},
	{Path: "/background", Label: "Background"},
	{Path: "/publications", Label: "Publications"},
	{Path: "/contact", Label: "Contact"},
}

// IsActive reports whether link is the page at currentPath. Matching is exact:
// no prefix matching, no trailing-slash or query normalization. An empty
// currentPath means the path is not known yet and nothing is active.
func IsActive(link Link, currentPath string) bool {
	if currentPath == "" {
		return false
	}
	return link.Path == currentPath
}

// Build renders links with active state given the current path.
func Build(links []Link, currentPath string) []Item {
	items := make([]Item, 0, len(links))
	for _, l := range links {
		items = append(items, Item{
			Href:   l.Path,
			Label:  l.Label,
			Active: IsActive(l, currentPath),
		})
	}
	return items
}

// Lookup returns the link registered for path, if any.
func Lookup(links []Link, path string) (Link, bool) {
	for _, l := range links {
		if l.Path == path {
			return l, true
		}
	}
	return Link{}, false
}
