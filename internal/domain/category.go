package domain

import "strings"

// DefaultMarkerColor is used when none of the prioritized categories match.
const DefaultMarkerColor = "#4b5563"

// categoryColors is ordered by priority; the first matching entry wins.
var categoryColors = []struct {
	names []string
	color string
}{
	{names: []string{"Медицина", "Medicine"}, color: "#dc2626"},
	{names: []string{"Білім", "Education"}, color: "#16a34a"},
	{names: []string{"Саясат", "Politics"}, color: "#2563eb"},
	{names: []string{"Журналистика", "Journalism"}, color: "#d97706"},
	{names: []string{"Геология", "Geology"}, color: "#7c3aed"},
}

// MarkerColor returns the marker color for a set of category lists.
// Categories are matched in either language, ignoring case.
// The result is always a valid color.
func MarkerColor(categoryLists ...[]string) string {
	for _, entry := range categoryColors {
		for _, list := range categoryLists {
			for _, category := range list {
				for _, name := range entry.names {
					if strings.EqualFold(strings.TrimSpace(category), name) {
						return entry.color
					}
				}
			}
		}
	}

	return DefaultMarkerColor
}

// PersonMarkerColor returns the marker color for a person's categories in both languages.
func PersonMarkerColor(p *Person) string {
	if p.Categories.Override != nil {
		return MarkerColor(p.Categories.Default, *p.Categories.Override)
	}

	return MarkerColor(p.Categories.Default)
}
