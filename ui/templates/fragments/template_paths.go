// Package fragments provides template path constants for organized template management
package fragments

import "strings"

// Page is the single full-page template
const Page = "index.html"

// Template path constants for organized fragment access
const (
	// Layout templates
	Sidebar = "layout/sidebar.html"
	Notice  = "layout/notice.html"

	// Section templates
	Summary     = "sections/summary.html"
	Categorical = "sections/categorical.html"
	Numerical   = "sections/numerical.html"
	Correlation = "sections/correlation.html"
)

// GetAllTemplatePaths returns all template paths that must be registered
func GetAllTemplatePaths() []string {
	return []string{
		Page,

		// Layout
		Sidebar,
		Notice,

		// Sections
		Summary,
		Categorical,
		Numerical,
		Correlation,
	}
}

// GetTemplateCategory returns the category for a given template path
func GetTemplateCategory(templatePath string) string {
	switch {
	case strings.HasPrefix(templatePath, "layout/"):
		return "layout"
	case strings.HasPrefix(templatePath, "sections/"):
		return "sections"
	case !strings.Contains(templatePath, "/"):
		return "page"
	default:
		return "unknown"
	}
}
