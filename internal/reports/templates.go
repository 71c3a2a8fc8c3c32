package reports

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateLoader parses the embedded page templates
type TemplateLoader struct {
	iconBaseURL string
}

// NewTemplateLoader creates a loader; iconBaseURL prefixes condition icons
func NewTemplateLoader(iconBaseURL string) *TemplateLoader {
	return &TemplateLoader{iconBaseURL: strings.TrimRight(iconBaseURL, "/")}
}

// LoadPageTemplate parses the widget page template
func (t *TemplateLoader) LoadPageTemplate() (*template.Template, error) {
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"iconURL": t.IconURL,
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return tmpl, nil
}

// IconURL returns the provider icon for a condition code
func (t *TemplateLoader) IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s@2x.png", t.iconBaseURL, code)
}
