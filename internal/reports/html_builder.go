package reports

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"weatherwidget/internal/acquisition"
	"weatherwidget/internal/charts"
	"weatherwidget/internal/config"
	"weatherwidget/internal/logger"
	"weatherwidget/internal/models"
)

// HTMLBuilder handles HTML generation with goldmark
type HTMLBuilder struct {
	templateLoader *TemplateLoader
	page           *template.Template
	goldmark       goldmark.Markdown
	charts         *charts.ChartGenerator
	location       *time.Location
	log            *logger.Logger
}

// NewHTMLBuilder creates an HTML builder. Icons are served from iconBaseURL.
func NewHTMLBuilder(iconBaseURL string) (*HTMLBuilder, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	loader := NewTemplateLoader(iconBaseURL)
	page, err := loader.LoadPageTemplate()
	if err != nil {
		return nil, err
	}

	return &HTMLBuilder{
		templateLoader: loader,
		page:           page,
		goldmark:       md,
		charts:         charts.NewChartGenerator(),
		location:       time.Local,
		log:            logger.Component("reports"),
	}, nil
}

// SetLocation sets the time zone used for forecast times
func (h *HTMLBuilder) SetLocation(loc *time.Location) {
	h.location = loc
	h.charts.Location = loc
}

// ForecastCell is one column of the forecast strip
type ForecastCell struct {
	Hour          string
	Temperature   string
	ConditionCode string
}

// PageData represents the data structure for the page template
type PageData struct {
	Title         string
	Query         string
	Loading       bool
	Error         string
	Current       *models.CurrentWeather
	Content       template.HTML
	Forecast      []ForecastCell
	ChartDocument string
	ChartHeight   int
	Version       string
	GeneratedAt   string
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (h *HTMLBuilder) ConvertMarkdownToHTML(markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := h.goldmark.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// BuildPage renders the widget page for a state
func (h *HTMLBuilder) BuildPage(state acquisition.State) (string, error) {
	content, err := h.ConvertMarkdownToHTML(SummaryIn(state, h.location))
	if err != nil {
		return "", err
	}

	data := PageData{
		Title:       "Weather",
		Loading:     state.Loading,
		Error:       state.Error,
		Current:     state.Current,
		Content:     template.HTML(content),
		ChartHeight: h.charts.Height + 40,
		Version:     config.GetVersion(),
		GeneratedAt: time.Now().In(h.location).Format("2006-01-02 15:04:05"),
	}
	if state.Current != nil {
		data.Title = "Weather in " + state.Current.Place
		data.Query = state.Current.Place
	}

	for _, p := range state.Forecast {
		data.Forecast = append(data.Forecast, ForecastCell{
			Hour:          FormatHour(p, h.location),
			Temperature:   FormatTemperature(p.TemperatureC),
			ConditionCode: p.ConditionCode,
		})
	}

	snippet, err := h.charts.ForecastLineSnippet(state.Forecast)
	switch {
	case err == nil:
		data.ChartDocument = snippet.HTML
	case errors.Is(err, charts.ErrNoForecast):
	default:
		// The page is still useful without the chart.
		h.log.Warn("Failed to build forecast chart", err)
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderForecastPNG writes the forecast chart for a state as PNG
func (h *HTMLBuilder) RenderForecastPNG(w io.Writer, state acquisition.State) error {
	return h.charts.RenderForecastPNG(w, state.Forecast)
}
