package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"weatherwidget/internal/logger"
	"weatherwidget/internal/models"
)

// DefaultIPLocatorURL is the free ip-api.com JSON endpoint
const DefaultIPLocatorURL = "http://ip-api.com/json"

type clientIPKey struct{}

// WithClientIP attaches the address to locate to ctx. Without one the
// IPLocator locates the caller's own public address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address stored by WithClientIP
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// ipAPIResponse is the subset of the ip-api.com answer we use
type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Query   string  `json:"query"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPLocator resolves a position from an IP address via an ip-api.com
// compatible service
type IPLocator struct {
	client  *resty.Client
	baseURL string
	tracer  trace.Tracer
	log     *logger.Logger
}

// NewIPLocator creates an IP locator against baseURL (DefaultIPLocatorURL when empty)
func NewIPLocator(client *resty.Client, baseURL string) *IPLocator {
	if baseURL == "" {
		baseURL = DefaultIPLocatorURL
	}
	return &IPLocator{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  otel.GetTracerProvider().Tracer("weatherwidget/geolocation"),
		log:     logger.Component("geolocation"),
	}
}

// Locate looks up the position of the context's client IP
func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	ctx, span := l.tracer.Start(ctx, "geolocation.ip")
	defer span.End()

	url := l.baseURL
	ip := ClientIP(ctx)
	if ip != "" && isPublic(ip) {
		url += "/" + ip
		span.SetAttributes(attribute.String("client.ip", ip))
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,query,city,country,lat,lon").
		Get(url)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return models.Coordinates{}, contextError(ctx.Err())
		}
		return models.Coordinates{}, &PositionError{
			Code:    PositionUnavailable,
			Message: "Network location provider unreachable",
			Err:     err,
		}
	}

	if resp.StatusCode() != 200 {
		return models.Coordinates{}, &PositionError{
			Code:    PositionUnavailable,
			Message: fmt.Sprintf("Network location provider returned status %d", resp.StatusCode()),
		}
	}

	var body ipAPIResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return models.Coordinates{}, &PositionError{
			Code:    PositionUnavailable,
			Message: "Network location provider sent an unreadable answer",
			Err:     err,
		}
	}

	if body.Status != "success" {
		msg := body.Message
		if msg == "" {
			msg = "Position unavailable"
		}
		return models.Coordinates{}, &PositionError{Code: PositionUnavailable, Message: msg}
	}

	coords := models.Coordinates{Latitude: body.Lat, Longitude: body.Lon}
	if !coords.Valid() {
		return models.Coordinates{}, &PositionError{
			Code:    PositionUnavailable,
			Message: fmt.Sprintf("Network location provider returned invalid position %s", coords),
		}
	}

	span.SetAttributes(attribute.String("geo.coordinates", coords.String()))
	l.log.Debug("Located by IP", logger.Fields{"query": body.Query, "city": body.City, "country": body.Country})
	return coords, nil
}

// isPublic reports whether ip is worth sending to the provider. Private and
// loopback addresses fall back to locating the service's own address.
func isPublic(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !(parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast())
}
