package fetchers

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient builds the shared resty client. Requests are never retried
// and a zero timeout leaves the transport defaults in place.
func NewHTTPClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "weatherwidget/1.0")
	return client
}
