package notifier

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Notifier delivers a text message to its default destination.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
