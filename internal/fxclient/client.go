package fxclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is where the published artifacts are served from.
const DefaultBaseURL = "https://raw.githubusercontent.com/currencybot/open-exchange-rates/master"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=fxclient_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads latest and historical rate documents.
type Client struct {
	// baseURL is the root holding latest.json and historical/.
	baseURL string
	// base is the currency every document must be quoted against.
	base string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// flight coalesces concurrent fetches of the same document.
	flight singleflight.Group
}

// Option is a configuration option for the client.
type Option func(*Client)

// WithBaseURL sets the root URL of the artifacts.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithBase sets the expected base currency, USD by default.
func WithBase(base string) Option {
	return func(c *Client) {
		c.base = strings.ToUpper(strings.TrimSpace(base))
	}
}

// NewClient creates a new client.
func NewClient(options ...Option) (*Client, error) {
	var client = &Client{
		baseURL:    DefaultBaseURL,
		base:       "USD",
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	u, err := url.Parse(client.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", client.baseURL)
	}
	return client, nil
}
