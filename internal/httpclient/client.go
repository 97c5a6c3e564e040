// Package httpclient provides the bounded HTTP transport used for QMIB
// calls: per-request timeout, scheme validation, a redirect cap, and
// optional TLS verification skip for development gateways.
package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elinasafina23/EBR/errors"
)

// Options customizes transport behavior
type Options struct {
	// InsecureSkipVerify disables TLS certificate verification. Only for
	// development QMIB environments with self-signed certificates.
	InsecureSkipVerify bool

	// MaxRedirects caps redirect chains (default 10)
	MaxRedirects int
}

// Client wraps http.Client with scheme validation and bounded redirects
type Client struct {
	*http.Client
	allowedSchemes []string
	maxRedirects   int
}

// New creates an HTTP client with the given per-request timeout
func New(timeout time.Duration, opts Options) *Client {
	maxRedirects := opts.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = 10
	}

	transport := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := &Client{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		allowedSchemes: []string{"http", "https"},
		maxRedirects:   maxRedirects,
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		if err := client.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	return client
}

// Do executes an HTTP request after validating its URL
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// Close releases pooled connections held by the transport
func (c *Client) Close() {
	c.CloseIdleConnections()
}

func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	for _, allowed := range c.allowedSchemes {
		if scheme == allowed {
			if u.Hostname() == "" {
				return errors.New("URL missing hostname")
			}
			return nil
		}
	}
	return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
}
