// Package replit is the client of the private HTTP endpoints the platform web UI uses.
//
// All the requests of a run share the same cookie jar, the session cookie set by the
// bootstrap request is the only authentication mechanism.
package replit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/slok/replup/internal/log"
)

const (
	// DefaultBaseURL is the platform web host.
	DefaultBaseURL = "https://repl.it"

	bootstrapPath    = "/languages/nodejs"
	bootstrapReferer = "https://repl.it/@FelixMattick/FlawedLemonchiffonExam"
	userAgent        = "Mozilla/5.0"
)

// ClientConfig is the configuration of the platform client.
type ClientConfig struct {
	// BaseURL is the platform host, all the endpoints are relative to it.
	BaseURL string
	// HTTPClient is the HTTP client used for every request. If it doesn't have a cookie
	// jar one will be set, the session can't work without it.
	HTTPClient *http.Client
	// Logger for logging.
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.HTTPClient.Jar == nil {
		jar, err := NewCookieJar()
		if err != nil {
			return err
		}
		c.HTTPClient.Jar = jar
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "replit.Client"})
	return nil
}

// Client talks with the platform private API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewClient returns a new platform client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// NewCookieJar returns the cookie jar shared by all the requests of a run.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}
	return jar, nil
}

// do executes the request and returns the response, non 2xx responses are errors.
// The caller must close the body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s %s", resp.StatusCode, req.Method, req.URL.Redacted())
	}

	return resp, nil
}

func (c *Client) doRead(ctx context.Context, method, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readAll(resp)
}

func readAll(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}
