// Package lrs posts statements to a Learning Record Store over the xAPI
// HTTP interface.
package lrs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/learnsim/internal/logger"
	"github.com/abhisek/learnsim/internal/xapi"
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 4096

// Config holds LRS connection settings.
type Config struct {
	Endpoint string
	Username string
	Password string
	Timeout  time.Duration
	Version  string
}

// DefaultConfig returns defaults with no endpoint.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Version: xapi.DefaultVersion,
	}
}

// StatusError is returned for any non-2xx LRS response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("lrs %s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to one LRS endpoint.
type Client struct {
	cfg      Config
	endpoint *url.URL
	client   *http.Client
	log      *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New validates cfg and returns a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("lrs endpoint is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse lrs endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("lrs endpoint %q must be http or https", cfg.Endpoint)
	}
	if cfg.Version == "" {
		cfg.Version = xapi.DefaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	c := &Client{
		cfg:      cfg,
		endpoint: u,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// SaveBulkStatements posts statements as one batch. The LRS either
// accepts or rejects the whole batch.
func (c *Client) SaveBulkStatements(ctx context.Context, statements []xapi.Statement) error {
	if len(statements) == 0 {
		return nil
	}
	body, err := json.Marshal(statements)
	if err != nil {
		return fmt.Errorf("marshal statements: %w", err)
	}
	start := time.Now()
	resp, err := c.do(ctx, http.MethodPost, c.url("statements", nil), body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Debug("lrs batch accepted",
		"statements", len(statements),
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

type statementResult struct {
	Statements []xapi.Statement `json:"statements"`
	More       string           `json:"more"`
}

// QueryStatements reads statements from the LRS, following "more"
// links until the limit is met or the result is exhausted.
func (c *Client) QueryStatements(ctx context.Context, q xapi.Query) ([]xapi.Statement, error) {
	params := url.Values{}
	if q.Actor != "" {
		mbox := q.Actor
		if !strings.HasPrefix(mbox, "mailto:") {
			mbox = "mailto:" + mbox
		}
		agent, err := json.Marshal(map[string]string{"mbox": mbox})
		if err != nil {
			return nil, fmt.Errorf("marshal agent filter: %w", err)
		}
		params.Set("agent", string(agent))
	}
	if q.VerbID != "" {
		params.Set("verb", q.VerbID)
	}
	if q.ActivityID != "" {
		params.Set("activity", q.ActivityID)
	}
	if q.Registration != "" {
		params.Set("registration", q.Registration)
	}
	if !q.Since.IsZero() {
		params.Set("since", q.Since.UTC().Format(time.RFC3339Nano))
	}
	if !q.Until.IsZero() {
		params.Set("until", q.Until.UTC().Format(time.RFC3339Nano))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("ascending", "true")

	var out []xapi.Statement
	next := c.url("statements", params)
	for next != "" {
		resp, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		var page statementResult
		err = json.NewDecoder(resp.Body).Decode(&page)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode statement result: %w", err)
		}
		out = append(out, page.Statements...)
		if q.Limit > 0 && len(out) >= q.Limit {
			return out[:q.Limit], nil
		}
		next = ""
		if page.More != "" {
			more, err := c.endpoint.Parse(page.More)
			if err != nil {
				return nil, fmt.Errorf("parse more link: %w", err)
			}
			next = more.String()
		}
	}
	return out, nil
}

// About returns the xAPI versions the LRS supports.
func (c *Client) About(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url("about", nil), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var about struct {
		Version []string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&about); err != nil {
		return nil, fmt.Errorf("decode about: %w", err)
	}
	return about.Version, nil
}

func (c *Client) url(resource string, params url.Values) string {
	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/" + resource
	if params != nil {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// do sends one request and converts non-2xx responses to *StatusError.
// The caller closes the body of a successful response.
func (c *Client) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("build lrs request: %w", err)
	}
	req.Header.Set("X-Experience-API-Version", c.cfg.Version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Username != "" || c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lrs %s %s: %w", method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}
