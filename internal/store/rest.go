package store

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

	"golang.org/x/time/rate"
)

const (
	restBasePath     = "/rest/v1"
	defaultUserAgent = "stockroom/0.1"
)

// HTTPError is a non-2xx answer from the REST endpoint.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// REST talks to a PostgREST-compatible endpoint, the query dialect spoken by
// hosted Postgres backends.
type REST struct {
	baseURL   *url.URL
	apiKey    string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

var _ Client = (*REST)(nil)

// NewREST builds a REST client. A DSN without a path gets /rest/v1 appended.
func NewREST(dsn string, opts Options) (*REST, error) {
	base, err := parseRESTBase(dsn)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestRate > 0 {
		burst := int(opts.RequestRate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestRate), burst)
	}
	return &REST{
		baseURL:   base,
		apiKey:    strings.TrimSpace(opts.APIKey),
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		userAgent: defaultUserAgent,
	}, nil
}

func (c *REST) List(ctx context.Context, collection string, q Query) ([]Record, error) {
	values := url.Values{}
	values.Set("select", "*")
	if field := strings.TrimSpace(q.OrderBy); field != "" {
		dir := "asc"
		if q.descending() {
			dir = "desc"
		}
		values.Set("order", field+"."+dir)
	}
	for field, want := range q.Where {
		values.Set(field, "eq."+want)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	var rows []Record
	if err := c.do(ctx, http.MethodGet, collection, values, nil, &rows); err != nil {
		return nil, opError("list", collection, err)
	}
	return rows, nil
}

func (c *REST) Insert(ctx context.Context, collection string, rec Record) (Record, error) {
	var rows []Record
	if err := c.do(ctx, http.MethodPost, collection, nil, rec, &rows); err != nil {
		return nil, opError("insert", collection, err)
	}
	if len(rows) == 0 {
		return nil, opError("insert", collection, fmt.Errorf("empty representation"))
	}
	return rows[0], nil
}

func (c *REST) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	values := url.Values{}
	values.Set("id", "eq."+id)
	body := patch.Clone()
	delete(body, "id")
	var rows []Record
	if err := c.do(ctx, http.MethodPatch, collection, values, body, &rows); err != nil {
		return nil, opError("update", collection, err)
	}
	if len(rows) == 0 {
		return nil, opError("update", collection, fmt.Errorf("%w: id %s", ErrNotFound, id))
	}
	return rows[0], nil
}

func (c *REST) Delete(ctx context.Context, collection, id string) (bool, error) {
	values := url.Values{}
	values.Set("id", "eq."+id)
	var rows []Record
	if err := c.do(ctx, http.MethodDelete, collection, values, nil, &rows); err != nil {
		return false, opError("delete", collection, err)
	}
	return len(rows) > 0, nil
}

func (c *REST) Probe(ctx context.Context, collection string) error {
	values := url.Values{}
	values.Set("select", "id")
	values.Set("limit", "1")
	if err := c.do(ctx, http.MethodGet, collection, values, nil, nil); err != nil {
		return opError("probe", collection, err)
	}
	return nil
}

// Close releases idle connections.
func (c *REST) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *REST) do(ctx context.Context, method, collection string, query url.Values, body any, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	reqURL := c.baseURL.JoinPath(collection)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errPayload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(payload, &errPayload)
		return &HTTPError{StatusCode: resp.StatusCode, Code: errPayload.Code, Message: errPayload.Message}
	}
	if dest == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseRESTBase(dsn string) (*url.URL, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("rest endpoint is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse rest endpoint %q: %w", dsn, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("rest endpoint %q has no host", dsn)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	if u.Path == "" {
		u.Path = restBasePath
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
