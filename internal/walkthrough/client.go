package walkthrough

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	service "github.com/okian/cinemind/internal/app"
)

// apiError is the error body returned by the API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError reports an unexpected response status.
type StatusError struct {
	Method string
	Path   string
	Status int
	Code   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d (%s)", e.Method, e.Path, e.Status, e.Code)
}

// client is a thin JSON client for the session API.
type client struct {
	http  *http.Client
	base  string
	stats *Stats
}

func newClient(cfg *Config, stats *Stats) *client {
	return &client{
		http:  &http.Client{Timeout: cfg.Timeout},
		base:  cfg.BaseURL,
		stats: stats,
	}
}

// do sends a request and decodes the body into out when the status matches want.
func (c *client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.stats.Requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != want {
		var e apiError
		_ = json.Unmarshal(raw, &e)
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Code: e.Code}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *client) health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

func (c *client) create(ctx context.Context) (service.View, error) {
	var v service.View
	err := c.do(ctx, http.MethodPost, "/sessions", nil, http.StatusCreated, &v)
	return v, err
}

func (c *client) navigate(ctx context.Context, id string, page service.Page) (service.View, error) {
	var v service.View
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/navigate/"+string(page), nil, http.StatusOK, &v)
	return v, err
}

func (c *client) signIn(ctx context.Context, id, name, email string) (service.View, error) {
	var v service.View
	body := map[string]string{"name": name, "email": email, "password": "walkthrough"}
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/auth", body, http.StatusOK, &v)
	return v, err
}

func (c *client) search(ctx context.Context, id, query string) (service.View, error) {
	var v service.View
	err := c.do(ctx, http.MethodGet, "/sessions/"+id+"/search?q="+url.QueryEscape(query), nil, http.StatusOK, &v)
	return v, err
}

type selectionResult struct {
	Change string       `json:"change"`
	View   service.View `json:"view"`
}

func (c *client) toggleSelection(ctx context.Context, id string, movieID int) (selectionResult, error) {
	var r selectionResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%s/selection/%d", id, movieID), nil, http.StatusOK, &r)
	return r, err
}

func (c *client) cont(ctx context.Context, id string, want int) (service.View, error) {
	var v service.View
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/continue", nil, want, &v)
	return v, err
}

type watchedResult struct {
	Watched bool         `json:"watched"`
	View    service.View `json:"view"`
}

func (c *client) toggleWatched(ctx context.Context, id string, movieID int) (watchedResult, error) {
	var r watchedResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%s/watched/%d", id, movieID), nil, http.StatusOK, &r)
	return r, err
}

func (c *client) end(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+id, nil, http.StatusNoContent, nil)
}

func (c *client) view(ctx context.Context, id string, want int) error {
	return c.do(ctx, http.MethodGet, "/sessions/"+id, nil, want, nil)
}
