// Package rest implements the api ports against the finance REST backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/api"
	"fintrack/internal/core"
)

type Client struct {
	base string
	hc   *http.Client
}

// Ensure interface conformance
var (
	_ api.Authenticator    = (*Client)(nil)
	_ api.SummaryReader    = (*Client)(nil)
	_ api.TransactionStore = (*Client)(nil)
	_ api.CategoryStore    = (*Client)(nil)
)

// New creates a REST client for the given base URL (e.g.
// "http://localhost:8000/api/v1"). The HTTP client carries no timeout:
// calls are cancelled only through the caller's context.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login: empty access token in response")
	}
	return out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", nil, "", body, nil)
}

func (c *Client) Me(ctx context.Context, token string) (core.User, error) {
	var u core.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, nil, &u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (c *Client) Summary(ctx context.Context, token string, f core.TransactionFilter) (core.Summary, error) {
	var s core.Summary
	if err := c.do(ctx, http.MethodGet, "/dashboard/summary", f.Query(), token, nil, &s); err != nil {
		return core.Summary{}, err
	}
	return s, nil
}

func (c *Client) ListTransactions(ctx context.Context, token string, f core.TransactionFilter) ([]core.Transaction, error) {
	var ts []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", f.Query(), token, nil, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func (c *Client) CreateTransaction(ctx context.Context, token string, in core.TransactionInput) (core.Transaction, error) {
	var t core.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, token, in, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, token string, id string, in core.TransactionInput) (core.Transaction, error) {
	var t core.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), nil, token, in, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, token, nil, nil)
}

func (c *Client) ExportTransactions(ctx context.Context, token string, f core.TransactionFilter) ([]byte, error) {
	return c.raw(ctx, http.MethodGet, "/transactions/export", f.Query(), token)
}

func (c *Client) ListCategories(ctx context.Context, token string) ([]core.Category, error) {
	var cs []core.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, token, nil, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, in core.CategoryInput) (core.Category, error) {
	var cat core.Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, token, in, &cat); err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, token string, id string, in core.CategoryInput) (core.Category, error) {
	var cat core.Category
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, token, in, &cat); err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, token, nil, nil)
}

// do performs a single JSON request/response exchange. The bearer token is
// attached when present. A 401 maps to api.ErrUnauthorized, a 404 to
// api.ErrNotFound; any other failure is wrapped as a transport error.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, token string, in, out any) error {
	resp, err := c.send(ctx, method, path, query, token, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(method, path, resp); err != nil {
		return err
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// raw performs a request and returns the undecoded body, used for the
// CSV export payload.
func (c *Client) raw(ctx context.Context, method, path string, query map[string]string, token string) ([]byte, error) {
	resp, err := c.send(ctx, method, path, query, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(method, path, resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, method, path string, query map[string]string, token string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	u := c.base + path
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func checkStatus(method, path string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: %w", method, path, api.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: %w", method, path, api.ErrNotFound)
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Debug("Backend error response", "method", method, "path", path, "status", resp.StatusCode, "body", string(detail))
		return fmt.Errorf("%s %s: backend returned status %d", method, path, resp.StatusCode)
	}
	return nil
}
