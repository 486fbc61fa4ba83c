package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CSRFHeader carries the anti-forgery token on every mutating request.
const CSRFHeader = "X-CSRF-Token"

// HTTPClient implements Gateway and Store against the ai_writer routes.
type HTTPClient struct {
	cfg     Config
	client  *http.Client
	base    *url.URL
	headers http.Header
}

var (
	_ Gateway = (*HTTPClient)(nil)
	_ Store   = (*HTTPClient)(nil)
)

// ClientOption customises an HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL resolves relative URLs from the config against base.
func WithBaseURL(base string) ClientOption {
	return func(c *HTTPClient) {
		if u, err := url.Parse(base); err == nil {
			c.base = u
		}
	}
}

// WithHeader adds a header to every request, e.g. the host's identity header.
func WithHeader(key, value string) ClientOption {
	return func(c *HTTPClient) { c.headers.Set(key, value) }
}

// NewHTTPClient builds a client. A nil http.Client gets a default one without
// a timeout: calls run to completion or failure.
func NewHTTPClient(cfg Config, client *http.Client, opts ...ClientOption) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	c := &HTTPClient{cfg: cfg, client: client, headers: http.Header{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generatePayload struct {
	Content   string          `json:"content"`
	ContentID json.RawMessage `json:"content_id"`
	Error     string          `json:"error"`
}

// draftID reads content_id as an opaque value: a JSON string is used as is,
// any other scalar by its literal text.
func (p generatePayload) draftID() (DraftID, error) {
	raw := bytes.TrimSpace(p.ContentID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode content_id: %w", err)
		}
		return DraftID(strings.TrimSpace(s)), nil
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", fmt.Errorf("content_id must be a string or number, got %s", raw)
	}
	return DraftID(raw), nil
}

type updatePayload struct {
	Content string `json:"content"`
}

// Generate posts the title and prompt and returns the new draft.
func (c *HTTPClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return GenerateResponse{}, err
	}
	resp, err := c.do(ctx, http.MethodPost, c.cfg.GenerateURL, body)
	if err != nil {
		return GenerateResponse{}, err
	}
	defer resp.Body.Close()

	var data generatePayload
	decodeErr := json.NewDecoder(resp.Body).Decode(&data)
	if !ok(resp.StatusCode) {
		return GenerateResponse{}, &ResponseError{Status: resp.StatusCode, Message: strings.TrimSpace(data.Error)}
	}
	if decodeErr != nil {
		return GenerateResponse{}, fmt.Errorf("decode generate response: %w", decodeErr)
	}
	id, err := data.draftID()
	if err != nil {
		return GenerateResponse{}, err
	}
	if id == "" {
		return GenerateResponse{}, errors.New("generate response is missing content_id")
	}
	return GenerateResponse{Content: data.Content, ContentID: id}, nil
}

// Update replaces the content of a pending draft.
func (c *HTTPClient) Update(ctx context.Context, id DraftID, content string) (Result, error) {
	body, err := json.Marshal(updatePayload{Content: content})
	if err != nil {
		return Result{}, err
	}
	return c.result(ctx, http.MethodPatch, ExpandURL(c.cfg.UpdateURLTemplate, id), body)
}

// Apply commits a draft into its issue.
func (c *HTTPClient) Apply(ctx context.Context, id DraftID) (Result, error) {
	return c.result(ctx, http.MethodPost, ExpandURL(c.cfg.ApplyURLTemplate, id), nil)
}

// result decodes a {success, error} body. The flag is returned as reported;
// a non-2xx status never counts as success.
func (c *HTTPClient) result(ctx context.Context, method, target string, body []byte) (Result, error) {
	resp, err := c.do(ctx, method, target, body)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		if !ok(resp.StatusCode) {
			return Result{}, &ResponseError{Status: resp.StatusCode}
		}
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if !ok(resp.StatusCode) {
		res.Success = false
	}
	return res, nil
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	u, err := c.resolve(target)
	if err != nil {
		return nil, err
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(CSRFHeader, c.cfg.CSRFToken)
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.client.Do(req)
}

func (c *HTTPClient) resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", target, err)
	}
	if ref.IsAbs() || c.base == nil {
		return ref.String(), nil
	}
	return c.base.ResolveReference(ref).String(), nil
}

func ok(status int) bool { return status >= 200 && status < 300 }

// FetchConfig loads the widget configuration the server publishes for an
// issue page.
func FetchConfig(ctx context.Context, client *http.Client, configURL string, headers http.Header) (Config, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, configURL, nil)
	if err != nil {
		return Config{}, err
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Config{}, err
	}
	defer resp.Body.Close()
	if !ok(resp.StatusCode) {
		var data struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&data)
		return Config{}, &ResponseError{Status: resp.StatusCode, Message: data.Error}
	}
	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode writer config: %w", err)
	}
	return cfg, nil
}
