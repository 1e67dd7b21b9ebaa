// Package apiclient talks to the link API over HTTP and maps its responses
// back onto domain errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// DefaultBaseURL is where the server listens by default.
const DefaultBaseURL = "http://localhost:5000"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListLinks(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	if err := c.do(ctx, http.MethodGet, "/api/links", nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *Client) CreateLink(ctx context.Context, fields domain.LinkFields) (*domain.Link, error) {
	var link domain.Link
	if err := c.do(ctx, http.MethodPost, "/api/links", fields, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) UpdateLink(ctx context.Context, id int64, fields domain.LinkFields) (*domain.Link, error) {
	var link domain.Link
	if err := c.do(ctx, http.MethodPut, linkPath(id), fields, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) DeleteLink(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, linkPath(id), nil, nil)
}

// GetLink fetches one link by id.
func (c *Client) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	var link domain.Link
	if err := c.do(ctx, http.MethodGet, linkPath(id), nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func linkPath(id int64) string {
	return "/api/links/" + strconv.FormatInt(id, 10)
}

type errorBody struct {
	Error string      `json:"error"`
	Code  domain.Code `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Wrap(err, domain.CodeTransport, "malformed response from server")
	}
	return nil
}

// decodeError turns an API error body into a domain error. Bodies without a
// code are classified by status.
func decodeError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &eb)

	msg := eb.Error
	if msg == "" {
		msg = fmt.Sprintf("server responded %d", resp.StatusCode)
	}

	code := eb.Code
	switch {
	case code != "":
	case resp.StatusCode == http.StatusNotFound:
		code = domain.CodeNotFound
	case resp.StatusCode < http.StatusInternalServerError:
		code = domain.CodeValidation
	default:
		code = domain.CodeInternal
	}
	return &domain.Error{Code: code, Message: msg}
}

var _ ports.LinkAPI = (*Client)(nil)
