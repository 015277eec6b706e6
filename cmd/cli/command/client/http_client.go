package client

// http_client.go = talks to the booksync HTTP API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booksync/cmd/cli/dto"
)

// APIError is a non-2xx answer from the API. Message carries the server's "error" field when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// Auth

func (c *HTTPClient) Register(ctx context.Context, request *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var result dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, request *dto.LoginRequest) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	var result dto.RefreshResponse
	req := &dto.RefreshTokenRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/refresh", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	req := &dto.RefreshTokenRequest{RefreshToken: refreshToken}
	return c.do(ctx, http.MethodPost, "/api/logout", req, nil)
}

// Books

// SearchBooks returns the catalog answer as received.
func (c *HTTPClient) SearchBooks(ctx context.Context, query string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := "/api/user/books/search?query=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Reviews

func (c *HTTPClient) ListReviews(ctx context.Context) ([]dto.UserBook, error) {
	var result []dto.UserBook
	if err := c.do(ctx, http.MethodGet, "/api/user/books", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, externalID string, request *dto.ReviewRequest) (*dto.ReviewEnvelope, error) {
	var result dto.ReviewEnvelope
	if err := c.do(ctx, http.MethodPost, reviewPath(externalID), request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpsertReview(ctx context.Context, externalID string, request *dto.ReviewRequest) (*dto.ReviewEnvelope, error) {
	var result dto.ReviewEnvelope
	if err := c.do(ctx, http.MethodPut, reviewPath(externalID), request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateStatus(ctx context.Context, externalID, status string) (*dto.ReviewEnvelope, error) {
	var result dto.ReviewEnvelope
	req := &dto.StatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, reviewPath(externalID)+"/status", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, externalID string) (*dto.MessageResponse, error) {
	var result dto.MessageResponse
	if err := c.do(ctx, http.MethodDelete, reviewPath(externalID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func reviewPath(externalID string) string {
	return "/api/user/books/" + url.PathEscape(externalID)
}

// do sends body as JSON and decodes a 2xx answer into out (skipped when out is nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	_ = json.Unmarshal(data, &payload)
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
}
