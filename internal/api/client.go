package api

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
	"sync"
	"time"

	"github.com/anoncampus/campusforum/internal/model"
)

// Client talks to the forum REST backend. The bearer token is the only
// mutable state; the auth session manager is its sole writer, so the
// authorization header can never drift from durable storage.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the backend at baseURL. A zero
// timeout falls back to 10 seconds; there is no unbounded request.
func NewClient(baseURL, clientID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken installs the bearer token attached to subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token
func (c *Client) ClearToken() {
	c.SetToken("")
}

// HasToken reports whether a bearer token is installed
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// requestJSON performs a JSON request against the backend. body may be
// nil, url.Values (form-encoded, for the password grant) or any
// JSON-marshalable value. out may be nil to discard the response body.
func (c *Client) requestJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindNetwork, cause: fmt.Errorf("malformed response: %w", err)}
		}
	}
	return nil
}

// transportError maps a round-trip failure to an Error, keeping
// deadline failures distinguishable from other network faults.
func transportError(err error) *Error {
	kind := KindNetwork
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	} else if errors.As(err, &urlErr) && urlErr.Timeout() {
		kind = KindTimeout
	}
	return &Error{Kind: kind, cause: err}
}

// statusError decodes the backend's error body. The backend sends
// {"detail": "..."} on rejected requests.
func statusError(resp *http.Response) *Error {
	apiErr := &Error{Kind: KindHTTP, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}

// Token exchanges credentials for an access token (OAuth2 password
// grant). The backend's form field is named "username" but carries
// the login identifier, commonly the email.
func (c *Client) Token(ctx context.Context, identifier, password string) (string, error) {
	form := url.Values{
		"username": {identifier},
		"password": {password},
	}

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.requestJSON(ctx, http.MethodPost, "/auth/token", form, &result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", &Error{Kind: KindNetwork, cause: errors.New("token response missing access_token")}
	}
	return result.AccessToken, nil
}

// Me fetches the identity behind the installed bearer token
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.requestJSON(ctx, http.MethodGet, "/users/me", nil, &user)
	return user, err
}

// CreateUser registers a new account. It does not authenticate.
func (c *Client) CreateUser(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return c.requestJSON(ctx, http.MethodPost, "/users/", body, nil)
}

// ListPosts fetches the public feed, newest first
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.requestJSON(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost publishes a post. Requires an installed bearer token.
func (c *Client) CreatePost(ctx context.Context, title, content string) (model.Post, error) {
	body := map[string]string{
		"title":   title,
		"content": content,
	}
	var post model.Post
	err := c.requestJSON(ctx, http.MethodPost, "/posts", body, &post)
	return post, err
}
