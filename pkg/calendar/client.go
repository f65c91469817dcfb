package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the scheduling API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that authenticates as the token's
// user instead of the demo identity.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError is a non-2xx response body.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) FetchPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, "GET", "/api/calendar", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, post Post) (*Post, error) {
	var created Post
	if err := c.do(ctx, "POST", "/api/calendar/posts", post, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeletePost(ctx context.Context, id uint64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/calendar/posts/%d", id), nil, nil)
}

func (c *Client) GenerateContent(ctx context.Context, prompt, platform string) (string, error) {
	req := map[string]string{"prompt": prompt, "platform": platform}
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, "POST", "/api/calendar/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
