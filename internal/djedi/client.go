package djedi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const (
	sessionCookieName = "sessionid"
	dataFieldName     = "data"
)

// Node is the part of a node record the migration cares about. A nil Data
// means the node has no content at that address.
type Node struct {
	Data *string `json:"data"`
}

// Client talks to one djedi admin instance with one session.
type Client struct {
	http      *http.Client
	baseURL   string
	user      *url.Userinfo
	sessionID string
}

// New creates a client for adminURL. Credentials embedded in adminURL are
// moved out of the URL and sent as basic auth. A nil httpClient selects a
// client without timeout.
func New(adminURL, sessionID string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is empty")
	}
	u, err := url.Parse(strings.TrimSpace(adminURL))
	if err != nil {
		return nil, fmt.Errorf("admin url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("admin url %q: scheme must be http or https", u.Redacted())
	}
	if u.Host == "" {
		return nil, fmt.Errorf("admin url %q: missing host", u.Redacted())
	}
	user := u.User
	u.User = nil
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(u.String(), "/"),
		user:      user,
		sessionID: sessionID,
	}, nil
}

// BaseURL returns the admin URL without credentials.
func (c *Client) BaseURL() string { return c.baseURL }

// URL returns the endpoint for action on uri.
func (c *Client) URL(uri, action string) string {
	return NodeURL(c.baseURL, uri, action)
}

func (c *Client) newRequest(ctx context.Context, method, uri, action string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(uri, action), body)
	if err != nil {
		return nil, err
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.sessionID})
	if c.user != nil {
		password, _ := c.user.Password()
		req.SetBasicAuth(c.user.Username(), password)
	}
	return req, nil
}

// Load reads the node stored at uri.
func (c *Client) Load(ctx context.Context, uri string) (Node, error) {
	req, err := c.newRequest(ctx, http.MethodGet, uri, ActionLoad, nil)
	if err != nil {
		return Node{}, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Node{}, &StatusError{Op: "node.load", Code: res.StatusCode, Status: res.Status, kind: ErrFetch}
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	var node Node
	if err := json.Unmarshal(body, &node); err != nil {
		return Node{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return node, nil
}

// SaveDraft stores data as the draft of uri through the editor endpoint.
func (c *Client) SaveDraft(ctx context.Context, uri, data string) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField(dataFieldName, data); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, uri, ActionEditor, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.expectOK(req, "node.editor")
}

// Publish promotes the draft of uri to the published version.
func (c *Client) Publish(ctx context.Context, uri string) error {
	req, err := c.newRequest(ctx, http.MethodPut, uri, ActionPublish, nil)
	if err != nil {
		return err
	}
	return c.expectOK(req, "node.publish")
}

func (c *Client) expectOK(req *http.Request, op string) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode != http.StatusOK {
		return &StatusError{Op: op, Code: res.StatusCode, Status: res.Status, kind: ErrWriteRejected}
	}
	return nil
}
