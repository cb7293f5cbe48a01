// Package client is a Go client for the property API. It keeps an
// in-memory copy of the property list and splices it on every successful
// mutation so callers never need to refetch after a write.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Property mirrors the JSON record returned by the API
type Property struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	Price     string    `json:"price"`
	Type      string    `json:"type"`
	Beds      int       `json:"beds"`
	Baths     int       `json:"baths"`
	Area      string    `json:"area"`
	Image     string    `json:"image"`
	Status    string    `json:"status"`
	City      *string   `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is the account returned by Login
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// PropertyForm is what Add and Update submit. Image, when set, is uploaded
// as the listing photo and takes precedence over ImageURL.
type PropertyForm struct {
	Title    string
	Location string
	Price    string
	Type     string
	Beds     int
	Baths    int
	Area     string
	Status   string
	City     string
	ImageURL string

	Image     io.Reader
	ImageName string
	// ImageType defaults to the type implied by ImageName's extension.
	ImageType string
}

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is the server refusing a write for lack of a session
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the API and caches the property list
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu         sync.RWMutex
	properties []Property
	loaded     bool
	loading    bool
	err        error
}

// New creates a Client for the API rooted at baseURL, e.g. "http://localhost:3000"
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar, Timeout: 30 * time.Second},
		properties: []Property{},
	}, nil
}

// Properties returns a copy of the cached list
func (c *Client) Properties() []Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Property, len(c.properties))
	copy(out, c.properties)
	return out
}

// Loading reports whether a list fetch is in flight
func (c *Client) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the error from the most recent list fetch, if any
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Load fetches the list the first time it is called; later calls are no-ops
// until Refresh is used.
func (c *Client) Load(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh refetches the full list from the server
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var list []Property
	err := c.do(ctx, http.MethodGet, "/api/properties", nil, "", &list, "Failed to fetch properties")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	if list == nil {
		list = []Property{}
	}
	c.properties = list
	c.loaded = true
	c.err = nil
	return nil
}

// Add creates a property and puts it at the front of the cached list
func (c *Client) Add(ctx context.Context, form PropertyForm) (*Property, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, err
	}

	var created Property
	if err := c.do(ctx, http.MethodPost, "/api/properties", body, contentType, &created, "Failed to add property"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.properties = append([]Property{created}, c.properties...)
	c.mu.Unlock()
	return &created, nil
}

// Update replaces a property and swaps it into the cached list in place
func (c *Client) Update(ctx context.Context, id int, form PropertyForm) (*Property, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, err
	}

	var updated Property
	if err := c.do(ctx, http.MethodPut, "/api/properties/"+strconv.Itoa(id), body, contentType, &updated, "Failed to update property"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range c.properties {
		if c.properties[i].ID == id {
			c.properties[i] = updated
		}
	}
	c.mu.Unlock()
	return &updated, nil
}

// Delete removes a property and drops it from the cached list
func (c *Client) Delete(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, "/api/properties/"+strconv.Itoa(id), nil, "", nil, "Failed to delete property"); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.properties[:0:0]
	for _, p := range c.properties {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.properties = kept
	c.mu.Unlock()
	return nil
}

// Login opens an admin session; the cookie is kept in the client's jar
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	var resp struct {
		Success bool `json:"success"`
		User    User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(payload), "application/json", &resp, "Login failed"); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout ends the admin session
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, "", nil, "Could not log out")
}

// Check reports whether the client currently holds a valid session
func (c *Client) Check(ctx context.Context) (bool, error) {
	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, "", &resp, "Failed to check session"); err != nil {
		return false, err
	}
	return resp.Authenticated, nil
}

// ImageURL turns a stored image reference into something fetchable.
// Absolute URLs are returned unchanged; "/uploads/..." paths are resolved
// against the API base URL.
func (c *Client) ImageURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.baseURL.ResolveReference(rel).String()
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (f PropertyForm) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", f.Title},
		{"location", f.Location},
		{"price", f.Price},
		{"type", f.Type},
		{"beds", strconv.Itoa(f.Beds)},
		{"baths", strconv.Itoa(f.Baths)},
		{"area", f.Area},
		{"status", f.Status},
		{"city", f.City},
		{"imageUrl", f.ImageURL},
	}
	for _, kv := range fields {
		if kv[1] == "" {
			continue
		}
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to encode field %s: %w", kv[0], err)
		}
	}

	if f.Image != nil {
		contentType := f.ImageType
		if contentType == "" {
			contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.ImageName)))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(f.ImageName)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, f.Image); err != nil {
			return nil, "", fmt.Errorf("failed to encode image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
