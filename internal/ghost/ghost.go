// Package ghost publishes plans as posts through the Ghost Admin API.
package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"garden-planner/internal/clock"
)

const (
	adminAudience = "/admin/"
	tokenTTL      = 5 * time.Minute
)

// ErrInvalidAdminKey is returned when the admin key is not "id:hexsecret".
var ErrInvalidAdminKey = errors.New("invalid admin key format: expected id:secret")

// Post is a Ghost post as returned by the Admin API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	URL       string `json:"url"`
	UpdatedAt string `json:"updated_at"`
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

// Client talks to one Ghost site.
type Client struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
	clock      clock.Clock
}

// NewClient creates a Ghost Admin API client. adminKey is the "id:secret"
// pair of a custom integration.
func NewClient(baseURL, adminKey string, clk clock.Clock) *Client {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminKey:   adminKey,
		clock:      clk,
	}
}

// CreatePost creates a post from HTML, as a draft unless publish is set.
func (c *Client) CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error) {
	token, err := c.adminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if publish {
		status = "published"
	}
	body, err := json.Marshal(map[string][]map[string]string{
		"posts": {{"title": title, "html": html, "status": status}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ghost/api/admin/posts/?source=html", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out postsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}
	return &out.Posts[0], nil
}

// adminToken signs a short-lived JWT for the Admin API.
func (c *Client) adminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" || secretHex == "" {
		return "", ErrInvalidAdminKey
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := c.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		Audience:  jwt.ClaimStrings{adminAudience},
	})
	token.Header["kid"] = id
	return token.SignedString(secret)
}
