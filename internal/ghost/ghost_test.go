package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-planner/internal/clock"
)

var secret = []byte("0123456789abcdef")

func TestCreatePost(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	key := "integration-id:" + hex.EncodeToString(secret)

	var gotBody map[string][]map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ghost/api/admin/posts/", r.URL.Path)
		assert.Equal(t, "html", r.URL.Query().Get("source"))

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Ghost ")
		assert.True(t, ok)
		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
			assert.Equal(t, "integration-id", tok.Header["kid"])
			return secret, nil
		}, jwt.WithAudience(adminAudience), jwt.WithTimeFunc(func() time.Time { return now }))
		if assert.NoError(t, err) {
			assert.True(t, token.Valid)
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"posts":[{"id":"abc","title":"Backyard","status":"draft","url":"https://blog.example/p/abc/"}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", key, clock.NewFake(now))
	post, err := c.CreatePost(context.Background(), "Backyard", "<h1>Backyard</h1>", false)
	require.NoError(t, err)

	assert.Equal(t, "abc", post.ID)
	assert.Equal(t, "https://blog.example/p/abc/", post.URL)
	require.Len(t, gotBody["posts"], 1)
	assert.Equal(t, map[string]string{"title": "Backyard", "html": "<h1>Backyard</h1>", "status": "draft"}, gotBody["posts"][0])
}

func TestCreatePost_Errors(t *testing.T) {
	validKey := "id:" + hex.EncodeToString(secret)

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"bad token"}]}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, validKey, nil).CreatePost(context.Background(), "t", "h", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "bad token")
	})

	t.Run("empty response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"posts":[]}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, validKey, nil).CreatePost(context.Background(), "t", "h", true)
		assert.ErrorContains(t, err, "no post returned")
	})

	for _, key := range []string{"", "nocolon", "id:", "id:not-hex"} {
		t.Run("admin key "+key, func(t *testing.T) {
			_, err := NewClient("http://127.0.0.1:0", key, nil).CreatePost(context.Background(), "t", "h", false)
			assert.ErrorContains(t, err, "failed to create admin token")
		})
	}
}
