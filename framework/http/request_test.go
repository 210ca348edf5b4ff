package http_test

import (
	netstd "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strut-web/strut/framework/http"
)

func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return http.NewRequest(r)
}

func TestRequest_BindJSON(t *testing.T) {
	req := jsonRequest("POST", "/users", `{"name":"ada","email":"ada@example.com"}`)

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, req.Bind(&payload))
	assert.Equal(t, "ada", payload.Name)
	assert.Equal(t, "ada@example.com", payload.Email)
}

func TestRequest_BindJSON_EmptyBody(t *testing.T) {
	req := jsonRequest("POST", "/users", "")

	var payload struct{}
	assert.Error(t, req.Bind(&payload))
}

func TestRequest_BindForm(t *testing.T) {
	form := url.Values{"name": {"ada"}, "tags": {"a", "b"}}
	r := httptest.NewRequest("POST", "/users", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req := http.NewRequest(r)

	var payload struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, req.Bind(&payload))
	assert.Equal(t, "ada", payload.Name)
	assert.Equal(t, []string{"a", "b"}, payload.Tags)
}

func TestRequest_BodyCap(t *testing.T) {
	req := jsonRequest("POST", "/upload", strings.Repeat("x", 100))
	req.LimitBody(64)

	_, err := req.Body()
	assert.ErrorIs(t, err, http.ErrBodyTooLarge)
}

func TestRequest_BodyUnderCap_CachedAcrossReads(t *testing.T) {
	req := jsonRequest("POST", "/upload", `{"k":"v"}`)
	req.LimitBody(64)

	first, err := req.Body()
	require.NoError(t, err)
	second, err := req.Body()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.JSONEq(t, `{"k":"v"}`, string(first))
}

func TestRequest_BearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/me", nil)
	r.Header.Set("Authorization", "Bearer secret-token")
	req := http.NewRequest(r)

	assert.Equal(t, "secret-token", req.BearerToken())

	r2 := httptest.NewRequest("GET", "/me", nil)
	r2.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, http.NewRequest(r2).BearerToken())
}

func TestRequest_QueryAndInput(t *testing.T) {
	r := httptest.NewRequest("GET", "/search?q=golang&page=2", nil)
	req := http.NewRequest(r)

	assert.Equal(t, "golang", req.Query("q"))
	assert.Equal(t, "2", req.Input("page"))
	assert.Equal(t, "10", req.Query("limit", "10"))
	assert.True(t, req.Has("q"))
	assert.False(t, req.Has("missing"))
}

func TestRequest_IsJSON(t *testing.T) {
	r := httptest.NewRequest("GET", "/api", nil)
	r.Header.Set("Accept", "application/json")
	assert.True(t, http.NewRequest(r).IsJSON())

	r2 := httptest.NewRequest("GET", "/page", nil)
	r2.Header.Set("Accept", "text/html")
	assert.False(t, http.NewRequest(r2).IsJSON())
}

func TestRequest_MethodAndPath(t *testing.T) {
	r := httptest.NewRequest(netstd.MethodDelete, "/users/9", nil)
	req := http.NewRequest(r)

	assert.Equal(t, "DELETE", req.Method())
	assert.Equal(t, "/users/9", req.Path())
}
