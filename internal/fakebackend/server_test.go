package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Status     bool            `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func do(t *testing.T, s *Server, method, path, token, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	_, env := do(t, s, http.MethodPost, "/api/auth/login", "",
		`{"email":"`+AdminEmail+`","password":"`+AdminPassword+`"}`)
	require.True(t, env.Status)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestLogin(t *testing.T) {
	s := New()

	rec, env := do(t, s, http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Status)

	token := login(t, s)
	rec, _ = do(t, s, http.MethodGet, "/api/invoices", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireToken(t *testing.T) {
	s := New()

	rec, env := do(t, s, http.MethodGet, "/api/clients", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "not authenticated", env.Message)

	rec, _ = do(t, s, http.MethodGet, "/api/clients", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestThrottle(t *testing.T) {
	s := New()
	token := login(t, s)
	s.Throttle(2, "3")

	for i := 0; i < 2; i++ {
		rec, env := do(t, s, http.MethodGet, "/api/taxes", token, "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("Retry-After"))
		assert.Equal(t, http.StatusTooManyRequests, env.StatusCode)
	}

	rec, _ := do(t, s, http.MethodGet, "/api/taxes", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), s.Requests())
}

func TestCRUD(t *testing.T) {
	s := New()
	token := login(t, s)

	rec, env := do(t, s, http.MethodPost, "/api/products", token, `{"name":"Widget","price":9.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)
	require.NotEmpty(t, id)

	rec, _ = do(t, s, http.MethodPut, "/api/products/"+id, token, `{"name":"Gadget","price":12}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, env = do(t, s, http.MethodGet, "/api/products/"+id, token, "")
	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Gadget", got["name"])

	rec, _ = do(t, s, http.MethodDelete, "/api/products/"+id, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/products/"+id, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPagingAndSearch(t *testing.T) {
	s := New()
	token := login(t, s)
	_, err := s.Seed("clients",
		map[string]any{"name": "Acme"},
		map[string]any{"name": "Globex"},
		map[string]any{"name": "Acme Europe"},
	)
	require.NoError(t, err)

	_, env := do(t, s, http.MethodGet, "/api/clients?search=acme&page=2&limit=1", token, "")
	var page struct {
		Rows       []map[string]any `json:"rows"`
		Pagination struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Acme Europe", page.Rows[0]["name"])
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestLegacyArrays(t *testing.T) {
	s := New(WithLegacyArrays("taxes"))
	token := login(t, s)
	_, err := s.Seed("taxes", map[string]any{"name": "VAT", "percentage": 20})
	require.NoError(t, err)

	_, env := do(t, s, http.MethodGet, "/api/taxes", token, "")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 1)

	_, err = s.Seed("unknown", map[string]any{})
	assert.Error(t, err)
}
