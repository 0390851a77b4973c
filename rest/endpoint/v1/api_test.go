package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamstack/attractions-api/auth"
	"github.com/roamstack/attractions-api/config"
	"github.com/roamstack/attractions-api/db"
	"github.com/roamstack/attractions-api/log"
	"github.com/roamstack/attractions-api/types"
)

type testConfig struct {
	pageSize  int
	uploadDir string
	naming    config.NamingConvention
}

func (c testConfig) DefaultPageSize() int            { return c.pageSize }
func (c testConfig) UploadDir() string               { return c.uploadDir }
func (c testConfig) MaxUploadBytes() int64           { return 1 << 20 }
func (c testConfig) Naming() config.NamingConvention { return c.naming }
func (c testConfig) Logger() log.Logger              { return nil }

type testEnv struct {
	router *httprouter.Router
	dbConn *db.Db
	authn  *auth.Authenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbConn, err := db.NewDb(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbConn.Close() })

	authn, err := auth.NewAuthenticator("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := testConfig{
		pageSize:  1000,
		uploadDir: t.TempDir(),
		naming:    config.NewDefaultNaming(),
	}

	router := httprouter.New()
	for _, route := range Routes("/v1", dbConn, authn, cfg) {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}

	return &testEnv{router: router, dbConn: dbConn, authn: authn}
}

func (env *testEnv) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, target, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"response body: %s", w.Body.String())
}

// register creates an account through the API and returns its bearer token.
func (env *testEnv) register(t *testing.T, email string, role string) string {
	t.Helper()

	w := env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]interface{}{
		"name":     "Test User",
		"email":    email,
		"password": "hunter22",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var response struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &response)
	require.NotEmpty(t, response.Token)
	return response.Token
}

// registerAdmin inserts an admin user directly since the register operation
// only accepts the user and publisher roles.
func (env *testEnv) registerAdmin(t *testing.T) string {
	t.Helper()

	id, err := env.dbConn.Collection("users").Insert(context.Background(), map[string]interface{}{
		"name":  "Admin",
		"email": "admin@example.com",
		"role":  "admin",
	})
	require.NoError(t, err)

	token, err := env.authn.IssueToken(id, "admin")
	require.NoError(t, err)
	return token
}

func (env *testEnv) createAttraction(t *testing.T, token string, fields map[string]interface{}) string {
	t.Helper()

	payload := map[string]interface{}{
		"name":        "Aquarium",
		"description": "Fish and more",
		"address":     "1 Harbour Street",
		"latitude":    52.52,
		"longitude":   13.4,
		"categories":  []string{"aquarium"},
	}
	for key, value := range fields {
		payload[key] = value
	}

	w := env.do(t, http.MethodPost, "/v1/attractions", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, "create attraction failed: %s", w.Body.String())

	var response struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &response)
	id, _ := response.Data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	token := env.register(t, "alice@example.com", "publisher")

	// Duplicate email
	w := env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]interface{}{
		"name":     "Alice Again",
		"email":    "Alice@Example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login
	w = env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	decodeBody(t, w, &login)
	assert.True(t, login.Success)
	assert.NotEmpty(t, login.Token)

	// Wrong password
	w = env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Me
	w = env.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, "alice@example.com", me.Data["email"])
	assert.Equal(t, "publisher", me.Data["role"])
	assert.NotContains(t, w.Body.String(), "password")

	// Me without a token
	w = env.do(t, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]interface{}{
		"name":     "Bob",
		"email":    "not-an-email",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]interface{}{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nobody registers as admin
	w = env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]interface{}{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "hunter22",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttractionCreateAuthorization(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name":        "Aquarium",
		"description": "Fish and more",
		"address":     "1 Harbour Street",
		"latitude":    52.52,
		"longitude":   13.4,
		"categories":  []string{"aquarium"},
	}

	w := env.do(t, http.MethodPost, "/v1/attractions", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken := env.register(t, "user@example.com", "user")
	w = env.do(t, http.MethodPost, "/v1/attractions", userToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	publisherToken := env.register(t, "pub@example.com", "publisher")
	w = env.do(t, http.MethodPost, "/v1/attractions", publisherToken, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "aquarium", created.Data["slug"])
	assert.NotEmpty(t, created.Data["user"])
	assert.NotEmpty(t, created.Data["createdAt"])
}

func TestAttractionCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "pub@example.com", "publisher")

	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"name": ""}},
		{"latitude out of range", map[string]interface{}{"latitude": 120.0}},
		{"unknown category", map[string]interface{}{"categories": []string{"casino"}}},
		{"bad website", map[string]interface{}{"website": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]interface{}{
				"name":        "Aquarium",
				"description": "Fish and more",
				"address":     "1 Harbour Street",
				"latitude":    52.52,
				"longitude":   13.4,
				"categories":  []string{"aquarium"},
			}
			for key, value := range tt.fields {
				payload[key] = value
			}
			w := env.do(t, http.MethodPost, "/v1/attractions", token, payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAttractionFetchUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.register(t, "owner@example.com", "publisher")
	otherToken := env.register(t, "other@example.com", "publisher")
	adminToken := env.registerAdmin(t)

	id := env.createAttraction(t, ownerToken, nil)

	// Fetch
	w := env.do(t, http.MethodGet, "/v1/attractions/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &fetched)
	assert.Equal(t, "Aquarium", fetched.Data["name"])

	w = env.do(t, http.MethodGet, "/v1/attractions/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Update by a non-owner
	w = env.do(t, http.MethodPut, "/v1/attractions/"+id, otherToken,
		map[string]interface{}{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Update by the owner refreshes the slug
	w = env.do(t, http.MethodPut, "/v1/attractions/"+id, ownerToken,
		map[string]interface{}{"name": "Sea Life Centre", "entryFee": 9.5})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &updated)
	assert.Equal(t, "Sea Life Centre", updated.Data["name"])
	assert.Equal(t, "sea-life-centre", updated.Data["slug"])
	assert.Equal(t, 9.5, updated.Data["entryFee"])

	// Delete by a non-owner, then by an admin
	w = env.do(t, http.MethodDelete, "/v1/attractions/"+id, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/attractions/"+id, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/attractions/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttractionListing(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "pub@example.com", "publisher")

	for i := 1; i <= 5; i++ {
		env.createAttraction(t, token, map[string]interface{}{
			"name":     fmt.Sprintf("Attraction %d", i),
			"entryFee": float64(i * 10),
		})
	}

	// Filter with a bracket operator on a snake_case key
	w := env.do(t, http.MethodGet, "/v1/attractions?entry_fee[gt]=30", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result types.ListResult
	decodeBody(t, w, &result)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Data, 2)
	assert.Nil(t, result.Pagination.Next)
	assert.Nil(t, result.Pagination.Prev)

	// Projection and sort
	w = env.do(t, http.MethodGet, "/v1/attractions?select=name&sort=-entry_fee", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &result)
	require.Len(t, result.Data, 5)
	assert.Equal(t, "Attraction 5", result.Data[0]["name"])
	assert.Equal(t, "Attraction 1", result.Data[4]["name"])
	for _, doc := range result.Data {
		assert.NotContains(t, doc, "entryFee", "projection should drop unselected fields")
		assert.Contains(t, doc, "id")
	}

	// Paging: 5 documents, 2 per page
	w = env.do(t, http.MethodGet, "/v1/attractions?page=2&limit=2&sort=name", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &result)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Attraction 3", result.Data[0]["name"])
	assert.Equal(t, "Attraction 4", result.Data[1]["name"])
	require.NotNil(t, result.Pagination.Next)
	assert.Equal(t, types.PageInfo{Page: 3, Limit: 2}, *result.Pagination.Next)
	require.NotNil(t, result.Pagination.Prev)
	assert.Equal(t, types.PageInfo{Page: 1, Limit: 2}, *result.Pagination.Prev)

	// Last page has no next
	w = env.do(t, http.MethodGet, "/v1/attractions?page=3&limit=2&sort=name", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &result)
	assert.Equal(t, 1, result.Count)
	assert.Nil(t, result.Pagination.Next)
	require.NotNil(t, result.Pagination.Prev)
}

func TestLikeAndBookmarkToggle(t *testing.T) {
	env := newTestEnv(t)
	publisherToken := env.register(t, "pub@example.com", "publisher")
	userToken := env.register(t, "fan@example.com", "user")

	id := env.createAttraction(t, publisherToken, nil)

	var response struct {
		Data map[string]interface{} `json:"data"`
	}

	w := env.do(t, http.MethodPut, "/v1/attractions/"+id+"/like", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &response)
	assert.Equal(t, true, response.Data["active"])
	assert.Equal(t, float64(1), response.Data["count"])

	// Second call removes the like
	w = env.do(t, http.MethodPut, "/v1/attractions/"+id+"/like", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &response)
	assert.Equal(t, false, response.Data["active"])
	assert.Equal(t, float64(0), response.Data["count"])

	w = env.do(t, http.MethodPut, "/v1/attractions/"+id+"/bookmark", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &response)
	assert.Equal(t, true, response.Data["active"])

	w = env.do(t, http.MethodPut, "/v1/attractions/"+id+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.register(t, "owner@example.com", "publisher")
	otherToken := env.register(t, "other@example.com", "publisher")

	attractionID := env.createAttraction(t, ownerToken, nil)

	// Only the attraction owner adds products to it
	w := env.do(t, http.MethodPost, "/v1/attractions/"+attractionID+"/products", otherToken,
		map[string]interface{}{"title": "Tour", "description": "Guided tour", "price": 25.0})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/v1/attractions/"+attractionID+"/products", ownerToken,
		map[string]interface{}{"title": "Tour", "description": "Guided tour", "price": 25.0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &created)
	productID, _ := created.Data["id"].(string)
	require.NotEmpty(t, productID)
	assert.Equal(t, true, created.Data["inStock"], "inStock defaults to true")
	assert.Equal(t, attractionID, created.Data["attraction"])

	// Listing inlines the owning attraction
	w = env.do(t, http.MethodGet, "/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed types.ListResult
	decodeBody(t, w, &listed)
	require.Equal(t, 1, listed.Count)
	expanded, ok := listed.Data[0]["attraction"].(map[string]interface{})
	require.True(t, ok, "attraction should be expanded: %s", w.Body.String())
	assert.Equal(t, "Aquarium", expanded["name"])

	// Nested listing is scoped to the attraction
	w = env.do(t, http.MethodGet, "/v1/attractions/"+attractionID+"/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listed)
	assert.Equal(t, 1, listed.Count)

	w = env.do(t, http.MethodGet, "/v1/attractions/no-such-id/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listed)
	assert.Equal(t, 0, listed.Count)

	// Update
	w = env.do(t, http.MethodPut, "/v1/products/"+productID, ownerToken,
		map[string]interface{}{"price": 30.0, "inStock": false})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &updated)
	assert.Equal(t, 30.0, updated.Data["price"])
	assert.Equal(t, false, updated.Data["inStock"])

	// Delete
	w = env.do(t, http.MethodDelete, "/v1/products/"+productID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/products/"+productID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/products/"+productID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAttractionCascadesProducts(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@example.com", "publisher")

	attractionID := env.createAttraction(t, token, nil)
	w := env.do(t, http.MethodPost, "/v1/attractions/"+attractionID+"/products", token,
		map[string]interface{}{"title": "Tour", "description": "Guided tour", "price": 25.0})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/attractions/"+attractionID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed types.ListResult
	decodeBody(t, w, &listed)
	assert.Equal(t, 0, listed.Count)
}

func TestRadiusSearch(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "pub@example.com", "publisher")

	// Berlin TV Tower and Hamburg's Miniatur Wunderland, roughly 255 km apart
	env.createAttraction(t, token, map[string]interface{}{
		"name": "TV Tower", "latitude": 52.5208, "longitude": 13.4094,
	})
	env.createAttraction(t, token, map[string]interface{}{
		"name": "Miniatur Wunderland", "latitude": 53.5438, "longitude": 9.9884,
	})

	// 50 km around central Berlin only finds the tower
	w := env.do(t, http.MethodGet, "/v1/radius/52.52/13.405/50", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result types.ListResult
	decodeBody(t, w, &result)
	require.Equal(t, 1, result.Count, w.Body.String())
	assert.Equal(t, "TV Tower", result.Data[0]["name"])

	// 300 km finds both
	w = env.do(t, http.MethodGet, "/v1/radius/52.52/13.405/300", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &result)
	assert.Equal(t, 2, result.Count)

	// Bad coordinates
	w = env.do(t, http.MethodGet, "/v1/radius/abc/13.405/50", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/v1/radius/52.52/13.405/-5", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAttractionPhoto(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@example.com", "publisher")
	id := env.createAttraction(t, token, nil)

	buildUpload := func(contentType string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())
		return body, writer.FormDataContentType()
	}

	body, contentType := buildUpload("image/png")
	r := httptest.NewRequest(http.MethodPut, "/v1/attractions/"+id+"/photo", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Data string `json:"data"`
	}
	decodeBody(t, w, &response)
	assert.Equal(t, "photo_"+id+".png", response.Data)

	// The attraction now references the stored file
	fetch := env.do(t, http.MethodGet, "/v1/attractions/"+id, "", nil)
	var fetched struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, fetch, &fetched)
	assert.Equal(t, response.Data, fetched.Data["photo"])

	// Non-image uploads are rejected
	body, contentType = buildUpload("text/plain")
	r = httptest.NewRequest(http.MethodPut, "/v1/attractions/"+id+"/photo", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Aquarium", "aquarium"},
		{"Sea Life Centre", "sea-life-centre"},
		{"Café & Gallery!", "caf-gallery"},
		{"  spaced  out  ", "spaced-out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

func TestToggleMembership(t *testing.T) {
	members, active := toggleMembership(nil, "u1")
	assert.True(t, active)
	assert.Equal(t, []interface{}{"u1"}, members)

	members, active = toggleMembership([]interface{}{"u1", "u2"}, "u1")
	assert.False(t, active)
	assert.Equal(t, []interface{}{"u2"}, members)
}
