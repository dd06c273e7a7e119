package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pevans/archetyper/archetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a router with the catalog routes
func setupCatalogRouter(t *testing.T, cfg *Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	server, err := NewCatalogAPIServer(cfg)
	require.NoError(t, err)

	router := gin.New()
	server.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestNewCatalogAPIServer_InvalidVariant verifies an unusable table is an
// error
func TestNewCatalogAPIServer_InvalidVariant(t *testing.T) {
	cfg := Default()
	cfg.Crawl.Variant = "fine"

	_, err := NewCatalogAPIServer(cfg)

	assert.Error(t, err)
}

// TestHandleListSources verifies the configured sources are listed in order
func TestHandleListSources(t *testing.T) {
	w := serve(setupCatalogRouter(t, Default()), http.MethodGet, "/api/v1/sources", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Total   int `json:"total"`
		Sources []struct {
			Label string `json:"label"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, "Winx Club", resp.Sources[1].Label)
}

// TestHandleGetSource verifies lookup by label
func TestHandleGetSource(t *testing.T) {
	router := setupCatalogRouter(t, Default())

	w := serve(router, http.MethodGet, "/api/v1/sources/Winx%20Club", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"section_ids":["Members"]`)

	w = serve(router, http.MethodGet, "/api/v1/sources/Nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestHandleGetArchetypes verifies the table in effect is returned
func TestHandleGetArchetypes(t *testing.T) {
	w := serve(setupCatalogRouter(t, CoarseDefault()), http.MethodGet, "/api/v1/archetypes", "")

	require.Equal(t, http.StatusOK, w.Code)
	var table archetype.Table
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
	assert.Equal(t, "coarse", table.Name)
	assert.Equal(t, archetype.Coarse().Labels(), table.Labels())
}

// TestHandleClassify verifies text is classified with the configured table
func TestHandleClassify(t *testing.T) {
	router := setupCatalogRouter(t, Default())

	w := serve(router, http.MethodPost, "/api/v1/classify",
		`{"text":"She is known for her hope and courage as the leader."}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ClassifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Leader", resp.Archetype)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, []string{"leader"}, resp.Matched)
	assert.Len(t, resp.Scores, 8)

	w = serve(router, http.MethodPost, "/api/v1/classify", `{"text":"Just a bakery."}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Gated)
	assert.Empty(t, resp.Archetype)

	w = serve(router, http.MethodPost, "/api/v1/classify", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
