package dataset

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/archetyper/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: create an API server over a CSV file
func setupCSVServer(t *testing.T) *gin.Engine {
	path := filepath.Join(t.TempDir(), "characters.csv")
	require.NoError(t, SaveCSV(path, sampleRecords()))
	return NewAPIServer(CSVSource{Path: path}, nil, logger.NewNop()).SetupRouter()
}

func get(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHandleListCharacters_All verifies the full dataset is returned
func TestHandleListCharacters_All(t *testing.T) {
	w := get(t, setupCSVServer(t), "/api/v1/characters")

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListCharactersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, "Usagi Tsukino", resp.Characters[0].Name)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestHandleListCharacters_Filters verifies repeated and comma-separated
// filter values
func TestHandleListCharacters_Filters(t *testing.T) {
	router := setupCSVServer(t)

	tests := []struct {
		target string
		total  int
	}{
		{"/api/v1/characters?series=Sailor%20Moon", 2},
		{"/api/v1/characters?series=Sailor%20Moon&series=Winx%20Club", 3},
		{"/api/v1/characters?series=Sailor%20Moon,Winx%20Club&archetype=Leader", 2},
		{"/api/v1/characters?name=BLO", 2},
		{"/api/v1/characters?archetype=Rebel", 0},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, router, tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			var resp ListCharactersResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.total, resp.Total)
		})
	}
}

// TestHandleStats verifies the statistics routes
func TestHandleStats(t *testing.T) {
	router := setupCSVServer(t)

	w := get(t, router, "/api/v1/stats/distribution?series=Winx%20Club")
	require.Equal(t, http.StatusOK, w.Code)
	var dist struct {
		Distribution []ArchetypeCount `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dist))
	assert.Equal(t, []ArchetypeCount{{Series: "Winx Club", Archetype: "Leader", Count: 1}}, dist.Distribution)

	w = get(t, router, "/api/v1/stats/diversity")
	require.Equal(t, http.StatusOK, w.Code)
	var div struct {
		Diversity []SeriesDiversity `json:"diversity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &div))
	assert.Len(t, div.Diversity, 3)

	w = get(t, router, "/api/v1/stats/keywords?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	var kw struct {
		Keywords []KeywordCount `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kw))
	assert.Equal(t, []KeywordCount{{Keyword: "leader", Count: 2}}, kw.Keywords)

	w = get(t, router, "/api/v1/stats/keywords?limit=many")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, router, "/api/v1/series")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"series":["Sailor Moon","Winx Club","Powerpuff Girls"]}`, w.Body.String())
}

// TestHandleListCharacters_MissingFile verifies a load failure is a 500
func TestHandleListCharacters_MissingFile(t *testing.T) {
	router := NewAPIServer(CSVSource{Path: filepath.Join(t.TempDir(), "none.csv")}, nil, logger.NewNop()).SetupRouter()

	w := get(t, router, "/api/v1/characters")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Error.Code)
}

// TestRunRoutes verifies run history routes over a store
func TestRunRoutes(t *testing.T) {
	store := createTestStore(t)
	router := NewAPIServer(StoreSource{Store: store}, store, logger.NewNop()).SetupRouter()

	w := get(t, router, "/api/v1/characters")
	require.Equal(t, http.StatusOK, w.Code, "no runs yet is an empty dataset")
	assert.JSONEq(t, `{"characters":[],"total":0}`, w.Body.String())

	saved, err := store.SaveRun(sampleRun(time.Now()), sampleRecords())
	require.NoError(t, err)

	w = get(t, router, "/api/v1/runs")
	require.Equal(t, http.StatusOK, w.Code)

	w = get(t, router, "/api/v1/runs/"+saved.RunID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var run Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, saved.RunID, run.RunID)

	w = get(t, router, "/api/v1/runs/"+saved.RunID.String()+"/characters")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ListCharactersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Total)

	w = get(t, router, "/api/v1/characters?series=Winx%20Club")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/runs/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/v1/runs/00000000-0000-0000-0000-000000000001").Code)
}

// TestRunRoutes_NoStore verifies run routes are absent without a store
func TestRunRoutes_NoStore(t *testing.T) {
	w := get(t, setupCSVServer(t), "/api/v1/runs")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
