package dataset

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/logger"
)

// Source supplies the records served by the API.
type Source interface {
	Load() ([]*character.Character, error)
}

// CSVSource reads records from a dataset file on every request, so a new
// crawl is visible without a restart.
type CSVSource struct {
	Path string
}

// Load implements Source.
func (s CSVSource) Load() ([]*character.Character, error) {
	return LoadCSV(s.Path)
}

// StoreSource serves the most recent stored run.
type StoreSource struct {
	Store *Store
}

// Load implements Source.
func (s StoreSource) Load() ([]*character.Character, error) {
	run, err := s.Store.LatestRun()
	if err != nil {
		return nil, err
	}
	return s.Store.Characters(run.RunID)
}

// APIServer serves the dataset read API.
type APIServer struct {
	source Source
	store  *Store
	log    logger.Logger
}

// NewAPIServer creates an API server. store may be nil, in which case the
// run history routes are not registered.
func NewAPIServer(source Source, store *Store, log logger.Logger) *APIServer {
	return &APIServer{source: source, store: store, log: log}
}

// SetupRouter configures the Gin router with all dataset routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/characters", s.HandleListCharacters)
	api.GET("/series", s.HandleListSeries)
	api.GET("/stats/distribution", s.HandleDistribution)
	api.GET("/stats/diversity", s.HandleDiversity)
	api.GET("/stats/keywords", s.HandleKeywords)

	if s.store != nil {
		api.GET("/runs", s.HandleListRuns)
		api.GET("/runs/:id", s.HandleGetRun)
		api.GET("/runs/:id/characters", s.HandleRunCharacters)
	}

	return router
}

func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("Request served",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
}

// ListCharactersResponse is the response for GET /api/v1/characters.
type ListCharactersResponse struct {
	Characters []*character.Character `json:"characters"`
	Total      int                    `json:"total"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// loadFiltered loads the dataset and applies query filters. Repeated and
// comma-separated values are both accepted.
func (s *APIServer) loadFiltered(c *gin.Context) ([]*character.Character, bool) {
	records, err := s.source.Load()
	if errors.Is(err, ErrRunNotFound) {
		return []*character.Character{}, true
	}
	if err != nil {
		s.log.Error("Failed to load dataset", logger.Err(err))
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to load dataset: "+err.Error())
		return nil, false
	}

	filter := Filter{
		Series:     queryList(c, "series"),
		Archetypes: queryList(c, "archetype"),
		Name:       strings.TrimSpace(c.Query("name")),
	}

	return filter.Apply(records), true
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// HandleListCharacters handles GET /api/v1/characters.
func (s *APIServer) HandleListCharacters(c *gin.Context) {
	records, ok := s.loadFiltered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ListCharactersResponse{Characters: records, Total: len(records)})
}

// HandleListSeries handles GET /api/v1/series.
func (s *APIServer) HandleListSeries(c *gin.Context) {
	records, ok := s.loadFiltered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": SeriesList(records)})
}

// HandleDistribution handles GET /api/v1/stats/distribution.
func (s *APIServer) HandleDistribution(c *gin.Context) {
	records, ok := s.loadFiltered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"distribution": Distribution(records)})
}

// HandleDiversity handles GET /api/v1/stats/diversity.
func (s *APIServer) HandleDiversity(c *gin.Context) {
	records, ok := s.loadFiltered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"diversity": Diversity(records)})
}

// HandleKeywords handles GET /api/v1/stats/keywords.
func (s *APIServer) HandleKeywords(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter: must be a non-negative integer")
			return
		}
		limit = n
	}

	records, ok := s.loadFiltered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": TopKeywords(records, limit)})
}

// HandleListRuns handles GET /api/v1/runs.
func (s *APIServer) HandleListRuns(c *gin.Context) {
	runs, err := s.store.ListRuns(0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to list runs: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}

// HandleGetRun handles GET /api/v1/runs/:id.
func (s *APIServer) HandleGetRun(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// HandleRunCharacters handles GET /api/v1/runs/:id/characters.
func (s *APIServer) HandleRunCharacters(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}

	records, err := s.store.Characters(run.RunID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to load characters: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, ListCharactersResponse{Characters: records, Total: len(records)})
}

func (s *APIServer) lookupRun(c *gin.Context) (*Run, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_id", "Invalid run ID format")
		return nil, false
	}

	run, err := s.store.GetRun(id)
	if errors.Is(err, ErrRunNotFound) {
		writeError(c, http.StatusNotFound, "not_found", "Run not found")
		return nil, false
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to get run: "+err.Error())
		return nil, false
	}
	return run, true
}
