package config

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pevans/archetyper/archetype"
)

// CatalogAPIServer exposes the crawl catalog and the classifier it
// configures.
type CatalogAPIServer struct {
	config     *Config
	classifier *archetype.Classifier
}

// NewCatalogAPIServer creates a catalog API server. The configuration must
// already be valid.
func NewCatalogAPIServer(config *Config) (*CatalogAPIServer, error) {
	classifier, err := config.Classifier()
	if err != nil {
		return nil, err
	}
	return &CatalogAPIServer{config: config, classifier: classifier}, nil
}

// RegisterRoutes adds the catalog routes to group.
func (c *CatalogAPIServer) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/sources", c.HandleListSources)
	group.GET("/sources/:label", c.HandleGetSource)
	group.GET("/archetypes", c.HandleGetArchetypes)
	group.POST("/classify", c.HandleClassify)
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleListSources handles GET /api/v1/sources.
func (c *CatalogAPIServer) HandleListSources(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"sources": c.config.Sources, "total": len(c.config.Sources)})
}

// HandleGetSource handles GET /api/v1/sources/:label.
func (c *CatalogAPIServer) HandleGetSource(ctx *gin.Context) {
	src, ok := c.config.Source(ctx.Param("label"))
	if !ok {
		ctx.JSON(http.StatusNotFound, errorResponse("not_found", "Source not found"))
		return
	}
	ctx.JSON(http.StatusOK, src)
}

// HandleGetArchetypes handles GET /api/v1/archetypes.
func (c *CatalogAPIServer) HandleGetArchetypes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.classifier.Table())
}

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// ClassifyResponse reports a classification and the per-category scores
// behind it.
type ClassifyResponse struct {
	Archetype string            `json:"archetype"`
	Score     int               `json:"score"`
	Matched   []string          `json:"matched"`
	Scores    []archetype.Score `json:"scores"`
	Gated     bool              `json:"gated"`
}

// HandleClassify handles POST /api/v1/classify.
func (c *CatalogAPIServer) HandleClassify(ctx *gin.Context) {
	var req ClassifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	result := c.classifier.Classify(req.Text)
	resp := ClassifyResponse{
		Archetype: result.Archetype,
		Score:     result.Score,
		Matched:   result.Matched,
		Scores:    result.Scores,
		Gated:     result.Gated,
	}
	if resp.Matched == nil {
		resp.Matched = []string{}
	}
	if resp.Scores == nil {
		resp.Scores = []archetype.Score{}
	}

	ctx.JSON(http.StatusOK, resp)
}
