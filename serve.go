package phylotree

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// ServeCmd: HTTP API over the tree engine
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tree analysis HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		gin.SetMode(gin.ReleaseMode)
		router := newRouter()
		log.Printf("Serving tree analysis API on %s", addr)
		if err := router.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

func init() {
	ServeCmd.Flags().String("addr", ":5000", "listen address")
}

// newRouter builds the gin engine with all API routes
func newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", handleHealth)
	router.POST("/api/process-matrix", handleProcessMatrix)
	router.POST("/api/process-text", handleProcessText)
	router.GET("/api/model-info", handleModelInfo)
	router.GET("/api/datasets", handleDatasets)
	router.GET("/api/results", handleResults)
	router.POST("/api/search-node", handleSearchNode)

	return router
}

// statusForError maps engine errors to HTTP status codes
func statusForError(err error) int {
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrInsufficientData) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "phylotree"})
}

// processMatrixRequest is the request body for POST /api/process-matrix
type processMatrixRequest struct {
	DistanceMatrix [][]float64 `json:"distance_matrix" binding:"required"`
	Labels         []string    `json:"labels" binding:"required"`
	Threshold      *float64    `json:"threshold"`
}

func handleProcessMatrix(c *gin.Context) {
	var req processMatrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	threshold := DefaultClusterThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := Analyze(req.DistanceMatrix, req.Labels, threshold)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"newick":     result.Newick,
		"statistics": result.Statistics,
		"clusters":   result.Clusters,
	})
}

// processTextRequest is the request body for POST /api/process-text
type processTextRequest struct {
	Texts     []string `json:"texts" binding:"required"`
	Labels    []string `json:"labels"`
	Threshold *float64 `json:"threshold"`
}

func handleProcessText(c *gin.Context) {
	var req processTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	labels := req.Labels
	if len(labels) == 0 {
		labels = make([]string, len(req.Texts))
		for i := range req.Texts {
			labels[i] = fmt.Sprintf("Text_%03d", i)
		}
	}
	if len(labels) != len(req.Texts) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "labels and texts must have the same length"})
		return
	}

	threshold := DefaultClusterThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	log.Printf("Generating embeddings for %d texts", len(req.Texts))
	embeddings, err := embedTexts(req.Texts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := AnalyzeEmbeddings(embeddings, labels, threshold)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"newick":     result.Newick,
		"statistics": result.Statistics,
		"clusters":   result.Clusters,
	})
}

func handleModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_name":          EmbeddingModelName,
		"embedding_dimension": EmbeddingDimensions,
		"description":         "OpenAI embedding model for semantic similarity",
		"algorithm":           "Neighbor Joining",
		"distance_metric":     "Cosine distance",
	})
}

func handleDatasets(c *gin.Context) {
	datasets := make([]gin.H, 0, len(DatasetConfigs))
	for _, ds := range DatasetConfigs {
		datasets = append(datasets, gin.H{
			"name":        ds.Name,
			"file":        ds.File,
			"type":        ds.Type,
			"description": ds.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"datasets": datasets})
}

func handleResults(c *gin.Context) {
	data, err := os.ReadFile("trees/analysis_results.json")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis results available, run 'build-tree' first"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// searchNodeRequest is the request body for POST /api/search-node
type searchNodeRequest struct {
	NodeName string `json:"node_name" binding:"required"`
}

func handleSearchNode(c *gin.Context) {
	var req searchNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node_name is required"})
		return
	}

	info := searchNodeInfo(req.NodeName)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": info})
}
