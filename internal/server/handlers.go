package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/model"
)

// predictRequest is the validated input shape for /api/predict. Fields
// are pointers so missing keys are distinguishable from zero values.
type predictRequest struct {
	Recency   *int     `json:"recency"`
	Frequency *int     `json:"frequency"`
	Monetary  *float64 `json:"monetary"`
}

type predictResponse struct {
	ClusterID   int             `json:"cluster_id"`
	SegmentName string          `json:"segment_name"`
	Description string          `json:"description"`
	Strategy    string          `json:"strategy"`
	RFM         model.RFMRecord `json:"rfm"`
	RunID       string          `json:"run_id"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (s *Server) handlePredict(c *gin.Context) {
	ctx := s.swapper.Load()
	if ctx == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "models not loaded"})
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with recency, frequency and monetary"})
		return
	}
	if req.Recency == nil || req.Frequency == nil || req.Monetary == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required fields: recency, frequency, monetary"})
		return
	}

	result, err := ctx.PredictRFM(model.RFMRecord{
		Recency:   *req.Recency,
		Frequency: *req.Frequency,
		Monetary:  *req.Monetary,
	})
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
			return
		}
		slog.Error("prediction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, predictResponse{
		ClusterID:   result.Cluster,
		SegmentName: result.Segment.Name,
		Description: result.Segment.Description,
		Strategy:    result.Segment.Strategy,
		RFM:         result.RFM,
		RunID:       ctx.RunID(),
		Timestamp:   time.Now().UTC(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx := s.swapper.Load()

	status := "healthy"
	code := http.StatusOK
	if ctx == nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	resp := gin.H{
		"status":        status,
		"models_loaded": ctx != nil,
		"timestamp":     time.Now().UTC(),
	}
	if ctx != nil {
		resp["run_id"] = ctx.RunID()
	}

	c.JSON(code, resp)
}

type segmentEntry struct {
	ClusterID int           `json:"cluster_id"`
	Segment   model.Segment `json:"segment"`
}

func (s *Server) handleSegments(c *gin.Context) {
	ctx := s.swapper.Load()

	catalog := model.DefaultCatalog()
	if ctx != nil {
		catalog = ctx.Catalog()
	}

	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	entries := make([]segmentEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, segmentEntry{ClusterID: id, Segment: catalog[id]})
	}

	c.JSON(http.StatusOK, gin.H{"segments": entries})
}
