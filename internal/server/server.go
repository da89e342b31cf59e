// Package server exposes the scoring service over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driving"
	"github.com/credostack/underwrite/internal/logger"
)

// ScoreHandler serves scoring decisions.
type ScoreHandler struct {
	scoring driving.ScoringService
}

// NewScoreHandler creates a handler over the scoring service.
func NewScoreHandler(scoring driving.ScoringService) *ScoreHandler {
	return &ScoreHandler{scoring: scoring}
}

// SetupRouter builds the HTTP router for the scoring API.
func SetupRouter(scoring driving.ScoringService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", healthCheck)

	h := NewScoreHandler(scoring)
	v1 := r.Group("/api/v1")
	{
		v1.POST("/score/request", h.Score)
		v1.GET("/score/:request_id", h.GetResult)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "underwrite-scoring"})
}

// Score validates the payload, runs the decision flow, and returns the
// classification. Malformed payloads are rejected with the validation
// detail and logged for replay.
func (h *ScoreHandler) Score(c *gin.Context) {
	var req domain.ScoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Malformed scoring payload rejected: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "detail": err.Error()})
		return
	}

	resp, err := h.scoring.Score(c.Request.Context(), &req)
	if err != nil {
		logger.Error("Scoring request %s failed: %v", req.RequestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetResult returns a previously persisted outcome.
func (h *ScoreHandler) GetResult(c *gin.Context) {
	requestID := c.Param("request_id")

	rec, err := h.scoring.GetResult(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		logger.Error("Result lookup %s failed: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":        rec.RequestID,
		"customer_id":       rec.CustomerID,
		"approved":          rec.Approved,
		"probability_score": rec.ProbabilityScore,
		"is_thin_file":      rec.IsThinFile,
		"created_at":        rec.CreatedAt,
	})
}
