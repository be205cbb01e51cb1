// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpapi exposes the matcher and catalog over a small local HTTP
// API for the scanner frontend. The API is a thin shell: candidate
// selection and the verdict come from the catalog and decision packages.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/felixleeca/recalllens/internal/catalog"
	"github.com/felixleeca/recalllens/internal/decision"
	"github.com/felixleeca/recalllens/pkg/types"
)

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	store    *catalog.Store
	matchCfg types.MatchConfig
	version  string
}

// NewHandler creates a handler backed by the given catalog store.
func NewHandler(store *catalog.Store, matchCfg types.MatchConfig, version string) *Handler {
	return &Handler{store: store, matchCfg: matchCfg, version: version}
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg types.ServerConfig, handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))

	router.GET("/healthz", handler.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/check", handler.Check)
		v1.GET("/recalls/:source/:id", handler.GetRecall)
	}

	return router
}

// Health returns the service status and catalog size.
func (h *Handler) Health(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "recalllens",
		"version": h.version,
		"records": count,
	})
}

// checkResponse wraps the verdict with the candidate count so the
// frontend can show how much of the catalog was considered.
type checkResponse struct {
	types.MatchResult
	CandidatesConsidered int `json:"candidates_considered"`
}

// Check evaluates a scan against the catalog's candidate set and returns
// the traffic-light verdict.
func (h *Handler) Check(c *gin.Context) {
	var scan types.ScanInput
	if err := c.ShouldBindJSON(&scan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan input: " + err.Error()})
		return
	}

	candidates, err := h.store.Candidates(c.Request.Context(), scan)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := decision.EvaluateWith(scan, candidates, h.matchCfg)
	c.JSON(http.StatusOK, checkResponse{
		MatchResult:          result,
		CandidatesConsidered: len(candidates),
	})
}

// GetRecall returns one recall record by source and source-native ID.
func (h *Handler) GetRecall(c *gin.Context) {
	source := types.Source(c.Param("source"))
	switch source {
	case types.SourceFDA, types.SourceFSIS, types.SourceCPSC:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source: " + string(source)})
		return
	}

	rec, err := h.store.Get(c.Request.Context(), source, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
