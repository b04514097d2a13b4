package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/internal/application/discovery"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
)

// DiscoveryService is the slice of the discovery application layer the
// handler needs.
type DiscoveryService interface {
	Execute(ctx context.Context, req discovery.Request) (*discovery.Result, error)
	GetRun(ctx context.Context, id string) (*discoverydomain.Run, error)
	ListRuns(ctx context.Context, filter discoverydomain.ListFilter) ([]*discoverydomain.Run, error)
}

// DiscoveryHandler serves the discovery run resource.
type DiscoveryHandler struct {
	service DiscoveryService
}

func NewDiscoveryHandler(service DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

// CreateRun executes a discovery run synchronously and returns the run with
// its ranked candidates.  Zero-result and all-passes-failed runs still
// return 200 with diagnostics explaining the outcome.
func (h *DiscoveryHandler) CreateRun(c *gin.Context) {
	var req discovery.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_010", Message: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.service.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRun returns one run with its diagnostics.
func (h *DiscoveryHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns returns recent runs, optionally filtered by status.
func (h *DiscoveryHandler) ListRuns(c *gin.Context) {
	filter := discoverydomain.ListFilter{
		Status: discoverydomain.RunStatus(c.Query("status")),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}

	runs, err := h.service.ListRuns(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}
