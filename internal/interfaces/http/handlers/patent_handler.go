package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/infrastructure/search/opensearch"
	"github.com/patentminer/patentminer/pkg/errors"
)

// PatentSearcher runs full-text queries against the search index.
type PatentSearcher interface {
	Search(ctx context.Context, q opensearch.SearchQuery) (*opensearch.SearchResult, error)
}

// PatentHandler serves scored patents from the repository and the search
// index.
type PatentHandler struct {
	patents  patent.Repository
	searcher PatentSearcher
}

func NewPatentHandler(patents patent.Repository, searcher PatentSearcher) *PatentHandler {
	return &PatentHandler{patents: patents, searcher: searcher}
}

// ListByRun returns the scored patents of one run, filterable by market
// domain and minimum opportunity score.
func (h *PatentHandler) ListByRun(c *gin.Context) {
	filter := patent.ListFilter{
		RunID:        c.Param("id"),
		MarketDomain: c.Query("market_domain"),
		MinScore:     queryFloat(c, "min_score", 0),
		Limit:        queryInt(c, "limit", 50),
		Offset:       queryInt(c, "offset", 0),
	}

	patents, err := h.patents.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patents": patents, "count": len(patents)})
}

// GetByRun returns one scored patent of a run.
func (h *PatentHandler) GetByRun(c *gin.Context) {
	p, err := h.patents.GetByPatentID(c.Request.Context(), c.Param("id"), c.Param("patent_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Search runs a full-text query over indexed patents.
func (h *PatentHandler) Search(c *gin.Context) {
	if h.searcher == nil {
		respondError(c, errors.New(errors.ErrCodeSourceUnavailable, "search index not configured"))
		return
	}

	q := opensearch.SearchQuery{
		Text:         c.Query("q"),
		RunID:        c.Query("run_id"),
		MarketDomain: c.Query("market_domain"),
		MinScore:     queryFloat(c, "min_score", 0),
		From:         queryInt(c, "offset", 0),
		Size:         queryInt(c, "limit", 20),
	}

	result, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": result.Total, "hits": result.Hits})
}
