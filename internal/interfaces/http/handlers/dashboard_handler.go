package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/internal/application/dashboard"
	"github.com/patentminer/patentminer/internal/domain/patent"
)

// DashboardStore exposes the loaded discovery dataset to the BI endpoints.
type DashboardStore interface {
	Summary() (dashboard.Summary, error)
	TopOpportunities(n int) []patent.ScoredPatent
	FilingYearHistogram() map[int]int
}

// DashboardHandler serves the BI overview endpoints.
type DashboardHandler struct {
	store   DashboardStore
	patents patent.Repository
}

func NewDashboardHandler(store DashboardStore, patents patent.Repository) *DashboardHandler {
	return &DashboardHandler{store: store, patents: patents}
}

// Summary returns the overview statistics of the latest dataset.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.store.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TopOpportunities returns the highest-scoring patents of the latest
// dataset.
func (h *DashboardHandler) TopOpportunities(c *gin.Context) {
	n := queryInt(c, "limit", 10)
	top := h.store.TopOpportunities(n)
	c.JSON(http.StatusOK, gin.H{"patents": top, "count": len(top)})
}

// Timeline returns the filing-year histogram for the timeline chart.
func (h *DashboardHandler) Timeline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"filing_years": h.store.FilingYearHistogram()})
}

// DomainDistribution counts scored patents per market domain straight from
// the database, bypassing the vault snapshot.
func (h *DashboardHandler) DomainDistribution(c *gin.Context) {
	counts, err := h.patents.CountByDomain(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": counts})
}
