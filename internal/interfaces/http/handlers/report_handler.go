package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/internal/application/analysis"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/report"
)

// downloadLinkExpiry bounds how long a presigned artifact URL stays valid.
const downloadLinkExpiry = 15 * time.Minute

// AnalysisService produces investment assessments for a completed run.
type AnalysisService interface {
	AnalyzeRun(ctx context.Context, runID string) ([]analysis.Result, error)
}

// ReportService renders and uploads run reports.
type ReportService interface {
	Export(ctx context.Context, run *discoverydomain.Run, patents []patent.ScoredPatent,
		assessments []analysis.Result, formats []report.Format) ([]*report.Report, error)
}

// ArtifactSigner issues temporary download URLs for stored artifacts.
type ArtifactSigner interface {
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// ReportHandler drives report generation and retrieval.
type ReportHandler struct {
	discovery DiscoveryService
	analysis  AnalysisService
	reporting ReportService
	patents   patent.Repository
	catalog   report.Repository
	signer    ArtifactSigner
}

func NewReportHandler(
	discovery DiscoveryService,
	analysis AnalysisService,
	reporting ReportService,
	patents patent.Repository,
	catalog report.Repository,
	signer ArtifactSigner,
) *ReportHandler {
	return &ReportHandler{
		discovery: discovery,
		analysis:  analysis,
		reporting: reporting,
		patents:   patents,
		catalog:   catalog,
		signer:    signer,
	}
}

// CreateReportRequest selects output formats and whether to include the
// investment assessment section.
type CreateReportRequest struct {
	Formats []report.Format `json:"formats"`
	Analyze bool            `json:"analyze"`
}

// Create renders the run into the requested formats and uploads the
// artifacts.
func (h *ReportHandler) Create(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "COMMON_010", Message: "invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	runID := c.Param("id")

	run, err := h.discovery.GetRun(ctx, runID)
	if err != nil {
		respondError(c, err)
		return
	}
	patents, err := h.patents.List(ctx, patent.ListFilter{RunID: runID})
	if err != nil {
		respondError(c, err)
		return
	}

	var assessments []analysis.Result
	if req.Analyze {
		assessments, err = h.analysis.AnalyzeRun(ctx, runID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	reports, err := h.reporting.Export(ctx, run, patents, assessments, req.Formats)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reports": reports})
}

// ListByRun returns the cataloged reports of one run.
func (h *ReportHandler) ListByRun(c *gin.Context) {
	reports, err := h.catalog.ListByRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// Download returns a temporary URL for the report artifact.
func (h *ReportHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	rep, err := h.catalog.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.signer.PresignedURL(ctx, rep.ObjectKey, downloadLinkExpiry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report_id":  rep.ID,
		"url":        url,
		"expires_in": downloadLinkExpiry.String(),
	})
}
