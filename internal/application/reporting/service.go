package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/patentminer/patentminer/internal/application/analysis"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/internal/infrastructure/messaging/kafka"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Uploader is the object-storage port.  The minio artifact store implements
// it; tests use in-memory fakes.
type Uploader interface {
	Upload(ctx context.Context, objectKey, contentType string, body []byte) (int64, error)
	Bucket() string
}

// EventPublisher emits report lifecycle events onto the bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, payload any) error
}

// Service renders, stores, and catalogs run reports.
type Service struct {
	store   Uploader
	catalog report.Repository

	events  EventPublisher
	metrics *prometheus.Metrics

	// vaultDir, when set, receives a local copy of every JSON export so the
	// dashboard's directory watcher picks it up.
	vaultDir string

	logger logging.Logger
	now    func() time.Time
}

// Option customizes optional service collaborators.
type Option func(*Service)

// WithPublisher wires report events onto the bus.
func WithPublisher(events EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithMetrics wires export instrumentation.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithVaultDir mirrors JSON exports into a local vault directory.
func WithVaultDir(dir string) Option {
	return func(s *Service) { s.vaultDir = dir }
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService assembles the reporting stage.
func NewService(store Uploader, catalog report.Repository, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog,
		logger:  logger.Named("reporting"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export renders the run into every requested format, uploads the artifacts,
// and catalogs them.  A failed format is reported and does not block the
// remaining formats; the error of the last failed format is returned when
// nothing exported.
func (s *Service) Export(
	ctx context.Context,
	run *discoverydomain.Run,
	patents []patent.ScoredPatent,
	assessments []analysis.Result,
	formats []report.Format,
) ([]*report.Report, error) {
	if run == nil {
		return nil, errors.New(errors.ErrCodeValidation, "run is required")
	}
	if len(formats) == 0 {
		formats = []report.Format{report.FormatJSON}
	}

	doc := &Document{
		GeneratedAt: s.now(),
		Run:         run,
		Patents:     patents,
		Analysis:    assessments,
	}

	var exported []*report.Report
	var lastErr error
	for _, format := range formats {
		rep, err := s.exportOne(ctx, doc, format)
		if err != nil {
			lastErr = err
			s.observeExport(format, "error")
			s.logger.Error("report export failed",
				logging.String("run_id", run.ID),
				logging.String("format", string(format)),
				logging.Err(err))
			continue
		}
		s.observeExport(format, "ok")
		exported = append(exported, rep)
	}

	if len(exported) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return exported, nil
}

func (s *Service) exportOne(ctx context.Context, doc *Document, format report.Format) (*report.Report, error) {
	if !format.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown report format %q", format)
	}

	body, err := Render(doc, format)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("runs/%s/report_%s.%s",
		doc.Run.ID, doc.GeneratedAt.Format("20060102_150405"), format.Extension())
	size, err := s.store.Upload(ctx, objectKey, contentTypes[format], body)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{
		ID:        uuid.NewString(),
		RunID:     doc.Run.ID,
		Format:    format,
		Bucket:    s.store.Bucket(),
		ObjectKey: objectKey,
		SizeBytes: size,
		CreatedAt: s.now(),
	}
	if err := s.catalog.Create(ctx, rep); err != nil {
		return nil, err
	}

	if format == report.FormatJSON && s.vaultDir != "" {
		s.mirrorToVault(doc.Run.ID, body)
	}
	s.publishGenerated(ctx, rep)
	return rep, nil
}

// mirrorToVault drops a local copy for the dashboard watcher.  Failures are
// logged, not fatal: the canonical artifact already sits in object storage.
func (s *Service) mirrorToVault(runID string, body []byte) {
	if err := os.MkdirAll(s.vaultDir, 0o755); err != nil {
		s.logger.Warn("vault mkdir failed", logging.String("dir", s.vaultDir), logging.Err(err))
		return
	}
	name := fmt.Sprintf("patent_discoveries_%s_%s.json", s.now().Format("20060102_150405"), runID)
	path := filepath.Join(s.vaultDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		s.logger.Warn("vault write failed", logging.String("path", path), logging.Err(err))
		return
	}
	s.logger.Info("report mirrored to vault", logging.String("path", path))
}

func (s *Service) publishGenerated(ctx context.Context, rep *report.Report) {
	if s.events == nil {
		return
	}
	payload := kafka.ReportGeneratedPayload{
		ReportID:  rep.ID,
		RunID:     rep.RunID,
		Format:    string(rep.Format),
		ObjectKey: rep.ObjectKey,
		CreatedAt: rep.CreatedAt,
	}
	err := s.events.Publish(ctx, kafka.TopicReportGenerated, "report.generated", rep.RunID, payload)
	if err != nil {
		s.logger.Warn("report event publish failed",
			logging.String("report_id", rep.ID), logging.Err(err))
	}
}

func (s *Service) observeExport(format report.Format, outcome string) {
	if s.metrics != nil {
		s.metrics.ReportExportsTotal.WithLabelValues(string(format), outcome).Inc()
	}
}
