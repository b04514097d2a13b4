// Package dashboard serves the BI view over the newest discovery export in
// the local vault directory: summary statistics, top opportunities, and
// distribution breakdowns.  The dataset reloads automatically when a new
// export lands.
package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patentminer/patentminer/internal/application/analysis"
	"github.com/patentminer/patentminer/internal/application/reporting"
	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Export files the reporting stage mirrors into the vault.
const (
	exportPrefix = "patent_discoveries_"
	exportSuffix = ".json"
)

// Assignee type codes mapped to display labels.
var assigneeLabels = map[string]string{
	"4":  "Unknown",
	"5":  "Other",
	"14": "Individual",
	"15": "Company",
}

// Summary is the overview block of the dashboard.
type Summary struct {
	RunID              string         `json:"run_id"`
	GeneratedAt        time.Time      `json:"generated_at"`
	TotalPatents       int            `json:"total_patents"`
	FilingYearRange    string         `json:"filing_year_range"`
	AverageOpportunity float64        `json:"average_opportunity"`
	AssigneeTypes      map[string]int `json:"assignee_types"`
	PatentTypes        map[string]int `json:"patent_types"`
	MarketDomains      map[string]int `json:"market_domains"`
	PassCounts         map[string]int `json:"pass_counts"`
	TierCounts         map[int]int    `json:"tier_counts,omitempty"`
	SourceFile         string         `json:"source_file"`
	LoadedAt           time.Time      `json:"loaded_at"`
}

// Store holds the currently loaded discovery export.  Safe for concurrent
// readers; reloads swap the dataset atomically.
type Store struct {
	vaultDir string
	logger   logging.Logger
	now      func() time.Time

	mu         sync.RWMutex
	doc        *reporting.Document
	sourceFile string
	loadedAt   time.Time
}

// NewStore builds a dashboard store over the configured vault directory.
// The initial load is attempted immediately; an empty vault is not an error
// at construction time.
func NewStore(cfg config.DashboardConfig, logger logging.Logger) *Store {
	s := &Store{
		vaultDir: cfg.VaultDir,
		logger:   logger.Named("dashboard"),
		now:      time.Now,
	}
	if err := s.LoadLatest(); err != nil {
		s.logger.Warn("vault has no loadable export yet", logging.Err(err))
	}
	return s
}

// LoadLatest reads the newest export file in the vault and swaps it in.
func (s *Store) LoadLatest() error {
	path, err := s.latestExport()
	if err != nil {
		return err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "read vault export")
	}
	var doc reporting.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode vault export")
	}
	if doc.Run == nil {
		return errors.Newf(errors.ErrCodeSerialization, "vault export %s has no run", filepath.Base(path))
	}

	s.mu.Lock()
	s.doc = &doc
	s.sourceFile = filepath.Base(path)
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("vault export loaded",
		logging.String("file", filepath.Base(path)),
		logging.Int("patents", len(doc.Patents)))
	return nil
}

// latestExport returns the newest matching file by modification time.
func (s *Store) latestExport() (string, error) {
	entries, err := os.ReadDir(s.vaultDir)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "read vault directory")
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, exportPrefix) || !strings.HasSuffix(name, exportSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = name
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", errors.Newf(errors.ErrCodeNotFound, "no discovery exports in %s", s.vaultDir)
	}
	return filepath.Join(s.vaultDir, newest), nil
}

// Loaded reports whether a dataset is available.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc != nil
}

// Summary computes the overview statistics of the loaded dataset.
func (s *Store) Summary() (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return Summary{}, errors.New(errors.ErrCodeNotFound, "no dataset loaded")
	}

	summary := Summary{
		RunID:         s.doc.Run.ID,
		GeneratedAt:   s.doc.GeneratedAt,
		TotalPatents:  len(s.doc.Patents),
		AssigneeTypes: make(map[string]int),
		PatentTypes:   make(map[string]int),
		MarketDomains: make(map[string]int),
		PassCounts:    s.doc.Run.Diagnostics.PassCounts,
		SourceFile:    s.sourceFile,
		LoadedAt:      s.loadedAt,
	}

	minYear, maxYear := 0, 0
	var scoreSum float64
	for _, p := range s.doc.Patents {
		summary.AssigneeTypes[assigneeLabel(p.Record.AssigneeType)]++
		scoreSum += p.OpportunityScore
		if p.Record.PatentType != "" {
			summary.PatentTypes[p.Record.PatentType]++
		}
		if p.MarketDomain != "" {
			summary.MarketDomains[p.MarketDomain]++
		}
		if p.Record.FilingDate != nil {
			year := p.Record.FilingDate.Year()
			if minYear == 0 || year < minYear {
				minYear = year
			}
			if year > maxYear {
				maxYear = year
			}
		}
	}
	if minYear != 0 {
		summary.FilingYearRange = fmt.Sprintf("%d to %d", minYear, maxYear)
	}
	if len(s.doc.Patents) > 0 {
		summary.AverageOpportunity = scoreSum / float64(len(s.doc.Patents))
	}
	if len(s.doc.Analysis) > 0 {
		summary.TierCounts = make(map[int]int)
		for _, a := range s.doc.Analysis {
			summary.TierCounts[a.Strategic.RecommendationTier]++
		}
	}
	return summary, nil
}

// TopOpportunities returns the n highest-scoring patents of the dataset.
func (s *Store) TopOpportunities(n int) []patent.ScoredPatent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}

	sorted := make([]patent.ScoredPatent, len(s.doc.Patents))
	copy(sorted, s.doc.Patents)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OpportunityScore != sorted[j].OpportunityScore {
			return sorted[i].OpportunityScore > sorted[j].OpportunityScore
		}
		return sorted[i].Record.PatentID < sorted[j].Record.PatentID
	})

	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// FilingYearHistogram buckets the dataset by filing year for the timeline
// chart.
func (s *Store) FilingYearHistogram() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}

	hist := make(map[int]int)
	for _, p := range s.doc.Patents {
		if p.Record.FilingDate != nil {
			hist[p.Record.FilingDate.Year()]++
		}
	}
	return hist
}

// Analysis returns the investment assessments of the loaded dataset.
func (s *Store) Analysis() []analysis.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Analysis
}

func assigneeLabel(code string) string {
	if label, ok := assigneeLabels[code]; ok {
		return label
	}
	return "Other"
}
