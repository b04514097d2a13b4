// Package market refreshes macroeconomic signals from FRED's public CSV
// endpoint.  Every failure falls back to the deterministic defaults so a
// network outage never blocks financial modeling.
package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/patentminer/patentminer/internal/domain/finance"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// FRED series identifiers, one per macro signal.
const (
	seriesRiskFree     = "DGS10"
	seriesCPI          = "CPIAUCSL"
	seriesPPI          = "PPIACO"
	seriesWages        = "CES3000000008"
	seriesCapacityUtil = "CUMFNS"
	seriesRealGDP      = "GDPC1"
)

const defaultBaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

// FredClient fetches signal series from the fredgraph CSV endpoint.
type FredClient struct {
	httpClient *http.Client
	baseURL    string
	logger     logging.Logger
	now        func() time.Time
}

// NewFredClient builds a client against the public FRED endpoint.
func NewFredClient(log logging.Logger) *FredClient {
	return &FredClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		logger:     log.Named("fred"),
		now:        time.Now,
	}
}

// newFredClientForTest points the client at a test server.
func newFredClientForTest(baseURL string, now func() time.Time, log logging.Logger) *FredClient {
	return &FredClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     log,
		now:        now,
	}
}

// FetchMacroSignals pulls all six series and derives the signal set:
// the latest 10-year treasury yield, year-over-year changes for the monthly
// series, the four-quarter change for real GDP, and the latest capacity
// utilization reading.  Each signal is clamped to a sane band.
func (c *FredClient) FetchMacroSignals(ctx context.Context) (finance.MacroSignals, error) {
	riskFree, err := c.fetchSeries(ctx, seriesRiskFree)
	if err != nil {
		return finance.MacroSignals{}, err
	}
	cpi, err := c.fetchSeries(ctx, seriesCPI)
	if err != nil {
		return finance.MacroSignals{}, err
	}
	ppi, err := c.fetchSeries(ctx, seriesPPI)
	if err != nil {
		return finance.MacroSignals{}, err
	}
	wages, err := c.fetchSeries(ctx, seriesWages)
	if err != nil {
		return finance.MacroSignals{}, err
	}
	capacity, err := c.fetchSeries(ctx, seriesCapacityUtil)
	if err != nil {
		return finance.MacroSignals{}, err
	}
	gdp, err := c.fetchSeries(ctx, seriesRealGDP)
	if err != nil {
		return finance.MacroSignals{}, err
	}

	inflation, err := trailingChange(cpi, 12)
	if err != nil {
		return finance.MacroSignals{}, errors.Wrap(err, errors.ErrCodeSourceParseError, "cpi series too short")
	}
	producerInflation, err := trailingChange(ppi, 12)
	if err != nil {
		return finance.MacroSignals{}, errors.Wrap(err, errors.ErrCodeSourceParseError, "ppi series too short")
	}
	wageGrowth, err := trailingChange(wages, 12)
	if err != nil {
		return finance.MacroSignals{}, errors.Wrap(err, errors.ErrCodeSourceParseError, "wage series too short")
	}
	gdpGrowth, err := trailingChange(gdp, 4)
	if err != nil {
		return finance.MacroSignals{}, errors.Wrap(err, errors.ErrCodeSourceParseError, "gdp series too short")
	}

	return finance.MacroSignals{
		AsOf:                             c.now().UTC().Format("2006-01-02"),
		RiskFreeRate:                     finance.ClampSignal(riskFree[len(riskFree)-1]/100.0, 0.01, 0.12),
		InflationRate:                    finance.ClampSignal(inflation, -0.02, 0.12),
		ProducerPriceInflation:           finance.ClampSignal(producerInflation, -0.05, 0.18),
		ManufacturingWageGrowth:          finance.ClampSignal(wageGrowth, -0.03, 0.15),
		ManufacturingCapacityUtilization: finance.ClampSignal(capacity[len(capacity)-1]/100.0, 0.40, 0.95),
		RealGDPGrowth:                    finance.ClampSignal(gdpGrowth, -0.08, 0.12),
		Source:                           "fred",
	}, nil
}

// fetchSeries downloads one series and returns its numeric observations in
// order, skipping missing readings (FRED marks them ".").
func (c *FredClient) fetchSeries(ctx context.Context, seriesID string) ([]float64, error) {
	url := fmt.Sprintf("%s?id=%s", c.baseURL, seriesID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "building fred request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable,
			fmt.Sprintf("fred series %s unreachable", seriesID))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeSourceUnavailable,
			"fred series %s returned http %d", seriesID, resp.StatusCode)
	}

	return parseSeriesCSV(resp.Body, seriesID)
}

// parseSeriesCSV extracts the value column named after the series.
func parseSeriesCSV(r io.Reader, seriesID string) ([]float64, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseError, "fred csv missing header")
	}

	col := -1
	for i, name := range header {
		if name == seriesID {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.Newf(errors.ErrCodeSourceParseError, "fred response missing column %s", seriesID)
	}

	var values []float64
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSourceParseError, "fred csv malformed")
		}
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.Newf(errors.ErrCodeSourceParseError, "fred series %s is empty", seriesID)
	}
	return values, nil
}

// trailingChange returns last/value-n-periods-back minus one.
func trailingChange(series []float64, periods int) (float64, error) {
	if len(series) <= periods {
		return 0, fmt.Errorf("need more than %d observations, have %d", periods, len(series))
	}
	base := series[len(series)-1-periods]
	if base == 0 {
		return 0, fmt.Errorf("zero base observation")
	}
	return series[len(series)-1]/base - 1.0, nil
}
