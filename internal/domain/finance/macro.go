// Package finance models the simplified financial viability of reviving an
// expired patent: macro signals, industry benchmarks, and a deterministic
// 10-year DCF.  All defaults are fixed constants so a run without market
// data access still produces reproducible numbers.
package finance

// MacroSignals carries the macroeconomic inputs blended into valuation
// assumptions.  Rates are decimal fractions (0.04 == 4%).
type MacroSignals struct {
	AsOf                             string  `json:"as_of"`
	RiskFreeRate                     float64 `json:"risk_free_rate"`
	InflationRate                    float64 `json:"inflation_rate"`
	ProducerPriceInflation           float64 `json:"producer_price_inflation"`
	ManufacturingWageGrowth          float64 `json:"manufacturing_wage_growth"`
	ManufacturingCapacityUtilization float64 `json:"manufacturing_capacity_utilization"`
	RealGDPGrowth                    float64 `json:"real_gdp_growth"`

	// Source notes where each signal came from ("fred" or "fallback_defaults").
	Source string `json:"source"`
}

// DefaultMacroSignals returns the fallback signal set used when no market
// snapshot is available.
func DefaultMacroSignals() MacroSignals {
	return MacroSignals{
		RiskFreeRate:                     0.040,
		InflationRate:                    0.028,
		ProducerPriceInflation:           0.025,
		ManufacturingWageGrowth:          0.030,
		ManufacturingCapacityUtilization: 0.760,
		RealGDPGrowth:                    0.021,
		Source:                           "fallback_defaults",
	}
}

// ClampSignal bounds a fetched signal to a sane range so a malformed series
// cannot poison valuations.
func ClampSignal(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
