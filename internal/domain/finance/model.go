package finance

import "math"

const (
	// Annual cost savings as a fraction of mid-range capex, on top of the
	// benchmark-derived operating cash flow.
	costSavingsRate = 0.15

	// Fraction of the benchmark industry's aggregate revenue treated as the
	// serviceable market for one revived patent.
	serviceableMarketShare = 0.00005

	// Scenario multipliers around the base case.
	optimisticCapexFactor  = 0.8
	optimisticCFFactor     = 1.5
	pessimisticCapexFactor = 1.2
	pessimisticCFFactor    = 0.5

	// Sentinel payback for projects that never recover their capex.
	paybackNever = 999
)

// Metrics is the financial evaluation of one patent revival project.
// Dollar figures are USD; rates are decimal fractions.
type Metrics struct {
	NPVBase        float64 `json:"npv_base"`
	NPVOptimistic  float64 `json:"npv_optimistic"`
	NPVPessimistic float64 `json:"npv_pessimistic"`

	PaybackPeriodYears float64 `json:"payback_period_years"`
	IRRPercent         float64 `json:"irr_percent"`

	AnnualCostSavings   float64 `json:"annual_cost_savings"`
	AnnualRevenueUplift float64 `json:"annual_revenue_uplift"`

	MarketSizeServiceable float64 `json:"market_size_serviceable"`
	ProductValueEstimate  float64 `json:"product_value_estimate"`

	ValuationLow  float64 `json:"valuation_low"`
	ValuationMid  float64 `json:"valuation_mid"`
	ValuationHigh float64 `json:"valuation_high"`

	Assumptions Assumptions `json:"key_assumptions"`
}

// Assumptions records the model inputs alongside the outputs so exports are
// auditable.
type Assumptions struct {
	DiscountRate     float64  `json:"discount_rate"`
	EvaluationYears  int      `json:"evaluation_period_years"`
	CapexEstimateMid float64  `json:"capex_estimate_mid"`
	Industry         string   `json:"industry"`
	ValuationSources []string `json:"valuation_sources"`
}

// BlendedDiscountRate derives the project discount rate from the industry
// cost of capital shifted by the gap between the observed and the default
// risk-free rate, bounded to [0.05, 0.20].
func BlendedDiscountRate(benchmark IndustryBenchmark, macro MacroSignals) float64 {
	rate := benchmark.CostOfCapital + (macro.RiskFreeRate - DefaultMacroSignals().RiskFreeRate)
	return ClampSignal(rate, 0.05, 0.20)
}

// ComputeMetrics runs the deterministic, benchmark-calibrated DCF for a
// project with the given capex range.  Revenue is derived from invested
// capital via the industry sales-to-invested-capital ratio; operating cash
// flow applies the industry margin, tax rate, and maintenance-capex drag.
func ComputeMetrics(capexLow, capexHigh float64, benchmark IndustryBenchmark, macro MacroSignals, horizonYears int) Metrics {
	capexMid := (capexLow + capexHigh) / 2

	annualRevenue := capexMid * benchmark.SalesToInvestedCapital
	operatingCF := annualRevenue*benchmark.OperatingMargin*(1-benchmark.TaxRate) -
		annualRevenue*benchmark.NetCapexToRevenue
	annualSavings := capexMid * costSavingsRate
	annualCF := operatingCF + annualSavings

	discountRate := BlendedDiscountRate(benchmark, macro)
	pv := presentValue(annualCF, discountRate, horizonYears)

	npvBase := -capexMid + pv
	npvOptimistic := -capexMid*optimisticCapexFactor + pv*optimisticCFFactor
	npvPessimistic := -capexMid*pessimisticCapexFactor + pv*pessimisticCFFactor

	payback := float64(paybackNever)
	if annualCF > 0 {
		payback = capexMid / annualCF
	}

	irr := 0.0
	if npvBase > 0 && capexMid > 0 {
		irr = annualCF / capexMid * 100
	}

	marketSize := benchmark.RevenuesMUSD * 1_000_000 * serviceableMarketShare
	productValue := annualRevenue * benchmark.EVToSales

	valuationMid := (math.Max(npvBase, 0) + productValue) / 2

	return Metrics{
		NPVBase:               npvBase,
		NPVOptimistic:         npvOptimistic,
		NPVPessimistic:        npvPessimistic,
		PaybackPeriodYears:    payback,
		IRRPercent:            irr,
		AnnualCostSavings:     annualSavings,
		AnnualRevenueUplift:   operatingCF,
		MarketSizeServiceable: marketSize,
		ProductValueEstimate:  productValue,
		ValuationLow:          valuationMid * 0.5,
		ValuationMid:          valuationMid,
		ValuationHigh:         valuationMid * 2.0,
		Assumptions: Assumptions{
			DiscountRate:     discountRate,
			EvaluationYears:  horizonYears,
			CapexEstimateMid: capexMid,
			Industry:         benchmark.IndustryName,
			ValuationSources: []string{"industry_benchmarks", "macro_signals", "dcf"},
		},
	}
}

// presentValue discounts a flat annual cash flow over the horizon.
func presentValue(annualCF, rate float64, years int) float64 {
	total := 0.0
	for y := 1; y <= years; y++ {
		total += annualCF / math.Pow(1+rate, float64(y))
	}
	return total
}

// FinancialAttractiveness maps base-case NPV onto the shared [0,10] score
// scale: zero NPV scores 5, each $100k shifts the score one point.
func FinancialAttractiveness(npvBase float64) float64 {
	score := npvBase/100_000 + 5
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
