package finance

import "strings"

// IndustryBenchmark carries the per-industry market comparables used as
// valuation inputs.  Margins, rates, and ratios are decimal fractions;
// dollar aggregates are in millions of USD.
type IndustryBenchmark struct {
	IndustryName                    string  `json:"industry_name"`
	NumberOfFirms                   int     `json:"number_of_firms"`
	Beta                            float64 `json:"beta"`
	CostOfCapital                   float64 `json:"cost_of_capital"`
	TaxRate                         float64 `json:"tax_rate"`
	OperatingMargin                 float64 `json:"operating_margin"`
	NetMargin                       float64 `json:"net_margin"`
	EVToSales                       float64 `json:"ev_to_sales"`
	PriceToSales                    float64 `json:"price_to_sales"`
	NonCashWorkingCapitalToRevenue  float64 `json:"non_cash_working_capital_to_revenue"`
	NetCapexToRevenue               float64 `json:"net_capex_to_revenue"`
	SalesToInvestedCapital          float64 `json:"sales_to_invested_capital"`
	MarketCapMUSD                   float64 `json:"market_cap_musd"`
	EnterpriseValueMUSD             float64 `json:"enterprise_value_musd"`
	RevenuesMUSD                    float64 `json:"revenues_musd"`
}

// IndustryTotalMarket is the catch-all benchmark used when no better match
// exists.
const IndustryTotalMarket = "total_market"

// themeToIndustry maps technology themes to benchmark industries.
var themeToIndustry = map[string]string{
	"sensors":         "electronics",
	"materials":       "specialty_chemicals",
	"process":         "machinery",
	"control_systems": "electronics",
	"apparatus":       "machinery",
	"wireless":        "electronics",
	"energy":          "power",
}

// keywordIndustry pairs an indicator keyword with a benchmark industry.
// Order matters: the first matching keyword wins, so the mapping is
// deterministic for any input text.
type keywordIndustry struct {
	keyword  string
	industry string
}

var keywordToIndustry = []keywordIndustry{
	{"medical", "healthcare_products"},
	{"patient", "healthcare_products"},
	{"pharma", "healthcare_products"},
	{"wireless", "electronics"},
	{"network", "electronics"},
	{"iot", "electronics"},
	{"sensor", "electronics"},
	{"detector", "electronics"},
	{"polymer", "specialty_chemicals"},
	{"coating", "specialty_chemicals"},
	{"alloy", "specialty_chemicals"},
	{"crop", "agriculture"},
	{"soil", "agriculture"},
	{"agriculture", "agriculture"},
	{"water", "environmental_services"},
	{"waste", "environmental_services"},
	{"emission", "environmental_services"},
	{"battery", "power"},
	{"power", "power"},
}

// defaultBenchmarks is the built-in comparables table.  Values are coarse
// public-market aggregates; detailed market research supersedes them for
// any investment decision.
var defaultBenchmarks = map[string]IndustryBenchmark{
	"electronics": {
		IndustryName: "electronics", NumberOfFirms: 100, Beta: 1.15,
		CostOfCapital: 0.095, TaxRate: 0.21, OperatingMargin: 0.12, NetMargin: 0.08,
		EVToSales: 2.8, PriceToSales: 2.4,
		NonCashWorkingCapitalToRevenue: 0.10, NetCapexToRevenue: 0.04, SalesToInvestedCapital: 2.5,
		MarketCapMUSD: 1_500_000, EnterpriseValueMUSD: 1_900_000, RevenuesMUSD: 900_000,
	},
	"specialty_chemicals": {
		IndustryName: "specialty_chemicals", NumberOfFirms: 80, Beta: 1.05,
		CostOfCapital: 0.090, TaxRate: 0.22, OperatingMargin: 0.14, NetMargin: 0.09,
		EVToSales: 2.3, PriceToSales: 1.9,
		NonCashWorkingCapitalToRevenue: 0.14, NetCapexToRevenue: 0.05, SalesToInvestedCapital: 1.8,
		MarketCapMUSD: 800_000, EnterpriseValueMUSD: 1_050_000, RevenuesMUSD: 620_000,
	},
	"healthcare_products": {
		IndustryName: "healthcare_products", NumberOfFirms: 90, Beta: 1.00,
		CostOfCapital: 0.087, TaxRate: 0.20, OperatingMargin: 0.16, NetMargin: 0.10,
		EVToSales: 3.2, PriceToSales: 2.9,
		NonCashWorkingCapitalToRevenue: 0.12, NetCapexToRevenue: 0.03, SalesToInvestedCapital: 2.2,
		MarketCapMUSD: 1_200_000, EnterpriseValueMUSD: 1_450_000, RevenuesMUSD: 780_000,
	},
	"environmental_services": {
		IndustryName: "environmental_services", NumberOfFirms: 40, Beta: 0.95,
		CostOfCapital: 0.082, TaxRate: 0.24, OperatingMargin: 0.11, NetMargin: 0.07,
		EVToSales: 2.0, PriceToSales: 1.8,
		NonCashWorkingCapitalToRevenue: 0.11, NetCapexToRevenue: 0.06, SalesToInvestedCapital: 1.6,
		MarketCapMUSD: 250_000, EnterpriseValueMUSD: 320_000, RevenuesMUSD: 190_000,
	},
	"agriculture": {
		IndustryName: "agriculture", NumberOfFirms: 30, Beta: 0.92,
		CostOfCapital: 0.080, TaxRate: 0.19, OperatingMargin: 0.09, NetMargin: 0.05,
		EVToSales: 1.4, PriceToSales: 1.2,
		NonCashWorkingCapitalToRevenue: 0.15, NetCapexToRevenue: 0.04, SalesToInvestedCapital: 1.5,
		MarketCapMUSD: 140_000, EnterpriseValueMUSD: 190_000, RevenuesMUSD: 160_000,
	},
	"machinery": {
		IndustryName: "machinery", NumberOfFirms: 70, Beta: 1.08,
		CostOfCapital: 0.088, TaxRate: 0.23, OperatingMargin: 0.10, NetMargin: 0.06,
		EVToSales: 1.9, PriceToSales: 1.7,
		NonCashWorkingCapitalToRevenue: 0.13, NetCapexToRevenue: 0.05, SalesToInvestedCapital: 1.9,
		MarketCapMUSD: 500_000, EnterpriseValueMUSD: 670_000, RevenuesMUSD: 440_000,
	},
	"power": {
		IndustryName: "power", NumberOfFirms: 50, Beta: 0.90,
		CostOfCapital: 0.078, TaxRate: 0.22, OperatingMargin: 0.13, NetMargin: 0.08,
		EVToSales: 2.2, PriceToSales: 1.6,
		NonCashWorkingCapitalToRevenue: 0.09, NetCapexToRevenue: 0.08, SalesToInvestedCapital: 1.2,
		MarketCapMUSD: 600_000, EnterpriseValueMUSD: 900_000, RevenuesMUSD: 450_000,
	},
	IndustryTotalMarket: {
		IndustryName: IndustryTotalMarket, NumberOfFirms: 1000, Beta: 1.05,
		CostOfCapital: 0.089, TaxRate: 0.22, OperatingMargin: 0.11, NetMargin: 0.07,
		EVToSales: 2.1, PriceToSales: 1.9,
		NonCashWorkingCapitalToRevenue: 0.12, NetCapexToRevenue: 0.05, SalesToInvestedCapital: 1.9,
		MarketCapMUSD: 25_000_000, EnterpriseValueMUSD: 31_000_000, RevenuesMUSD: 14_000_000,
	},
}

// ResolveIndustry maps a patent's classified theme, type, and raw text to a
// benchmark industry.  Keyword matches in the text win over the theme
// mapping; patent type is the last resort before the total-market fallback.
func ResolveIndustry(theme, patentType, text string) string {
	normalized := strings.ToLower(text)
	for _, ki := range keywordToIndustry {
		if strings.Contains(normalized, ki.keyword) {
			return ki.industry
		}
	}
	if industry, ok := themeToIndustry[theme]; ok {
		return industry
	}
	switch patentType {
	case "process", "apparatus":
		return "machinery"
	}
	return IndustryTotalMarket
}

// BenchmarkFor returns the comparables for an industry, falling back to the
// total-market row for unknown names.
func BenchmarkFor(industry string) IndustryBenchmark {
	if b, ok := defaultBenchmarks[industry]; ok {
		return b
	}
	return defaultBenchmarks[IndustryTotalMarket]
}

// Industries lists the available benchmark industry names.
func Industries() []string {
	names := make([]string, 0, len(defaultBenchmarks))
	for name := range defaultBenchmarks {
		names = append(names, name)
	}
	return names
}
