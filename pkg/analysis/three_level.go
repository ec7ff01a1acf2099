package analysis

import "math"

// Standard account ids the three-level analysis and its neighbors expect
// to find in the engine. A model that omits one simply yields a zero for
// the ratios that depend on it.
const (
	AccRevenue            = "revenue"
	AccCOGS               = "cogs"
	AccGrossProfit        = "gross_profit"
	AccOperatingIncome    = "operating_income"
	AccNetIncome          = "net_income"
	AccEPS                = "eps_diluted"
	AccTotalAssets        = "assets_total"
	AccTotalEquity        = "equity_and_liabilities_total"
	AccTotalLiabilities   = "total_liabilities"
	AccTotalCurrentAssets = "total_current_assets"
	AccTotalCurrentLiab   = "total_current_liabilities"
	AccInventory          = "inventory"
	AccCash               = "cash"
	AccLongTermDebt       = "long_term_debt"
	AccShortTermDebt      = "short_term_debt"
	AccInterestExpense    = "interest_expense"
	AccIncomeTaxExpense   = "income_tax_expense"
	AccIncomeBeforeTax    = "income_before_tax"
	AccRetainedEarnings   = "retained_earnings"
	AccSharesOutstanding  = "shares_outstanding"
	AccSharePrice         = "share_price"
	AccCapex              = "capex"
	AccNetCashOperating   = "net_cash_operating"
	AccReceivables        = "accounts_receivable"
	AccPPENet             = "ppe_net"
	AccDepreciation       = "depreciation"
	AccSGA                = "sga"
)

// ThreeLevelAnalysis aggregates financial health across growth, return, and
// risk diagnostics for one period relative to its prior.
type ThreeLevelAnalysis struct {
	Level1       Level1Growth
	Level2       Level2Return
	Level3       Level3Risk
	ROCEAnalysis *ROCEDecomposition
}

type Level1Growth struct {
	RevenueGrowth         float64
	OperatingIncomeGrowth float64
	NetIncomeGrowth       float64
	EPSGrowth             float64
	FCFGrowth             float64
}

type Level2Return struct {
	GrossMargin       float64
	OperatingMargin   float64
	NetMargin         float64
	AssetTurnover     float64
	FinancialLeverage float64
	ROA               float64
	ROE               float64
	ROIC              float64
}

type Level3Risk struct {
	CurrentRatio     float64
	QuickRatio       float64
	DebtToEquity     float64
	InterestCoverage float64
	BeneishMScore    *BeneishMScoreResult
}

// ROCEDecomposition is the Penman-style operating/financing split of
// return on common equity.
type ROCEDecomposition struct {
	NOPAT                       float64
	NetFinancingExpenseAfterTax float64
	AverageNOA                  float64
	AverageFinObligations       float64
	AverageCommonEquity         float64
	OperatingROA                float64
	ProfitMarginForROCE         float64
	AssetTurnover               float64
	NetBorrowingRate            float64
	Spread                      float64
	Leverage                    float64
	ROCE                        float64
}

// PerformThreeLevelAnalysis runs the full diagnostic for current relative
// to prior. prior may be the zero Snapshot (Engine == nil) to skip every
// growth/average computation that needs two periods.
func PerformThreeLevelAnalysis(current, prior Snapshot) *ThreeLevelAnalysis {
	hasPrior := prior.Engine != nil
	a := &ThreeLevelAnalysis{}

	if hasPrior {
		a.Level1.RevenueGrowth = calcGrowth(current.get(AccRevenue), prior.get(AccRevenue))
		a.Level1.OperatingIncomeGrowth = calcGrowth(current.get(AccOperatingIncome), prior.get(AccOperatingIncome))
		a.Level1.NetIncomeGrowth = calcGrowth(current.get(AccNetIncome), prior.get(AccNetIncome))
		a.Level1.EPSGrowth = calcGrowth(current.get(AccEPS), prior.get(AccEPS))

		currFCF := current.get(AccNetCashOperating) - current.get(AccCapex)
		priorFCF := prior.get(AccNetCashOperating) - prior.get(AccCapex)
		a.Level1.FCFGrowth = calcGrowth(currFCF, priorFCF)
	}

	rev := current.get(AccRevenue)
	netIncome := current.get(AccNetIncome)
	totalAssets := current.get(AccTotalAssets)
	totalEquity := current.get(AccTotalEquity)

	avgAssets := totalAssets
	avgEquity := totalEquity
	if hasPrior {
		avgAssets = (totalAssets + prior.get(AccTotalAssets)) / 2
		avgEquity = (totalEquity + prior.get(AccTotalEquity)) / 2
	}

	a.Level2.GrossMargin = safeDiv(current.get(AccGrossProfit), rev)
	a.Level2.OperatingMargin = safeDiv(current.get(AccOperatingIncome), rev)
	a.Level2.NetMargin = safeDiv(netIncome, rev)
	a.Level2.AssetTurnover = safeDiv(rev, avgAssets)
	a.Level2.FinancialLeverage = safeDiv(avgAssets, avgEquity)
	a.Level2.ROA = a.Level2.NetMargin * a.Level2.AssetTurnover
	a.Level2.ROE = a.Level2.ROA * a.Level2.FinancialLeverage

	ebit := current.get(AccOperatingIncome)
	taxExp := current.get(AccIncomeTaxExpense)
	preTaxIncome := current.get(AccIncomeBeforeTax)

	effectiveTaxRate := 0.21
	if preTaxIncome != 0 {
		effectiveTaxRate = math.Abs(taxExp / preTaxIncome)
	}
	if effectiveTaxRate < 0 {
		effectiveTaxRate = 0
	}
	if effectiveTaxRate > 0.4 {
		effectiveTaxRate = 0.4
	}

	nopat := ebit * (1 - effectiveTaxRate)

	debt := current.get(AccLongTermDebt) + current.get(AccShortTermDebt)
	cash := current.get(AccCash)
	investedCapital := avgEquity + debt - cash
	a.Level2.ROIC = safeDiv(nopat, investedCapital)

	ca := current.get(AccTotalCurrentAssets)
	cl := current.get(AccTotalCurrentLiab)
	inv := current.get(AccInventory)
	interest := current.get(AccInterestExpense)

	a.Level3.CurrentRatio = safeDiv(ca, cl)
	a.Level3.QuickRatio = safeDiv(ca-inv, cl)
	a.Level3.DebtToEquity = safeDiv(debt, totalEquity)
	a.Level3.InterestCoverage = safeDiv(ebit, math.Abs(interest))

	if hasPrior {
		a.Level3.BeneishMScore = CalculateBeneishMScore(current, prior)
	}

	calcNetDebt := func(s Snapshot) float64 {
		return s.get(AccLongTermDebt) + s.get(AccShortTermDebt) - s.get(AccCash)
	}
	currNetDebt := calcNetDebt(current)
	currNOA := totalEquity + currNetDebt

	var avgNOA, avgFinObs, avgCommEquity float64
	if hasPrior {
		prevNetDebt := calcNetDebt(prior)
		prevEquity := prior.get(AccTotalEquity)
		prevNOA := prevEquity + prevNetDebt

		avgNOA = (currNOA + prevNOA) / 2
		avgFinObs = (currNetDebt + prevNetDebt) / 2
		avgCommEquity = (totalEquity + prevEquity) / 2
	} else {
		avgNOA = currNOA
		avgFinObs = currNetDebt
		avgCommEquity = totalEquity
	}

	netFinancingExpAfterTax := math.Abs(interest) * (1 - effectiveTaxRate)
	opROA := safeDiv(nopat, avgNOA)
	pmROCE := safeDiv(nopat, rev)
	turnover := safeDiv(rev, avgNOA)
	netBorrowRate := safeDiv(netFinancingExpAfterTax, avgFinObs)
	leverage := safeDiv(avgFinObs, avgCommEquity)
	spread := opROA - netBorrowRate

	a.ROCEAnalysis = &ROCEDecomposition{
		NOPAT:                       nopat,
		NetFinancingExpenseAfterTax: netFinancingExpAfterTax,
		AverageNOA:                  avgNOA,
		AverageFinObligations:       avgFinObs,
		AverageCommonEquity:         avgCommEquity,
		OperatingROA:                opROA,
		ProfitMarginForROCE:         pmROCE,
		AssetTurnover:               turnover,
		NetBorrowingRate:            netBorrowRate,
		Spread:                      spread,
		Leverage:                    leverage,
		ROCE:                        opROA + leverage*spread,
	}

	return a
}
