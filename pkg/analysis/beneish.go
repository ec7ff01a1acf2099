package analysis

// BeneishMScoreResult holds the 8 variables and final score of the
// Beneish M-Score earnings-manipulation diagnostic.
type BeneishMScoreResult struct {
	DSRI  float64
	GMI   float64
	AQI   float64
	SGI   float64
	DEPI  float64
	SGAI  float64
	LVGI  float64
	TATA  float64
	Score float64
	Risk  string
}

// CalculateBeneishMScore computes the 8-variable M-Score from current and
// prior period snapshots of the same engine.
// Formula (1999 paper coefficients):
//
//	M = -4.84 + 0.92*DSRI + 0.528*GMI + 0.404*AQI + 0.892*SGI +
//	    0.115*DEPI - 0.172*SGAI + 4.679*TATA - 0.327*LVGI
func CalculateBeneishMScore(current, prior Snapshot) *BeneishMScoreResult {
	recCurr, recPrior := current.get(AccReceivables), prior.get(AccReceivables)
	salesCurr, salesPrior := current.get(AccRevenue), prior.get(AccRevenue)

	dsri := safeDiv(safeDiv(recCurr, salesCurr), safeDiv(recPrior, salesPrior))

	gmCurr := safeDiv(current.get(AccGrossProfit), salesCurr)
	gmPrior := safeDiv(prior.get(AccGrossProfit), salesPrior)
	gmi := safeDiv(gmPrior, gmCurr)

	softAssetsRatio := func(s Snapshot) float64 {
		ta := s.get(AccTotalAssets)
		if ta == 0 {
			return 0
		}
		return 1.0 - ((s.get(AccTotalCurrentAssets) + s.get(AccPPENet)) / ta)
	}
	aqi := safeDiv(softAssetsRatio(current), softAssetsRatio(prior))

	sgi := safeDiv(salesCurr, salesPrior)

	depRate := func(s Snapshot) float64 {
		dep := s.get(AccDepreciation)
		return safeDiv(dep, s.get(AccPPENet)+dep)
	}
	depi := safeDiv(depRate(prior), depRate(current))

	sgaRatio := func(s Snapshot) float64 {
		return safeDiv(s.get(AccSGA), s.get(AccRevenue))
	}
	sgai := safeDiv(sgaRatio(current), sgaRatio(prior))

	leverage := func(s Snapshot) float64 {
		return safeDiv(s.get(AccTotalLiabilities), s.get(AccTotalAssets))
	}
	lvgi := safeDiv(leverage(current), leverage(prior))

	income := current.get(AccNetIncome)
	cfo := current.get(AccNetCashOperating)
	taCurr := current.get(AccTotalAssets)
	tata := safeDiv(income-cfo, taCurr)

	score := -4.84 +
		0.920*dsri +
		0.528*gmi +
		0.404*aqi +
		0.892*sgi +
		0.115*depi -
		0.172*sgai +
		4.679*tata -
		0.327*lvgi

	risk := "Low Probability"
	if score > -1.78 {
		risk = "High Probability"
	}

	return &BeneishMScoreResult{
		DSRI: dsri, GMI: gmi, AQI: aqi, SGI: sgi,
		DEPI: depi, SGAI: sgai, LVGI: lvgi, TATA: tata,
		Score: score, Risk: risk,
	}
}
