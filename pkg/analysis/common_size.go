package analysis

// CommonSizeDefaults holds baseline assumption rates derived from one
// period of history, expressed as a fraction of revenue (or, for TaxRate
// and DebtInterestRate, of their natural denominator). A caller typically
// feeds these into famconfig rule specs (percentage/growth_rate rules) for
// a forecast model.
type CommonSizeDefaults struct {
	COGSPercent           float64
	SGAPercent            float64
	TaxRate               float64
	DAPercent             float64
	CapExPercent          float64
	NetIncomeMargin       float64
	ReceivablesPercent    float64
	InventoryPercent      float64
	DebtInterestRate      float64
}

// conservativeDefaults are returned verbatim when revenue is zero or the
// snapshot has no history to derive a ratio from.
var conservativeDefaults = CommonSizeDefaults{
	COGSPercent:      0.60,
	SGAPercent:       0.15,
	TaxRate:          0.21,
	DebtInterestRate: 0.05,
}

// CalculateCommonSizeDefaults computes baseline assumptions from one
// historical period snapshot.
func CalculateCommonSizeDefaults(s Snapshot) CommonSizeDefaults {
	rev := s.get(AccRevenue)
	if rev == 0 {
		return conservativeDefaults
	}

	d := conservativeDefaults
	d.COGSPercent = safeDivOrDefault(s.get(AccCOGS), rev, d.COGSPercent)
	d.SGAPercent = safeDivOrDefault(s.get(AccSGA), rev, d.SGAPercent)
	d.DAPercent = safeDiv(s.get(AccDepreciation), rev)
	d.CapExPercent = safeDiv(abs(s.get(AccCapex)), rev)
	d.NetIncomeMargin = safeDiv(s.get(AccNetIncome), rev)
	d.ReceivablesPercent = safeDiv(s.get(AccReceivables), rev)
	d.InventoryPercent = safeDiv(s.get(AccInventory), rev)

	if ibt := s.get(AccIncomeBeforeTax); ibt > 0 {
		d.TaxRate = s.get(AccIncomeTaxExpense) / ibt
	}

	debt := s.get(AccLongTermDebt) + s.get(AccShortTermDebt)
	if debt > 0 {
		d.DebtInterestRate = abs(s.get(AccInterestExpense)) / debt
	}

	return d
}

func safeDivOrDefault(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return num / den
}
