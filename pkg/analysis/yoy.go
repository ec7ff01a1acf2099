package analysis

import "github.com/wrenfield/famengine/pkg/fam"

// YoYDelta is one account's period-over-period movement: the raw amount and
// the percentage change calcGrowth would report for it.
type YoYDelta struct {
	Account fam.AccountId
	Prior   float64
	Current float64
	Amount  float64
	Percent float64
}

// YoYDeltas computes a period-over-period delta for every id in ids,
// reading prior and current off their respective Snapshots. Unlike
// Level1Growth (which fixes its account set to the headline P&L/FCF lines),
// this runs over whatever account list a caller hands it — a full income
// statement, a single segment, anything addressable by AccountId.
func YoYDeltas(current, prior Snapshot, ids []fam.AccountId) []YoYDelta {
	out := make([]YoYDelta, 0, len(ids))
	for _, id := range ids {
		c := current.get(id)
		p := prior.get(id)
		out = append(out, YoYDelta{
			Account: id,
			Prior:   p,
			Current: c,
			Amount:  c - p,
			Percent: calcGrowth(c, p),
		})
	}
	return out
}

// CommonSizeStatement is a read-only view of a set of accounts expressed as
// a fraction of a single base line (revenue for an income statement, total
// assets for a balance sheet).
type CommonSizeStatement struct {
	Base  fam.AccountId
	Lines []CommonSizeLine
}

// CommonSizeLine is one account's value and its share of the statement's
// base line.
type CommonSizeLine struct {
	Account fam.AccountId
	Value   float64
	Percent float64
}

// PercentOfRevenue renders ids as a percent-of-revenue income-statement
// view for one period.
func PercentOfRevenue(s Snapshot, ids []fam.AccountId) CommonSizeStatement {
	return commonSize(s, AccRevenue, ids)
}

// PercentOfAssets renders ids as a percent-of-total-assets balance-sheet
// view for one period.
func PercentOfAssets(s Snapshot, ids []fam.AccountId) CommonSizeStatement {
	return commonSize(s, AccTotalAssets, ids)
}

func commonSize(s Snapshot, base fam.AccountId, ids []fam.AccountId) CommonSizeStatement {
	denom := s.get(base)
	lines := make([]CommonSizeLine, 0, len(ids))
	for _, id := range ids {
		v := s.get(id)
		lines = append(lines, CommonSizeLine{Account: id, Value: v, Percent: safeDiv(v, denom)})
	}
	return CommonSizeStatement{Base: base, Lines: lines}
}
