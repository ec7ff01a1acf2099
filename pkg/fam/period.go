package fam

import "fmt"

// PeriodType distinguishes annual from monthly periods; the next-period
// derivation rule branches on this field.
type PeriodType string

const (
	Annual  PeriodType = "ANNUAL"
	Monthly PeriodType = "MONTHLY"
)

// Period is a single time bucket. Ordering within the PeriodTable, not the
// Year/Month fields, defines "before"/"after" for offset resolution.
type Period struct {
	Id               PeriodId
	Year             int
	Month            int
	FiscalYear       int
	IsFiscalYearEnd  bool
	PeriodType       PeriodType
	Label            string
}

// PeriodTable holds the ordered sequence of periods and an index for O(1)
// offset resolution. Periods are never reordered; Append adds exactly one
// period past the end (the only mutation the Engine Facade performs).
type PeriodTable struct {
	order []Period
	index map[PeriodId]int
}

func newPeriodTable() *PeriodTable {
	return &PeriodTable{index: make(map[PeriodId]int)}
}

// set replaces the table wholesale; order matters for offset resolution.
func (t *PeriodTable) set(periods []Period) {
	t.order = append([]Period(nil), periods...)
	t.index = make(map[PeriodId]int, len(periods))
	for i, p := range t.order {
		t.index[p.Id] = i
	}
}

// append inserts p after the last period and updates the index map.
func (t *PeriodTable) append(p Period) {
	t.index[p.Id] = len(t.order)
	t.order = append(t.order, p)
}

func (t *PeriodTable) indexOf(pid PeriodId) (int, error) {
	i, ok := t.index[pid]
	if !ok {
		return 0, errUnknownPeriod(pid)
	}
	return i, nil
}

// resolve computes periods[index_of(base)+offset], erroring if the
// resulting index falls outside [0, len(periods)).
func (t *PeriodTable) resolve(base PeriodId, offset int) (PeriodId, error) {
	i, err := t.indexOf(base)
	if err != nil {
		return "", err
	}
	j := i + offset
	if j < 0 || j >= len(t.order) {
		return "", errPeriodOutOfRange(base, offset)
	}
	return t.order[j].Id, nil
}

func (t *PeriodTable) latest() (Period, bool) {
	if len(t.order) == 0 {
		return Period{}, false
	}
	return t.order[len(t.order)-1], true
}

func (t *PeriodTable) all() []Period {
	return append([]Period(nil), t.order...)
}

func (t *PeriodTable) len() int { return len(t.order) }

// deriveNext computes the next period from the latest one.
func deriveNext(latest Period) Period {
	next := latest

	switch latest.PeriodType {
	case Annual:
		next.Year = latest.Year + 1
		next.FiscalYear = latest.FiscalYear + 1
		next.IsFiscalYearEnd = true
	case Monthly:
		// Assumes the fiscal year tracks the calendar year (fiscal year
		// rolls over the same month the calendar does).
		next.Month = latest.Month + 1
		if next.Month > 12 {
			next.Month = 1
			next.Year = latest.Year + 1
		}
		next.FiscalYear = latest.FiscalYear
		if latest.Month == 12 {
			next.FiscalYear = latest.FiscalYear + 1
		}
		next.IsFiscalYearEnd = next.Month == 12
	}

	next.Id = PeriodId(fmt.Sprintf("%d-%d-%s", next.Year, next.Month, next.PeriodType))
	next.Label = string(next.Id)
	return next
}
