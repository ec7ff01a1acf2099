package fam

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestEngine_MinimalIncomeStatement(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{
		{Id: "unit_price", SheetType: SheetOther},
		{Id: "quantity", SheetType: SheetOther},
		{Id: "revenue", SheetType: SheetPL},
		{Id: "cogs", SheetType: SheetPL, IsCredit: true},
		{Id: "gross_profit", SheetType: SheetPL, IsCFBaseProfit: true},
	})
	e.SetPeriods([]Period{{Id: "FY2024", Year: 2024, FiscalYear: 2024, PeriodType: Annual}})
	if err := e.LoadInputData([]Value{
		{Account: "unit_price", Period: "FY2024", Value: 1000},
		{Account: "quantity", Period: "FY2024", Value: 500},
		{Account: "revenue", Period: "FY2024", Value: 500000},
		{Account: "cogs", Period: "FY2024", Value: 300000},
		{Account: "gross_profit", Period: "FY2024", Value: 200000},
	}); err != nil {
		t.Fatalf("LoadInputData: %v", err)
	}
	e.SetRules(map[AccountId]Rule{
		"unit_price":   GrowthRateRule(0.10),
		"quantity":     GrowthRateRule(0.10),
		"revenue":      CalculationRule(Bin(Mul, Ref("unit_price"), Ref("quantity"))),
		"cogs":         PercentageRule(0.6, "revenue"),
		"gross_profit": CalculationRule(Bin(Sub, Ref("revenue"), Ref("cogs"))),
	})

	result, err := e.Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	vals := result["2025-0-ANNUAL"]
	if vals == nil {
		t.Fatalf("no result for next period, got keys: %v", keysOf(result))
	}
	approxEqual(t, vals["unit_price"], 1100, "unit_price")
	approxEqual(t, vals["quantity"], 550, "quantity")
	approxEqual(t, vals["revenue"], 605000, "revenue")
	approxEqual(t, vals["cogs"], 363000, "cogs")
	approxEqual(t, vals["gross_profit"], 242000, "gross_profit")
}

func keysOf(m map[PeriodId]map[AccountId]float64) []PeriodId {
	out := make([]PeriodId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestEngine_CycleDetection(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{{Id: "a"}, {Id: "b"}})
	e.SetPeriods([]Period{{Id: "p", PeriodType: Annual}})
	e.SetRules(map[AccountId]Rule{
		"a": CalculationRule(Ref("b")),
		"b": CalculationRule(Ref("a")),
	})

	_, err := e.Compute()
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestEngine_DivisionByZero(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{{Id: "x"}})
	e.SetPeriods([]Period{{Id: "p", PeriodType: Annual}})
	e.SetRules(map[AccountId]Rule{
		"x": CalculationRule(Bin(Div, Num(1), Num(0))),
	})

	_, err := e.Compute()
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestEngine_PeriodOutOfRange(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{{Id: "x"}})
	e.SetPeriods([]Period{{Id: "p", PeriodType: Annual}})
	e.SetRules(map[AccountId]Rule{
		"x": GrowthRateRule(0.1),
	})

	_, err := e.Compute()
	if !errors.Is(err, ErrPeriodOutOfRange) {
		t.Fatalf("expected ErrPeriodOutOfRange, got %v", err)
	}
}

func TestEngine_CashFlowSynthesis(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{
		{Id: "net_income", SheetType: SheetPL, IsCFBaseProfit: true},
		{Id: "depreciation", SheetType: SheetPL, IsCredit: true},
		{Id: "capex", SheetType: SheetPPE},
		{Id: "account_receivable", SheetType: SheetBS},
		{Id: "tangible_assets", SheetType: SheetBS},
		{Id: "cash", SheetType: SheetBS, IsCashAccount: true},
	})
	e.SetPeriods([]Period{{Id: "FY2024", Year: 2024, FiscalYear: 2024, PeriodType: Annual}})
	if err := e.LoadInputData([]Value{
		{Account: "net_income", Period: "FY2024", Value: 1000},
		{Account: "depreciation", Period: "FY2024", Value: 200},
		{Account: "capex", Period: "FY2024", Value: 300},
		{Account: "account_receivable", Period: "FY2024", Value: 400},
		{Account: "tangible_assets", Period: "FY2024", Value: 5000},
		{Account: "cash", Period: "FY2024", Value: 1000},
	}); err != nil {
		t.Fatalf("LoadInputData: %v", err)
	}
	e.SetRules(map[AccountId]Rule{
		"net_income":   InputRule(1100),
		"depreciation": InputRule(210),
		"capex":        InputRule(320),
		"account_receivable": GrowthRateRule(0.1),
		"tangible_assets": BalanceChangeRule([]Flow{
			{Ref: "capex", Sign: Plus},
			{Ref: "depreciation", Sign: Minus},
		}),
	})

	result, err := e.Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	pid := onlyPeriod(t, result)
	vals := result[pid]

	for _, want := range []AccountId{"baseProfit_cf", "depreciation_cf_adj", "capex_cf_adj", "account_receivable_cf_wc", "cash_change_cf"} {
		if _, ok := e.AllAccounts2()[want]; !ok {
			t.Errorf("expected synthesized account %s to exist", want)
		}
	}

	ni := vals["net_income"]
	dep := vals["depreciation"]
	capex := vals["capex"]
	priorAR, _ := e.Value("FY2024", "account_receivable")
	newAR := vals["account_receivable"]
	deltaAR := newAR - priorAR

	want := ni + dep - capex - deltaAR
	approxEqual(t, vals["cash_change_cf"], want, "cash_change_cf")
}

func onlyPeriod(t *testing.T, result map[PeriodId]map[AccountId]float64) PeriodId {
	t.Helper()
	if len(result) != 1 {
		t.Fatalf("expected exactly one period in result, got %d", len(result))
	}
	for k := range result {
		return k
	}
	return ""
}

// AllAccounts2 is a tiny test helper exposing the account table as a set.
func (e *Engine) AllAccounts2() map[AccountId]bool {
	out := make(map[AccountId]bool)
	for _, a := range e.AllAccounts() {
		out[a.Id] = true
	}
	return out
}

func TestEngine_RoundingPolicy(t *testing.T) {
	tests := []struct {
		aid  AccountId
		in   float64
		want float64
	}{
		{"assets_total", 150000.49, 150000},
		{"assets_total", 150000.50, 150001},
		{"other_account", 123.456, 123.46},
	}
	for _, tc := range tests {
		got := applyRoundingPolicy(tc.aid, tc.in)
		approxEqual(t, got, tc.want, string(tc.aid))
	}
}

func TestSynthesizer_Idempotent(t *testing.T) {
	accounts := newAccountTable()
	accounts.set([]Account{
		{Id: "net_income", IsCFBaseProfit: true},
		{Id: "capex", SheetType: SheetPPE},
		{Id: "ppe", SheetType: SheetBS, IsCredit: false},
	})
	rules := newRuleTable()
	rules.set(map[AccountId]Rule{
		"ppe": BalanceChangeRule([]Flow{{Ref: "capex", Sign: Plus}}),
	})

	if err := synthesizeCF(accounts, rules); err != nil {
		t.Fatalf("first synthesis: %v", err)
	}
	first := snapshotRules(rules)
	firstAccounts := accounts.all()

	if err := synthesizeCF(accounts, rules); err != nil {
		t.Fatalf("second synthesis: %v", err)
	}
	second := snapshotRules(rules)
	secondAccounts := accounts.all()

	if len(firstAccounts) != len(secondAccounts) {
		t.Fatalf("account count changed: %d vs %d", len(firstAccounts), len(secondAccounts))
	}
	if len(first) != len(second) {
		t.Fatalf("rule count changed: %d vs %d", len(first), len(second))
	}
	for id, r1 := range first {
		r2 := second[id]
		if !sameFormula(ruleFormula(r1), ruleFormula(r2)) {
			t.Errorf("rule %s changed across re-synthesis", id)
		}
	}
}

func snapshotRules(rules *RuleTable) map[AccountId]Rule {
	out := make(map[AccountId]Rule)
	for _, id := range rules.keys() {
		r, _ := rules.get(id)
		out[id] = r
	}
	return out
}

// ruleFormula extracts a comparable formula representation regardless of
// rule kind, for the idempotence test above.
func ruleFormula(r Rule) *Formula {
	switch r.Kind {
	case RuleCalculation:
		return r.Formula
	case RuleReference:
		return Ref(r.Ref)
	case RuleBalanceChange:
		terms := make([]*Formula, 0, len(r.Flows))
		for _, f := range r.Flows {
			t := Ref(f.Ref)
			if f.Sign == Minus {
				t = Bin(Mul, t, Num(-1))
			}
			terms = append(terms, t)
		}
		return sumLeftAssoc(terms)
	default:
		return Num(0)
	}
}

func sameFormula(a, b *Formula) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case FormulaNumber:
		return a.Number == b.Number
	case FormulaAccountRef:
		return a.Ref == b.Ref && a.PeriodOffset == b.PeriodOffset
	case FormulaBinaryOp:
		return a.BinOp == b.BinOp && sameFormula(a.Left, b.Left) && sameFormula(a.Right, b.Right)
	}
	return false
}

// Two computes from equivalent state produce byte-identical results.
func TestEngine_Determinism(t *testing.T) {
	build := func() *Engine {
		e := NewEngine()
		e.SetAccounts([]Account{{Id: "a"}, {Id: "b", SheetType: SheetPL}})
		e.SetPeriods([]Period{{Id: "p", PeriodType: Annual}})
		_ = e.LoadInputData([]Value{{Account: "a", Period: "p", Value: 10}})
		e.SetRules(map[AccountId]Rule{
			"a": InputRule(10),
			"b": CalculationRule(Bin(Mul, Ref("a"), Num(2))),
		})
		return e
	}

	e1 := build()
	r1, err := e1.Compute()
	if err != nil {
		t.Fatalf("compute 1: %v", err)
	}
	e2 := build()
	r2, err := e2.Compute()
	if err != nil {
		t.Fatalf("compute 2: %v", err)
	}

	p1 := onlyPeriod(t, r1)
	p2 := onlyPeriod(t, r2)
	if p1 != p2 {
		t.Fatalf("period mismatch: %s vs %s", p1, p2)
	}
	for aid, v1 := range r1[p1] {
		v2, ok := r2[p2][aid]
		if !ok || v1 != v2 {
			t.Errorf("account %s mismatch: %v vs %v", aid, v1, v2)
		}
	}
}

// A seeded value at an account/period pair wins over its rule.
func TestBuilder_SeedPrecedence(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{{Id: "x"}})
	e.SetPeriods([]Period{{Id: "p", PeriodType: Annual}})
	if err := e.LoadInputData([]Value{{Account: "x", Period: "p", Value: 42}}); err != nil {
		t.Fatalf("LoadInputData: %v", err)
	}
	e.SetRules(map[AccountId]Rule{"x": GrowthRateRule(99)})

	store := newNodeStore()
	b := newBuilder(store, e.periods, e.values, e.rules)
	id, err := b.buildForAccount("p", "x")
	if err != nil {
		t.Fatalf("buildForAccount: %v", err)
	}
	n := store.Get(id)
	if n.Kind != NodeLeaf || n.Value != 42 {
		t.Fatalf("expected a seeded leaf(42), got %+v", n)
	}
}

// NotConfigured: compute before any setup.
func TestEngine_NotConfigured(t *testing.T) {
	e := NewEngine()
	if _, err := e.Compute(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

// UnknownAccount / UnknownPeriod on LoadInputData.
func TestEngine_LoadInputData_UnknownRefs(t *testing.T) {
	e := NewEngine()
	e.SetAccounts([]Account{{Id: "a"}})
	e.SetPeriods([]Period{{Id: "p", PeriodType: Annual}})

	if err := e.LoadInputData([]Value{{Account: "missing", Period: "p", Value: 1}}); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
	if err := e.LoadInputData([]Value{{Account: "a", Period: "missing", Value: 1}}); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("expected ErrUnknownPeriod, got %v", err)
	}
}
