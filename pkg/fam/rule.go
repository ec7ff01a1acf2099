package fam

// RuleKind tags which variant of the Rule sum type a value holds.
type RuleKind int

const (
	RuleInput RuleKind = iota
	RuleCalculation
	RuleGrowthRate
	RulePercentage
	RuleReference
	RuleFixedValue
	RuleProportionate
	RuleBalanceChange
)

// FlowSign is the sign convention attached to a BalanceChange flow.
type FlowSign string

const (
	Plus  FlowSign = "PLUS"
	Minus FlowSign = "MINUS"
)

// Flow is one term contributing to a BalanceChange rule: the account it
// flows from and whether it adds or subtracts from the prior balance.
type Flow struct {
	Ref  AccountId
	Sign FlowSign
}

// Rule is the per-account recipe dispatched by the Node Builder. Only
// the fields matching Kind are meaningful.
type Rule struct {
	Kind RuleKind

	// RuleInput
	InputValue float64

	// RuleCalculation
	Formula *Formula

	// RuleGrowthRate
	GrowthRate float64

	// RulePercentage
	Percent   float64
	PercentOf AccountId

	// RuleReference, RuleProportionate (Ref used by both)
	Ref AccountId

	// RuleBalanceChange
	Flows []Flow
}

// InputRule / CalculationRule / ... are convenience constructors for
// building a Rule of a given kind.
func InputRule(v float64) Rule                 { return Rule{Kind: RuleInput, InputValue: v} }
func CalculationRule(f *Formula) Rule          { return Rule{Kind: RuleCalculation, Formula: f} }
func GrowthRateRule(r float64) Rule            { return Rule{Kind: RuleGrowthRate, GrowthRate: r} }
func PercentageRule(p float64, of AccountId) Rule {
	return Rule{Kind: RulePercentage, Percent: p, PercentOf: of}
}
func ReferenceRule(ref AccountId) Rule      { return Rule{Kind: RuleReference, Ref: ref} }
func FixedValueRule() Rule                  { return Rule{Kind: RuleFixedValue} }
func ProportionateRule(ref AccountId) Rule  { return Rule{Kind: RuleProportionate, Ref: ref} }
func BalanceChangeRule(flows []Flow) Rule   { return Rule{Kind: RuleBalanceChange, Flows: flows} }

// RuleTable is a replaceable map of Rule keyed by AccountId. Replacing a
// rule at an existing id is permitted (used by the CF Synthesizer to
// overwrite "cash").
type RuleTable struct {
	order []AccountId
	byId  map[AccountId]Rule
}

func newRuleTable() *RuleTable {
	return &RuleTable{byId: make(map[AccountId]Rule)}
}

func (t *RuleTable) set(rules map[AccountId]Rule) {
	t.byId = make(map[AccountId]Rule, len(rules))
	t.order = t.order[:0]
	for id, r := range rules {
		t.byId[id] = r
		t.order = append(t.order, id)
	}
}

// put overwrites (or inserts) the rule at aid, appending to insertion
// order only the first time.
func (t *RuleTable) put(aid AccountId, r Rule) {
	if _, ok := t.byId[aid]; !ok {
		t.order = append(t.order, aid)
	}
	t.byId[aid] = r
}

func (t *RuleTable) get(aid AccountId) (Rule, bool) {
	r, ok := t.byId[aid]
	return r, ok
}

func (t *RuleTable) has(aid AccountId) bool {
	_, ok := t.byId[aid]
	return ok
}

// keys returns account ids in stable insertion order, for diagnostics.
func (t *RuleTable) keys() []AccountId {
	return append([]AccountId(nil), t.order...)
}

func (t *RuleTable) len() int { return len(t.byId) }
