package fam

import "fmt"

// builder materializes a computation DAG on demand for one compute() call.
// Its memo table and visiting set are scoped to exactly one compute call,
// not to the engine instance — a fresh builder is created on every call.
type builder struct {
	store    *NodeStore
	periods  *PeriodTable
	values   *ValueStore
	rules    *RuleTable

	memo     map[key]NodeId
	visiting map[key]bool
	path     []key
}

func newBuilder(store *NodeStore, periods *PeriodTable, values *ValueStore, rules *RuleTable) *builder {
	return &builder{
		store:    store,
		periods:  periods,
		values:   values,
		rules:    rules,
		memo:     make(map[key]NodeId),
		visiting: make(map[key]bool),
	}
}

// buildForAccount resolves one (period, account) pair to a node id,
// memoizing and detecting cycles along the way.
func (b *builder) buildForAccount(pid PeriodId, aid AccountId) (NodeId, error) {
	k := key{pid, aid}

	if id, ok := b.memo[k]; ok {
		return id, nil
	}
	if b.visiting[k] {
		return 0, errCycle(b.path, k)
	}

	b.visiting[k] = true
	b.path = append(b.path, k)
	defer func() {
		delete(b.visiting, k)
		b.path = b.path[:len(b.path)-1]
	}()

	// A seeded (or previously stored) value always wins over the account's
	// rule.
	if v, ok := b.values.get(pid, aid); ok {
		id := b.store.AddLeaf(v, fmt.Sprintf("%s@%s:seed", aid, pid))
		b.memo[k] = id
		return id, nil
	}

	rule, ok := b.rules.get(aid)
	if !ok {
		return 0, errMissingRule(aid, pid)
	}

	id, err := b.buildRule(pid, aid, rule)
	if err != nil {
		return 0, err
	}
	b.memo[k] = id
	return id, nil
}

// buildRule dispatches a rule to the Formula it compiles to and builds
// that formula.
func (b *builder) buildRule(pid PeriodId, aid AccountId, rule Rule) (NodeId, error) {
	switch rule.Kind {
	case RuleInput:
		return b.store.AddLeaf(rule.InputValue, fmt.Sprintf("%s@%s:input", aid, pid)), nil

	case RuleCalculation:
		return b.buildFormula(rule.Formula, pid, aid)

	case RuleReference:
		return b.buildForAccount(pid, rule.Ref)

	case RuleFixedValue:
		prev, err := b.periods.resolve(pid, -1)
		if err != nil {
			return 0, err
		}
		return b.buildForAccount(prev, aid)

	case RuleGrowthRate:
		f := Bin(Mul, RefAt(aid, -1), Num(1+rule.GrowthRate))
		return b.buildFormula(f, pid, aid)

	case RulePercentage:
		f := Bin(Mul, Ref(rule.PercentOf), Num(rule.Percent))
		return b.buildFormula(f, pid, aid)

	case RuleProportionate:
		f := Bin(Mul, RefAt(aid, -1), Bin(Div, Ref(rule.Ref), RefAt(rule.Ref, -1)))
		return b.buildFormula(f, pid, aid)

	case RuleBalanceChange:
		terms := make([]*Formula, 0, len(rule.Flows))
		for _, fl := range rule.Flows {
			term := Ref(fl.Ref)
			if fl.Sign == Minus {
				term = Bin(Mul, term, Num(-1))
			}
			terms = append(terms, term)
		}
		f := Bin(Add, RefAt(aid, -1), sumLeftAssoc(terms))
		return b.buildFormula(f, pid, aid)

	default:
		return 0, fmt.Errorf("unknown rule kind %d for %s@%s", rule.Kind, aid, pid)
	}
}

// buildFormula recursively lowers a Formula tree into nodes.
func (b *builder) buildFormula(f *Formula, pid PeriodId, aid AccountId) (NodeId, error) {
	switch f.Kind {
	case FormulaNumber:
		return b.store.AddLeaf(f.Number, fmt.Sprintf("%s@%s:num(%g)", aid, pid, f.Number)), nil

	case FormulaAccountRef:
		target, err := b.periods.resolve(pid, f.PeriodOffset)
		if err != nil {
			return 0, err
		}
		return b.buildForAccount(target, f.Ref)

	case FormulaBinaryOp:
		l, err := b.buildFormula(f.Left, pid, aid)
		if err != nil {
			return 0, err
		}
		r, err := b.buildFormula(f.Right, pid, aid)
		if err != nil {
			return 0, err
		}
		label := fmt.Sprintf("%s@%s:%s", aid, pid, f.BinOp)
		return b.store.AddOp(l, r, f.BinOp, label), nil

	default:
		return 0, fmt.Errorf("unknown formula kind %d for %s@%s", f.Kind, aid, pid)
	}
}
