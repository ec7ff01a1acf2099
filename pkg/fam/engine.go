package fam

// Value is a single seeded input.
type Value struct {
	Account AccountId
	Period  PeriodId
	Value   float64
	IsInput bool
}

// Engine is the facade for loading a model and computing its next period.
// It is not safe for concurrent calls: callers needing isolation must
// serialize externally or snapshot.
type Engine struct {
	accounts *AccountTable
	periods  *PeriodTable
	rules    *RuleTable
	values   *ValueStore
}

// NewEngine returns an Engine with empty accounts/periods/rules/values.
func NewEngine() *Engine {
	return &Engine{
		accounts: newAccountTable(),
		periods:  newPeriodTable(),
		rules:    newRuleTable(),
		values:   newValueStore(),
	}
}

// SetAccounts replaces the account table.
func (e *Engine) SetAccounts(accounts []Account) {
	e.accounts.set(accounts)
}

// SetPeriods replaces the period table; order matters.
func (e *Engine) SetPeriods(periods []Period) {
	e.periods.set(periods)
}

// SetRules replaces the rule set.
func (e *Engine) SetRules(rules map[AccountId]Rule) {
	e.rules.set(rules)
}

// LoadInputData sets seeded values. An unknown account or period fails the
// whole call; no values are loaded.
func (e *Engine) LoadInputData(values []Value) error {
	for _, v := range values {
		if !e.accounts.has(v.Account) {
			return errUnknownAccount(v.Account)
		}
		if _, err := e.periods.indexOf(v.Period); err != nil {
			return err
		}
	}
	for _, v := range values {
		e.values.set(v.Period, v.Account, v.Value)
	}
	return nil
}

// Value reads back a stored (seeded or computed) value.
func (e *Engine) Value(pid PeriodId, aid AccountId) (float64, bool) {
	return e.values.get(pid, aid)
}

// AllAccounts returns the account table in insertion order.
func (e *Engine) AllAccounts() []Account {
	return e.accounts.all()
}

// Children returns the ids of the accounts whose ParentId is aid, in table
// order.
func (e *Engine) Children(aid AccountId) []AccountId {
	return e.accounts.children(aid)
}

// Depth returns how many ParentId hops separate aid from a root account.
func (e *Engine) Depth(aid AccountId) int {
	return e.accounts.depth(aid)
}

// AllPeriods returns the period table in chronological order.
func (e *Engine) AllPeriods() []Period {
	return e.periods.all()
}

// Compute derives and appends the next period, runs the CF Synthesizer,
// builds and evaluates every ruled account, rounds, and stores the
// results. Returns the newly computed period's values, or a structured
// error — never a partial result.
func (e *Engine) Compute() (map[PeriodId]map[AccountId]float64, error) {
	if e.periods.len() == 0 || e.rules.len() == 0 {
		return nil, errNotConfigured("at least one period and one rule are required")
	}

	latest, _ := e.periods.latest()
	next := deriveNext(latest)
	e.periods.append(next)

	// The Node Store, memo, and visiting set are scoped to exactly this
	// compute() call.
	store := newNodeStore()

	if err := synthesizeCF(e.accounts, e.rules); err != nil {
		return nil, err
	}

	b := newBuilder(store, e.periods, e.values, e.rules)

	results := make(map[AccountId]float64, e.rules.len())
	for _, aid := range e.rules.keys() {
		nid, err := b.buildForAccount(next.Id, aid)
		if err != nil {
			return nil, err
		}
		vals, err := evaluate(store, []NodeId{nid})
		if err != nil {
			return nil, err
		}
		v := applyRoundingPolicy(aid, vals[nid])
		e.values.set(next.Id, aid, v)
		results[aid] = v
	}

	return map[PeriodId]map[AccountId]float64{next.Id: results}, nil
}
