package fam

import "fmt"

// SheetType classifies which financial statement an account belongs to.
// The CF Rule Synthesizer (synthesizer.go) dispatches on this field.
type SheetType string

const (
	SheetPL    SheetType = "PL"
	SheetBS    SheetType = "BS"
	SheetCF    SheetType = "CF"
	SheetPPE   SheetType = "PP&E"
	SheetOther SheetType = "OTHER"
)

// Account is a line item identified by AccountId. The CF flags
// (IsCredit, IgnoredForCF, IsCFBaseProfit, IsCashAccount) drive the
// classification logic in the CF Rule Synthesizer and have
// no effect on ordinary builder/evaluator behavior.
type Account struct {
	Id          AccountId
	DisplayName string

	SheetType SheetType
	ParentId  AccountId

	// IsCredit reports whether the account carries a natural credit
	// balance (liabilities, equity, contra-asset accounts). Used by the
	// synthesizer to sign non-cash add-backs and working-capital deltas.
	IsCredit bool

	// IgnoredForCF marks an account as a CF-synthesizer artifact (or
	// otherwise excluded from CF classification passes); such accounts
	// are skipped by Step D. Steps B/C do not read this flag: they skip
	// flow sources by SheetType (BS, CF, or unset) instead.
	IgnoredForCF bool

	// IsCFBaseProfit marks the unique account the synthesizer mirrors
	// into baseProfit_cf. Exactly one account in
	// the table may set this.
	IsCFBaseProfit bool

	// IsCashAccount marks the account(s) excluded from working-capital
	// treatment in Step D.
	IsCashAccount bool
}

// AccountTable is an ordered, replaceable collection of accounts keyed by
// AccountId. Replacing the table wholesale (SetAccounts) replaces it
// entirely; individual accounts are
// added/overwritten in place by the CF Rule Synthesizer.
type AccountTable struct {
	order []AccountId
	byId  map[AccountId]*Account
}

func newAccountTable() *AccountTable {
	return &AccountTable{byId: make(map[AccountId]*Account)}
}

// set replaces the entire table, preserving the given slice's order.
func (t *AccountTable) set(accounts []Account) {
	t.order = t.order[:0]
	t.byId = make(map[AccountId]*Account, len(accounts))
	for i := range accounts {
		a := accounts[i]
		t.order = append(t.order, a.Id)
		t.byId[a.Id] = &a
	}
}

// ensure inserts acc if its id is not already present; it is a no-op
// otherwise, giving the synthesizer idempotent re-insertion.
func (t *AccountTable) ensure(acc Account) {
	if _, ok := t.byId[acc.Id]; ok {
		return
	}
	t.order = append(t.order, acc.Id)
	cp := acc
	t.byId[acc.Id] = &cp
}

func (t *AccountTable) get(aid AccountId) (*Account, bool) {
	a, ok := t.byId[aid]
	return a, ok
}

func (t *AccountTable) has(aid AccountId) bool {
	_, ok := t.byId[aid]
	return ok
}

// all returns accounts in insertion order.
func (t *AccountTable) all() []Account {
	out := make([]Account, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byId[id])
	}
	return out
}

// children returns the ids of every account whose ParentId is aid, in table
// order.
func (t *AccountTable) children(aid AccountId) []AccountId {
	var out []AccountId
	for _, id := range t.order {
		if t.byId[id].ParentId == aid {
			out = append(out, id)
		}
	}
	return out
}

// depth returns how many ParentId hops separate aid from a root account (no
// parent, or a parent not present in the table). Guards against a cyclic
// ParentId chain by capping at the table size.
func (t *AccountTable) depth(aid AccountId) int {
	d := 0
	seen := aid
	for d <= len(t.order) {
		acc, ok := t.byId[seen]
		if !ok || acc.ParentId == "" {
			return d
		}
		if _, ok := t.byId[acc.ParentId]; !ok {
			return d
		}
		seen = acc.ParentId
		d++
	}
	return d
}

// baseProfitAccount finds the unique IsCFBaseProfit account.
func (t *AccountTable) baseProfitAccount() (AccountId, error) {
	var found AccountId
	count := 0
	for _, id := range t.order {
		if t.byId[id].IsCFBaseProfit {
			found = id
			count++
		}
	}
	if count == 0 {
		return "", fmt.Errorf("%w: no account has IsCFBaseProfit=true", ErrMissingBaseProfit)
	}
	if count > 1 {
		return "", fmt.Errorf("%w: multiple accounts have IsCFBaseProfit=true", ErrMissingBaseProfit)
	}
	return found, nil
}
