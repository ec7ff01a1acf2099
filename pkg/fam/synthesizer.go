package fam

import "fmt"

// synthesizeCF derives the indirect-method cash-flow accounts and rules
// from the base model so callers never hand-write them. It mutates
// accounts and rules in place before each compute(), deriving NI + D&A +
// SBC + ΔWC + capex articulation generically from account flags rather
// than a hardcoded statement shape. A model with no BalanceChange rule and
// no working-capital-eligible BS account has nothing to articulate and is
// left untouched; it needs no base-profit account.
func synthesizeCF(accounts *AccountTable, rules *RuleTable) error {
	needed := false
	for _, acc := range accounts.all() {
		if rule, ok := rules.get(acc.Id); ok && rule.Kind == RuleBalanceChange {
			needed = true
			break
		}
		if acc.SheetType == SheetBS && !acc.IsCashAccount && !acc.IgnoredForCF {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	baseProfit, err := accounts.baseProfitAccount()
	if err != nil {
		return err
	}

	// Step A — base-profit CF mirror.
	baseProfitCF := AccountId("baseProfit_cf")
	accounts.ensure(Account{Id: baseProfitCF, SheetType: SheetCF, IgnoredForCF: true})
	rules.put(baseProfitCF, ReferenceRule(baseProfit))

	var nonCashIds []AccountId
	var capexIds []AccountId

	// Steps B & C — non-cash add-backs and capex outflows, both driven by
	// the flows attached to every BalanceChange rule in the (pre-synthesis)
	// model.
	for _, acc := range accounts.all() {
		rule, ok := rules.get(acc.Id)
		if !ok || rule.Kind != RuleBalanceChange {
			continue
		}

		for _, flow := range rule.Flows {
			from, ok := accounts.get(flow.Ref)
			if !ok {
				return fmt.Errorf("%w: balance-change flow on %s references unknown account %s", ErrUnknownAccount, acc.Id, flow.Ref)
			}
			if from.IsCFBaseProfit {
				continue
			}
			if from.SheetType == SheetBS || from.SheetType == SheetCF || from.SheetType == "" {
				continue
			}

			sign := -1.0
			if acc.IsCredit {
				sign = 1.0
			}

			switch flow.Sign {
			case Minus:
				// Step B: non-cash add-back.
				adjId := AccountId(fmt.Sprintf("%s_cf_adj", flow.Ref))
				accounts.ensure(Account{Id: adjId, SheetType: SheetCF, IgnoredForCF: true})
				flowSign := -1.0
				cfSign := sign * flowSign
				rules.put(adjId, CalculationRule(Bin(Mul, Ref(flow.Ref), Num(cfSign))))
				nonCashIds = append(nonCashIds, adjId)

			case Plus:
				// Step C: capex-style outflow.
				adjId := AccountId(fmt.Sprintf("%s_cf_adj", flow.Ref))
				accounts.ensure(Account{Id: adjId, SheetType: SheetCF, IgnoredForCF: true})
				flowSign := 1.0
				cfSign := sign * flowSign
				rules.put(adjId, CalculationRule(Bin(Mul, Ref(flow.Ref), Num(cfSign))))
				capexIds = append(capexIds, adjId)
			}
		}
	}

	// Step D — working-capital deltas.
	var wcIds []AccountId
	for _, acc := range accounts.all() {
		if acc.SheetType != SheetBS || acc.IsCashAccount || acc.IgnoredForCF {
			continue
		}
		if rule, ok := rules.get(acc.Id); ok && rule.Kind == RuleBalanceChange {
			continue
		}

		sign := -1.0
		if acc.IsCredit {
			sign = 1.0
		}

		wcId := AccountId(fmt.Sprintf("%s_cf_wc", acc.Id))
		accounts.ensure(Account{Id: wcId, SheetType: SheetCF, IgnoredForCF: true})
		diff := Bin(Sub, Ref(acc.Id), RefAt(acc.Id, -1))
		rules.put(wcId, CalculationRule(Bin(Mul, diff, Num(sign))))
		wcIds = append(wcIds, wcId)
	}

	// Step E — cash aggregator. Ordering: base, non-cash, WC, investment.
	terms := []*Formula{Ref(baseProfitCF)}
	for _, id := range nonCashIds {
		terms = append(terms, Ref(id))
	}
	for _, id := range wcIds {
		terms = append(terms, Ref(id))
	}
	for _, id := range capexIds {
		terms = append(terms, Ref(id))
	}
	cashChangeCF := AccountId("cash_change_cf")
	accounts.ensure(Account{Id: cashChangeCF, SheetType: SheetCF, IgnoredForCF: true})
	rules.put(cashChangeCF, CalculationRule(sumLeftAssoc(terms)))

	// Step F — cash linkage; any prior "cash" rule is overwritten.
	rules.put("cash", BalanceChangeRule([]Flow{{Ref: cashChangeCF, Sign: Plus}}))

	return nil
}
