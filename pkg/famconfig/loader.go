// Package famconfig loads the account table, period table, and rule set a
// fam.Engine needs from YAML or HJSON documents, tolerating the kind of
// hand-edited, loosely-quoted config files analysts actually write.
package famconfig

import (
	"fmt"

	hjson "github.com/hjson/hjson-go/v4"
	yaml "gopkg.in/yaml.v2"

	"github.com/wrenfield/famengine/pkg/fam"
	"github.com/wrenfield/famengine/pkg/famformula"
)

// AccountSpec is the on-disk shape of a single account entry. Both tags
// are needed: ParseYAML decodes via yaml.v2 (yaml tags), ParseHJSON
// decodes via hjson-go's encoding/json-compatible matching (json tags).
type AccountSpec struct {
	Id             string `yaml:"id" json:"id"`
	DisplayName    string `yaml:"display_name" json:"display_name"`
	SheetType      string `yaml:"sheet_type" json:"sheet_type"`
	ParentId       string `yaml:"parent_id" json:"parent_id"`
	IsCredit       bool   `yaml:"is_credit" json:"is_credit"`
	IgnoredForCF   bool   `yaml:"ignored_for_cf" json:"ignored_for_cf"`
	IsCFBaseProfit bool   `yaml:"is_cf_base_profit" json:"is_cf_base_profit"`
	IsCashAccount  bool   `yaml:"is_cash_account" json:"is_cash_account"`
}

// PeriodSpec is the on-disk shape of a single period entry.
type PeriodSpec struct {
	Id              string `yaml:"id" json:"id"`
	Year            int    `yaml:"year" json:"year"`
	Month           int    `yaml:"month" json:"month"`
	FiscalYear      int    `yaml:"fiscal_year" json:"fiscal_year"`
	IsFiscalYearEnd bool   `yaml:"is_fiscal_year_end" json:"is_fiscal_year_end"`
	PeriodType      string `yaml:"period_type" json:"period_type"`
	Label           string `yaml:"label" json:"label"`
}

// RuleSpec is the on-disk shape of a single rule entry. Exactly one of the
// kind-specific fields is meaningful, selected by Kind.
type RuleSpec struct {
	Account string `yaml:"account" json:"account"`
	Kind    string `yaml:"kind" json:"kind"`

	InputValue float64 `yaml:"input_value" json:"input_value"`
	Formula    string  `yaml:"formula" json:"formula"`
	GrowthRate float64 `yaml:"growth_rate" json:"growth_rate"`
	Percent    float64 `yaml:"percent" json:"percent"`
	PercentOf  string  `yaml:"percent_of" json:"percent_of"`
	Ref        string  `yaml:"ref" json:"ref"`
	Flows      []struct {
		Ref  string `yaml:"ref" json:"ref"`
		Sign string `yaml:"sign" json:"sign"`
	} `yaml:"flows" json:"flows"`
}

// ModelSpec is the full on-disk model: accounts, periods, and rules.
type ModelSpec struct {
	Accounts []AccountSpec `yaml:"accounts" json:"accounts"`
	Periods  []PeriodSpec  `yaml:"periods" json:"periods"`
	Rules    []RuleSpec    `yaml:"rules" json:"rules"`
}

// ParseYAML parses a strict YAML document into a ModelSpec.
func ParseYAML(data []byte) (*ModelSpec, error) {
	var spec ModelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("famconfig: YAML_PARSE_ERROR: %w", err)
	}
	return &spec, nil
}

// ParseHJSON parses a lenient HJSON document (comments, unquoted keys,
// optional commas) into a ModelSpec by round-tripping through standard
// JSON.
func ParseHJSON(data []byte) (*ModelSpec, error) {
	var spec ModelSpec
	if err := hjson.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("famconfig: HJSON_PARSE_ERROR: %w", err)
	}
	return &spec, nil
}

// Apply loads a parsed ModelSpec into an Engine: accounts, then periods,
// then rules (formulas are compiled via famformula on the way in).
func Apply(e *fam.Engine, spec *ModelSpec) error {
	accounts := make([]fam.Account, 0, len(spec.Accounts))
	for _, a := range spec.Accounts {
		accounts = append(accounts, fam.Account{
			Id:             fam.AccountId(a.Id),
			DisplayName:    a.DisplayName,
			SheetType:      fam.SheetType(a.SheetType),
			ParentId:       fam.AccountId(a.ParentId),
			IsCredit:       a.IsCredit,
			IgnoredForCF:   a.IgnoredForCF,
			IsCFBaseProfit: a.IsCFBaseProfit,
			IsCashAccount:  a.IsCashAccount,
		})
	}
	e.SetAccounts(accounts)

	periods := make([]fam.Period, 0, len(spec.Periods))
	for _, p := range spec.Periods {
		periods = append(periods, fam.Period{
			Id:              fam.PeriodId(p.Id),
			Year:            p.Year,
			Month:           p.Month,
			FiscalYear:      p.FiscalYear,
			IsFiscalYearEnd: p.IsFiscalYearEnd,
			PeriodType:      fam.PeriodType(p.PeriodType),
			Label:           p.Label,
		})
	}
	e.SetPeriods(periods)

	rules := make(map[fam.AccountId]fam.Rule, len(spec.Rules))
	for _, r := range spec.Rules {
		rule, err := toRule(r)
		if err != nil {
			return fmt.Errorf("famconfig: rule %q: %w", r.Account, err)
		}
		rules[fam.AccountId(r.Account)] = rule
	}
	e.SetRules(rules)

	return nil
}

func toRule(r RuleSpec) (fam.Rule, error) {
	switch r.Kind {
	case "input":
		return fam.InputRule(r.InputValue), nil
	case "calculation":
		f, err := famformula.Parse(r.Formula)
		if err != nil {
			return fam.Rule{}, err
		}
		return fam.CalculationRule(f), nil
	case "growth_rate":
		return fam.GrowthRateRule(r.GrowthRate), nil
	case "percentage":
		return fam.PercentageRule(r.Percent, fam.AccountId(r.PercentOf)), nil
	case "reference":
		return fam.ReferenceRule(fam.AccountId(r.Ref)), nil
	case "fixed_value":
		return fam.FixedValueRule(), nil
	case "proportionate":
		return fam.ProportionateRule(fam.AccountId(r.Ref)), nil
	case "balance_change":
		flows := make([]fam.Flow, 0, len(r.Flows))
		for _, fl := range r.Flows {
			sign := fam.Plus
			if fl.Sign == "minus" {
				sign = fam.Minus
			}
			flows = append(flows, fam.Flow{Ref: fam.AccountId(fl.Ref), Sign: sign})
		}
		return fam.BalanceChangeRule(flows), nil
	default:
		return fam.Rule{}, fmt.Errorf("unknown rule kind %q", r.Kind)
	}
}
