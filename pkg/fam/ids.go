// Package fam implements the Financial Account Model evaluation engine:
// a deterministic calculator that turns a set of accounts, an ordered set
// of periods, seeded input values, and per-account rules into numerical
// results for every period/account pair demanded by the rule set.
package fam

import "fmt"

// AccountId identifies a line item (e.g. "revenue", "cash"). Opaque string.
type AccountId string

// PeriodId identifies a time bucket (e.g. "2025-3-ANNUAL"). Opaque string.
type PeriodId string

// NodeId identifies a node inside a single Node Store. Ids are dense
// ascending integers private to the store that minted them; a NodeId from
// one compute() has no meaning against a different compute()'s store.
type NodeId int

// key is the composite (period, account) lookup key used by the Value
// Store, the builder's memo table, and its visiting set.
type key struct {
	pid PeriodId
	aid AccountId
}

func (k key) String() string {
	return fmt.Sprintf("%s@%s", k.aid, k.pid)
}
