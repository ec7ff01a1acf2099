// Package famseed loads fam.Value seeds — the observed historical numbers
// a model is built on — from JSON, lenient JSON, and HTML table sources.
package famseed

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/wrenfield/famengine/pkg/fam"
)

// Row is the on-disk shape of one seeded value.
type Row struct {
	Account string  `json:"account"`
	Period  string  `json:"period"`
	Value   float64 `json:"value"`
}

// ParseJSON decodes a JSON array of Rows into fam.Values.
func ParseJSON(data []byte) ([]fam.Value, error) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("famseed: JSON_STRUCTURAL_ERROR: %w", err)
	}
	return toValues(rows), nil
}

// ParseLenientJSON repairs common malformations (unquoted keys, single
// quotes, trailing commas, markdown code fences) before decoding. Seed
// files hand-edited by analysts, or pasted from another tool, often need
// this pass before encoding/json will accept them.
func ParseLenientJSON(data []byte) ([]fam.Value, error) {
	repaired, err := jsonrepair.RepairJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("famseed: JSON_REPAIR_FAILED: %w", err)
	}
	return ParseJSON([]byte(repaired))
}

func toValues(rows []Row) []fam.Value {
	out := make([]fam.Value, 0, len(rows))
	for _, r := range rows {
		out = append(out, fam.Value{
			Account: fam.AccountId(r.Account),
			Period:  fam.PeriodId(r.Period),
			Value:   r.Value,
			IsInput: true,
		})
	}
	return out
}
