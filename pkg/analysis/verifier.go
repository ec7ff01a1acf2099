package analysis

import (
	"fmt"
	"math"

	"github.com/wrenfield/famengine/pkg/fam"
)

// VerificationResult holds the status of an integrity check.
type VerificationResult struct {
	IsBalanced bool
	Gap        float64
	Warnings   []string
}

// BalanceTolerance is the maximum acceptable gap between two sides of an
// identity that should hold exactly. Accounts round to 2 decimal places
// independently (pkg/fam/rounding.go), so a correctly-balanced multi-account
// model can still accumulate noise well above a single cent; 1.0 absorbs
// that without masking a genuine imbalance.
const BalanceTolerance = 1.0

// CheckBalanceSheet verifies Assets = Liabilities + Equity for one period,
// tolerant to per-account rounding noise up to BalanceTolerance.
func CheckBalanceSheet(s Snapshot, assetsId, equityAndLiabId fam.AccountId) VerificationResult {
	assets := s.get(assetsId)
	equityAndLiab := s.get(equityAndLiabId)
	gap := assets - equityAndLiab
	isBalanced := math.Abs(gap) <= BalanceTolerance

	var warnings []string
	if !isBalanced {
		warnings = append(warnings, fmt.Sprintf("balance sheet out of balance by %.2f", gap))
	}
	return VerificationResult{IsBalanced: isBalanced, Gap: gap, Warnings: warnings}
}

// CheckCashFlow verifies that operating + investing + financing cash flow
// equals the reported change in cash for one period, tolerant to per-account
// rounding noise up to BalanceTolerance.
func CheckCashFlow(s Snapshot, operatingId, investingId, financingId, netChangeId fam.AccountId) VerificationResult {
	calc := s.get(operatingId) + s.get(investingId) + s.get(financingId)
	gap := s.get(netChangeId) - calc
	isBalanced := math.Abs(gap) <= BalanceTolerance

	var warnings []string
	if !isBalanced {
		warnings = append(warnings, fmt.Sprintf("cash flow statement inconsistency by %.2f", gap))
	}
	return VerificationResult{IsBalanced: isBalanced, Gap: gap, Warnings: warnings}
}
