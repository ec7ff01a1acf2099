// Package famreport renders a compute() result into a Markdown report and,
// optionally, HTML for display.
package famreport

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"github.com/wrenfield/famengine/pkg/fam"
)

// RenderMarkdown writes a one-period results table: one row per account,
// sorted by AccountId for a stable diff-friendly report.
func RenderMarkdown(period fam.PeriodId, values map[fam.AccountId]float64) string {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "# Results for %s\n\n", period)
	b.WriteString("| Account | Value |\n")
	b.WriteString("|---|---|\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "| %s | %.2f |\n", id, values[fam.AccountId(id)])
	}
	return b.String()
}

// RenderHierarchical writes a one-period results table like RenderMarkdown,
// but indents each account id by its ParentId depth in e's account table,
// so a child ("cash", "accounts_receivable", ...) is visibly one level
// below a rolled-up line item ("total_current_assets"). Rows stay sorted by
// AccountId; a child is not moved to sit directly under its parent.
func RenderHierarchical(e *fam.Engine, period fam.PeriodId, values map[fam.AccountId]float64) string {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "# Results for %s\n\n", period)
	b.WriteString("| Account | Value |\n")
	b.WriteString("|---|---|\n")
	for _, id := range ids {
		aid := fam.AccountId(id)
		indent := strings.Repeat("&nbsp;&nbsp;", e.Depth(aid))
		fmt.Fprintf(&b, "| %s%s | %.2f |\n", indent, id, values[aid])
	}
	return b.String()
}

// RenderFormula pretty-prints a Formula tree as an infix expression, the
// inverse of famformula.Parse, for inclusion in rule documentation.
func RenderFormula(f *fam.Formula) string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case fam.FormulaNumber:
		return fmt.Sprintf("%g", f.Number)
	case fam.FormulaAccountRef:
		if f.PeriodOffset == 0 {
			return string(f.Ref)
		}
		return fmt.Sprintf("%s[%+d]", f.Ref, f.PeriodOffset)
	case fam.FormulaBinaryOp:
		return fmt.Sprintf("(%s %s %s)", RenderFormula(f.Left), symbolOf(f.BinOp), RenderFormula(f.Right))
	default:
		return "?"
	}
}

func symbolOf(op fam.Op) string {
	switch op {
	case fam.Add:
		return "+"
	case fam.Sub:
		return "-"
	case fam.Mul:
		return "*"
	case fam.Div:
		return "/"
	default:
		return "?"
	}
}

// ToHTML renders a Markdown report to HTML via goldmark.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("famreport: render failed: %w", err)
	}
	return buf.String(), nil
}

// ValidateMarkdown reports whether input parses as Markdown at all. Goldmark
// is permissive, so this only catches the reader failing to produce a
// document — it is a basic sanity check before handing the string to a
// caller that renders it.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}
