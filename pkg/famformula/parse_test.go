package famformula

import (
	"testing"

	"github.com/wrenfield/famengine/pkg/fam"
)

func TestParse_Number(t *testing.T) {
	f, err := Parse("42")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Kind != fam.FormulaNumber || f.Number != 42 {
		t.Fatalf("got %+v", f)
	}
}

func TestParse_Identifier(t *testing.T) {
	f, err := Parse("revenue")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Kind != fam.FormulaAccountRef || f.Ref != "revenue" || f.PeriodOffset != 0 {
		t.Fatalf("got %+v", f)
	}
}

func TestParse_IndexedReference(t *testing.T) {
	f, err := Parse("revenue[-1]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Kind != fam.FormulaAccountRef || f.Ref != "revenue" || f.PeriodOffset != -1 {
		t.Fatalf("got %+v", f)
	}
}

func TestParse_BinaryPrecedence(t *testing.T) {
	// "a + b * c" must parse as a + (b * c), not (a + b) * c.
	f, err := Parse("a + b * c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Kind != fam.FormulaBinaryOp || f.BinOp != fam.Add {
		t.Fatalf("expected top-level ADD, got %+v", f)
	}
	if f.Right.Kind != fam.FormulaBinaryOp || f.Right.BinOp != fam.Mul {
		t.Fatalf("expected right branch MUL, got %+v", f.Right)
	}
}

func TestParse_UnaryMinus(t *testing.T) {
	f, err := Parse("-cogs")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Kind != fam.FormulaBinaryOp || f.BinOp != fam.Mul {
		t.Fatalf("expected MUL(-1, cogs), got %+v", f)
	}
	if f.Left.Number != -1 {
		t.Fatalf("expected -1 literal, got %+v", f.Left)
	}
	if f.Right.Ref != "cogs" {
		t.Fatalf("expected cogs ref, got %+v", f.Right)
	}
}

func TestParse_GrowthFormula(t *testing.T) {
	f, err := Parse("revenue[-1] * (1 + 0.05)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Kind != fam.FormulaBinaryOp || f.BinOp != fam.Mul {
		t.Fatalf("got %+v", f)
	}
	if f.Left.Ref != "revenue" || f.Left.PeriodOffset != -1 {
		t.Fatalf("expected revenue[-1] on the left, got %+v", f.Left)
	}
}

func TestParse_UnsupportedNode(t *testing.T) {
	if _, err := Parse("a == b"); err == nil {
		t.Fatal("expected an error for a non-arithmetic expression")
	}
}
