// Package famformula compiles the small arithmetic language analysts write
// in rule config files ("revenue[-1] * 1.05 + other_income") into a
// fam.Formula tree, using expr-lang's parser so the grammar (operator
// precedence, parens, unary minus) is inherited rather than hand-rolled.
//
// Supported syntax: decimal number literals, bare account identifiers
// (current period), account[-1]/account[+2] indexed references (relative
// period offset), and the four binary operators + - * / with normal
// precedence and parentheses.
package famformula

import (
	"fmt"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/wrenfield/famengine/pkg/fam"
)

// Parse compiles a formula expression into a fam.Formula tree.
func Parse(expression string) (*fam.Formula, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("famformula: parse error in %q: %w", expression, err)
	}
	return convert(tree.Node)
}

func convert(node ast.Node) (*fam.Formula, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return fam.Num(float64(n.Value)), nil

	case *ast.FloatNode:
		return fam.Num(n.Value), nil

	case *ast.IdentifierNode:
		return fam.Ref(fam.AccountId(n.Value)), nil

	case *ast.UnaryNode:
		inner, err := convert(n.Node)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "-":
			return fam.Bin(fam.Mul, fam.Num(-1), inner), nil
		case "+":
			return inner, nil
		default:
			return nil, fmt.Errorf("famformula: unsupported unary operator %q", n.Operator)
		}

	case *ast.BinaryNode:
		left, err := convert(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := convert(n.Right)
		if err != nil {
			return nil, err
		}
		op, err := toOp(n.Operator)
		if err != nil {
			return nil, err
		}
		return fam.Bin(op, left, right), nil

	case *ast.MemberNode:
		id, ok := n.Node.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("famformula: indexed reference must be a bare account name")
		}
		offset, err := literalInt(n.Property)
		if err != nil {
			return nil, fmt.Errorf("famformula: %s[...]: %w", id.Value, err)
		}
		return fam.RefAt(fam.AccountId(id.Value), offset), nil

	default:
		return nil, fmt.Errorf("famformula: unsupported expression node %T", node)
	}
}

func literalInt(node ast.Node) (int, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return n.Value, nil
	case *ast.UnaryNode:
		v, err := literalInt(n.Node)
		if err != nil {
			return 0, err
		}
		if n.Operator == "-" {
			return -v, nil
		}
		return v, nil
	default:
		return 0, fmt.Errorf("index must be an integer literal, got %T", node)
	}
}

func toOp(operator string) (fam.Op, error) {
	switch operator {
	case "+":
		return fam.Add, nil
	case "-":
		return fam.Sub, nil
	case "*":
		return fam.Mul, nil
	case "/":
		return fam.Div, nil
	default:
		return "", fmt.Errorf("famformula: unsupported binary operator %q", operator)
	}
}
