package parser

import (
	"testing"

	"tally/ast"
	"tally/lexer"
)

func parseFormula(t *testing.T, input string) ast.Expression {
	t.Helper()
	p := New(lexer.New(input))
	expr := p.ParseFormula()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parsing %q failed: %s", input, FormatParseErrors(errs))
	}
	if expr == nil {
		t.Fatalf("parsing %q produced no expression", input)
	}
	return expr
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"A1 + 1", "(A1 + 1)"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-1 + 2", "((-1) + 2)"},
		{"!true == false", "((!true) == false)"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"1 + 2 < 3 * 4", "((1 + 2) < (3 * 4))"},
		{"a && b || c", "((a && b) || c)"},
		{"a || b && c", "(a || (b && c))"},
		{"SUM(A0_A2) + 1", "(SUM(A0_A2) + 1)"},
		{"POS()[0] + 1", "((POS()[0]) + 1)"},
		{"1 % 2 - 3", "((1 % 2) - 3)"},
	}
	for _, tt := range tests {
		expr := parseFormula(t, tt.input)
		if got := expr.String(); got != tt.want {
			t.Errorf("parse(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseCall(t *testing.T) {
	expr := parseFormula(t, "REL(-1, 2)")
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", expr)
	}
	ident, ok := call.Function.(*ast.Identifier)
	if !ok || ident.Value != "REL" {
		t.Fatalf("unexpected function %v", call.Function)
	}
	if len(call.Arguments) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Arguments))
	}
}

func TestParseArray(t *testing.T) {
	expr := parseFormula(t, "[1, 2.5, \"x\"]")
	arr, ok := expr.(*ast.ArrayLiteral)
	if !ok {
		t.Fatalf("expected ArrayLiteral, got %T", expr)
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
}

func TestParseEmptyCall(t *testing.T) {
	expr := parseFormula(t, "POS()")
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", expr)
	}
	if len(call.Arguments) != 0 {
		t.Fatalf("expected no arguments, got %d", len(call.Arguments))
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"1 +",
		"(1 + 2",
		"[1, 2",
		"SUM(A0_A2",
		"1 2",
		"A1 @",
	}
	for _, input := range inputs {
		p := New(lexer.New(input))
		expr := p.ParseFormula()
		if expr != nil && len(p.Errors()) == 0 {
			t.Errorf("parsing %q should have failed", input)
		}
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	p := New(lexer.New("1 +\n+ 2"))
	p.ParseFormula()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if errs[0].Token.Line == 0 {
		t.Errorf("parse error carries no line: %+v", errs[0])
	}
}
