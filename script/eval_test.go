package script

import (
	"testing"

	"tally/cell"
)

// tableResolver serves canned values; every cell outside the table is
// empty. It stands in for a live evaluation round.
type tableResolver struct {
	origin cell.Address
	cells  map[string]cell.Value
}

func (r *tableResolver) Origin() cell.Address {
	return r.origin
}

func (r *tableResolver) Get(addr cell.Address) (cell.Value, error) {
	if v, ok := r.cells[addr.String()]; ok {
		return v, nil
	}
	return &cell.Empty{}, nil
}

func resolver(origin string, cells map[string]cell.Value) *tableResolver {
	addr, err := cell.ParseAddress(origin)
	if err != nil {
		panic(err)
	}
	return &tableResolver{origin: addr, cells: cells}
}

func mustNumber(t *testing.T, v cell.Value, want float64) {
	t.Helper()
	n, ok := v.(*cell.Number)
	if !ok {
		t.Fatalf("expected Number, got %T (%s)", v, v.String())
	}
	if n.Value != want {
		t.Fatalf("expected %g, got %g", want, n.Value)
	}
}

func mustText(t *testing.T, v cell.Value, want string) {
	t.Helper()
	s, ok := v.(*cell.Text)
	if !ok {
		t.Fatalf("expected Text, got %T (%s)", v, v.String())
	}
	if s.Value != want {
		t.Fatalf("expected %q, got %q", want, s.Value)
	}
}

func mustScriptError(t *testing.T, v cell.Value) *cell.Error {
	t.Helper()
	e, ok := v.(*cell.Error)
	if !ok {
		t.Fatalf("expected Error, got %T (%s)", v, v.String())
	}
	if e.Failure != cell.ScriptFailure {
		t.Fatalf("expected script failure, got %s", e.Failure)
	}
	return e
}

func TestArithmetic(t *testing.T) {
	r := resolver("A0", nil)
	tests := []struct {
		input string
		want  float64
	}{
		{"2", 2},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"-4 + 1", -3},
		{"10 / 4", 2.5},
		{"7 % 3", 1},
		{"1.5 + 1.5", 3},
	}
	for _, tt := range tests {
		mustNumber(t, Evaluate(tt.input, r), tt.want)
	}
}

func TestStringsAndBooleans(t *testing.T) {
	r := resolver("A0", nil)
	mustText(t, Evaluate(`"foo" + "bar"`, r), "foobar")
	// Booleans keep their display form when they end up in a cell.
	mustText(t, Evaluate("1 < 2", r), "true")
	mustText(t, Evaluate(`"a" == "b"`, r), "false")
	mustText(t, Evaluate("true && false || true", r), "true")
}

func TestImplicitCellReference(t *testing.T) {
	r := resolver("A0", map[string]cell.Value{
		"A1": &cell.Number{Value: 2},
		"B1": &cell.Text{Value: "x"},
	})
	mustNumber(t, Evaluate("A1 + 1", r), 3)
	mustText(t, Evaluate(`B1 + "y"`, r), "xy")
}

func TestGetBuiltin(t *testing.T) {
	r := resolver("A0", map[string]cell.Value{"B2": &cell.Number{Value: 5}})
	mustNumber(t, Evaluate(`GET("B2") * 2`, r), 10)

	e := mustScriptError(t, Evaluate(`GET("nope")`, r))
	if e.Message == "" {
		t.Error("expected a message")
	}
}

func TestEmptyCellIsNull(t *testing.T) {
	r := resolver("A0", nil)
	if v := Evaluate("Z9", r); v.Kind() != cell.EMPTY {
		t.Fatalf("expected Empty, got %s", v.Kind())
	}
	// Arithmetic on an empty cell is a script error, not a silent zero.
	mustScriptError(t, Evaluate("Z9 + 1", r))
	mustText(t, Evaluate("Z9 == Z8", r), "true")
}

func TestSumRange(t *testing.T) {
	r := resolver("B0", map[string]cell.Value{
		"A0": &cell.Number{Value: 1},
		"A1": &cell.Number{Value: 2},
		"A2": &cell.Number{Value: 3},
		"B1": &cell.Text{Value: "skip me"},
	})
	mustNumber(t, Evaluate("SUM(A0_A2)", r), 6)
	// Text and empty cells are skipped, not errors.
	mustNumber(t, Evaluate("SUM(A0_B2)", r), 6)
	// Empty range of cells sums to zero.
	mustNumber(t, Evaluate("SUM(C0_C9)", r), 0)
}

func TestSumShortCircuitsErrors(t *testing.T) {
	r := resolver("B0", map[string]cell.Value{
		"A0": &cell.Number{Value: 1},
		"A1": &cell.Error{Failure: cell.CycleFailure, Message: "dependency cycle detected at A1"},
	})
	v := Evaluate("SUM(A0_A2)", r)
	e, ok := v.(*cell.Error)
	if !ok {
		t.Fatalf("expected Error, got %T", v)
	}
	if e.Failure != cell.CycleFailure {
		t.Errorf("error kind should survive SUM, got %s", e.Failure)
	}
}

func TestSumArray(t *testing.T) {
	r := resolver("A0", nil)
	mustNumber(t, Evaluate("SUM([1, 2, 3.5])", r), 6.5)
	mustNumber(t, Evaluate("SUM([])", r), 0)
}

func TestRel(t *testing.T) {
	r := resolver("B1", map[string]cell.Value{
		"A0": &cell.Number{Value: 9},
		"C2": &cell.Number{Value: 4},
	})
	mustNumber(t, Evaluate("REL(-1, -1)", r), 9)
	mustNumber(t, Evaluate("REL(1, 1)", r), 4)
	// Off the edge of the table is empty, not an error.
	if v := Evaluate("REL(-5, 0)", r); v.Kind() != cell.EMPTY {
		t.Fatalf("expected Empty, got %s", v.Kind())
	}
}

func TestPos(t *testing.T) {
	r := resolver("C7", nil)
	mustNumber(t, Evaluate("POS()[0]", r), 2)
	mustNumber(t, Evaluate("POS()[1]", r), 7)
	mustText(t, Evaluate("POS()", r), "[2, 7]")
}

func TestUpstreamErrorsKeepTheirKind(t *testing.T) {
	r := resolver("A0", map[string]cell.Value{
		"A1": &cell.Error{Failure: cell.CycleFailure, Message: "dependency cycle detected at A1"},
		"A2": &cell.Error{Failure: cell.ScriptFailure, Message: "identifier not found: nope"},
	})
	v := Evaluate("A1 + 1", r)
	if e, ok := v.(*cell.Error); !ok || e.Failure != cell.CycleFailure {
		t.Fatalf("expected cycle error, got %v", v)
	}
	v = Evaluate("A2 + 1", r)
	if e, ok := v.(*cell.Error); !ok || e.Failure != cell.ScriptFailure {
		t.Fatalf("expected script error, got %v", v)
	}
}

func TestScriptFailures(t *testing.T) {
	r := resolver("A0", nil)
	for _, input := range []string{
		"1 +",
		"nope",
		"unknownFn(1)",
		`1 + "x"`,
		"1 / 0",
		"SUM(1)",
		"REL(1)",
		`REL("x", "y")`,
		"POS(1)",
		"[1][5]",
		"true + true",
	} {
		mustScriptError(t, Evaluate(input, r))
	}
}
