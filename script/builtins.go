package script

import "tally/cell"

var builtins = map[string]*Builtin{
	"GET": {Name: "GET", Fn: builtinGet},
	"SUM": {Name: "SUM", Fn: builtinSum},
	"REL": {Name: "REL", Fn: builtinRel},
	"POS": {Name: "POS", Fn: builtinPos},
}

// builtinGet reads a single cell by address. The address may be given as a
// string ("A0"); bare identifiers like A0 resolve to the same read without
// going through GET.
func builtinGet(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, runtimeErrorf("GET expects 1 argument, got %d", len(args))
	}
	s, ok := args[0].(*String)
	if !ok {
		return nil, runtimeErrorf("GET expects an address string, got %s", args[0].Type())
	}
	addr, err := cell.ParseAddress(s.Value)
	if err != nil {
		return nil, runtimeErrorf("GET: %v", err)
	}
	return ev.cellValue(addr)
}

// builtinSum adds the numeric cells of a range (row-major) or the numeric
// elements of an array. Text and empty cells are skipped; the first errored
// cell short-circuits the whole sum with that error.
func builtinSum(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, runtimeErrorf("SUM expects 1 argument, got %d", len(args))
	}
	switch arg := args[0].(type) {
	case *Range:
		return ev.sumRange(arg.Value)
	case *Array:
		return sumArray(arg)
	default:
		return nil, runtimeErrorf("SUM expects a range or array, got %s", args[0].Type())
	}
}

func (ev *Evaluator) sumRange(rng cell.Range) (Value, error) {
	total := 0.0
	for _, row := range rng.Rows() {
		for _, col := range rng.Cols() {
			raw, err := ev.res.Get(cell.Address{Col: col, Row: row})
			if err != nil {
				return nil, err
			}
			switch raw := raw.(type) {
			case *cell.Error:
				return nil, &CellError{Failure: raw.Failure, Message: raw.Message}
			case *cell.Number:
				total += raw.Value
			}
		}
	}
	return &Float{Value: total}, nil
}

func sumArray(arr *Array) (Value, error) {
	total := 0.0
	for _, el := range arr.Elements {
		switch el := el.(type) {
		case *Integer:
			total += float64(el.Value)
		case *Float:
			total += el.Value
		}
	}
	return &Float{Value: total}, nil
}

// builtinRel reads the cell at a (dx, dy) offset from the formula's own
// position. Offsets that land on a negative coordinate yield null.
func builtinRel(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, runtimeErrorf("REL expects 2 arguments, got %d", len(args))
	}
	dx, ok := intArg(args[0])
	if !ok {
		return nil, runtimeErrorf("REL expects integer offsets, got %s", args[0].Type())
	}
	dy, ok := intArg(args[1])
	if !ok {
		return nil, runtimeErrorf("REL expects integer offsets, got %s", args[1].Type())
	}
	addr, ok := ev.res.Origin().Shift(dx, dy)
	if !ok {
		return NullValue, nil
	}
	return ev.cellValue(addr)
}

// builtinPos returns the formula's own coordinates as [col, row].
func builtinPos(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, runtimeErrorf("POS expects no arguments, got %d", len(args))
	}
	origin := ev.res.Origin()
	return &Array{Elements: []Value{
		&Integer{Value: int64(origin.Col)},
		&Integer{Value: int64(origin.Row)},
	}}, nil
}

func intArg(v Value) (int, bool) {
	i, ok := v.(*Integer)
	if !ok {
		return 0, false
	}
	return int(i.Value), true
}
