package script

import (
	"fmt"
	"strconv"
	"strings"

	"tally/cell"
)

type ValueType string

const (
	INTEGER ValueType = "INTEGER"
	FLOAT   ValueType = "FLOAT"
	BOOLEAN ValueType = "BOOLEAN"
	STRING  ValueType = "STRING"
	NULL    ValueType = "NULL"
	ARRAY   ValueType = "ARRAY"
	RANGE   ValueType = "RANGE"
	BUILTIN ValueType = "BUILTIN"
)

// Value is a value inside a running formula. The set is closed: formulas
// cannot define new types.
type Value interface {
	Type() ValueType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ValueType { return INTEGER }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOLEAN }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING }
func (s *String) Inspect() string { return s.Value }

type Null struct{}

func (n *Null) Type() ValueType { return NULL }
func (n *Null) Inspect() string { return "null" }

var NullValue = &Null{}

type Array struct {
	Elements []Value
}

func (a *Array) Type() ValueType { return ARRAY }
func (a *Array) Inspect() string {
	elements := make([]string, 0, len(a.Elements))
	for _, el := range a.Elements {
		elements = append(elements, el.Inspect())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// Range is a rectangular cell reference, produced by identifiers of the
// form "A0_B4". Only builtins consume it.
type Range struct {
	Value cell.Range
}

func (r *Range) Type() ValueType { return RANGE }
func (r *Range) Inspect() string { return r.Value.String() }

type BuiltinFn func(ev *Evaluator, args []Value) (Value, error)

type Builtin struct {
	Name string
	Fn   BuiltinFn
}

func (b *Builtin) Type() ValueType { return BUILTIN }
func (b *Builtin) Inspect() string { return fmt.Sprintf("builtin %s", b.Name) }

// FromCell translates an engine value into its formula counterpart. Error
// values do not translate; the caller maps them to a CellError first.
func FromCell(v cell.Value) Value {
	switch v := v.(type) {
	case *cell.Text:
		return &String{Value: v.Value}
	case *cell.Number:
		return &Float{Value: v.Value}
	default:
		return NullValue
	}
}

// ToCell translates a formula result into an engine value. Numbers and
// strings map onto their engine cases; anything else is kept by its display
// form, except null which maps to the empty value.
func ToCell(v Value) cell.Value {
	switch v := v.(type) {
	case *Integer:
		return &cell.Number{Value: float64(v.Value)}
	case *Float:
		return &cell.Number{Value: v.Value}
	case *String:
		return &cell.Text{Value: v.Value}
	case *Null, nil:
		return &cell.Empty{}
	default:
		return &cell.Text{Value: v.Inspect()}
	}
}
