// Package script evaluates cell formulas against a live evaluation round.
// The bridge between a formula and the engine is the Resolver: every cell
// read goes through it and may suspend the calling goroutine until a peer
// cell has produced its value.
package script

import (
	"errors"

	"tally/ast"
	"tally/cell"
	"tally/lexer"
	"tally/parser"
)

// Resolver supplies cell values to a running formula. Get blocks until the
// requested cell's value for this round is known; it fails with a CellError
// of kind cycle when the request would close a dependency cycle.
type Resolver interface {
	Origin() cell.Address
	Get(cell.Address) (cell.Value, error)
}

type Evaluator struct {
	res Resolver
}

// Evaluate parses and runs one formula (the cell source without its leading
// "=") and translates the outcome into an engine value. Failures come back
// as Error values, never as Go errors: parse and runtime failures as script
// errors, upstream cell failures with their original kind.
func Evaluate(source string, res Resolver) cell.Value {
	p := parser.New(lexer.New(source))
	expr := p.ParseFormula()
	if len(p.Errors()) > 0 {
		return &cell.Error{Failure: cell.ScriptFailure, Message: parser.FormatParseErrors(p.Errors())}
	}

	ev := &Evaluator{res: res}
	val, err := ev.Eval(expr)
	if err != nil {
		var cellErr *CellError
		if errors.As(err, &cellErr) {
			return &cell.Error{Failure: cellErr.Failure, Message: cellErr.Message}
		}
		return &cell.Error{Failure: cell.ScriptFailure, Message: err.Error()}
	}
	return ToCell(val)
}

func (ev *Evaluator) Eval(node ast.Expression) (Value, error) {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}, nil
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}, nil
	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil
	case *ast.BooleanLiteral:
		return &Boolean{Value: node.Value}, nil
	case *ast.Identifier:
		return ev.evalIdentifier(node)
	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(node)
	case *ast.PrefixExpression:
		return ev.evalPrefixExpression(node)
	case *ast.InfixExpression:
		return ev.evalInfixExpression(node)
	case *ast.CallExpression:
		return ev.evalCallExpression(node)
	case *ast.IndexExpression:
		return ev.evalIndexExpression(node)
	default:
		return nil, runtimeErrorf("cannot evaluate %T", node)
	}
}

// evalIdentifier resolves a bare name. Builtins win, then range references,
// then cell references as an implicit GET; anything else is undefined.
func (ev *Evaluator) evalIdentifier(node *ast.Identifier) (Value, error) {
	if builtin, ok := builtins[node.Value]; ok {
		return builtin, nil
	}
	if rng, err := cell.ParseRange(node.Value); err == nil {
		return &Range{Value: rng}, nil
	}
	if addr, err := cell.ParseAddress(node.Value); err == nil {
		return ev.cellValue(addr)
	}
	return nil, runtimeErrorf("identifier not found: %s", node.Value)
}

// cellValue reads a peer cell through the resolver. Errored cells abort
// the formula with a kind-preserving CellError.
func (ev *Evaluator) cellValue(addr cell.Address) (Value, error) {
	raw, err := ev.res.Get(addr)
	if err != nil {
		return nil, err
	}
	if cellErr, ok := raw.(*cell.Error); ok {
		return nil, &CellError{Failure: cellErr.Failure, Message: cellErr.Message}
	}
	return FromCell(raw), nil
}

func (ev *Evaluator) evalArrayLiteral(node *ast.ArrayLiteral) (Value, error) {
	elements := make([]Value, 0, len(node.Elements))
	for _, el := range node.Elements {
		val, err := ev.Eval(el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	return &Array{Elements: elements}, nil
}

func (ev *Evaluator) evalPrefixExpression(node *ast.PrefixExpression) (Value, error) {
	right, err := ev.Eval(node.Right)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case "-":
		switch right := right.(type) {
		case *Integer:
			return &Integer{Value: -right.Value}, nil
		case *Float:
			return &Float{Value: -right.Value}, nil
		}
		return nil, runtimeErrorf("cannot negate %s", right.Type())
	case "!":
		if b, ok := right.(*Boolean); ok {
			return &Boolean{Value: !b.Value}, nil
		}
		return nil, runtimeErrorf("cannot apply ! to %s", right.Type())
	default:
		return nil, runtimeErrorf("unknown prefix operator: %s", node.Operator)
	}
}

func (ev *Evaluator) evalInfixExpression(node *ast.InfixExpression) (Value, error) {
	if node.Operator == "&&" || node.Operator == "||" {
		return ev.evalLogicalExpression(node)
	}

	left, err := ev.Eval(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.Eval(node.Right)
	if err != nil {
		return nil, err
	}

	switch left := left.(type) {
	case *Integer:
		return evalIntegerInfix(node.Operator, left, right)
	case *Float:
		return evalFloatInfix(node.Operator, left, right)
	case *String:
		return evalStringInfix(node.Operator, left, right)
	case *Boolean:
		return evalBooleanInfix(node.Operator, left, right)
	case *Null:
		return evalNullInfix(node.Operator, right)
	default:
		return nil, runtimeErrorf("unsupported operand type: %s", left.Type())
	}
}

func (ev *Evaluator) evalLogicalExpression(node *ast.InfixExpression) (Value, error) {
	left, err := ev.Eval(node.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(*Boolean)
	if !ok {
		return nil, runtimeErrorf("%s requires booleans, got %s", node.Operator, left.Type())
	}
	if node.Operator == "&&" && !lb.Value {
		return &Boolean{Value: false}, nil
	}
	if node.Operator == "||" && lb.Value {
		return &Boolean{Value: true}, nil
	}
	right, err := ev.Eval(node.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(*Boolean)
	if !ok {
		return nil, runtimeErrorf("%s requires booleans, got %s", node.Operator, right.Type())
	}
	return &Boolean{Value: rb.Value}, nil
}

func (ev *Evaluator) evalCallExpression(node *ast.CallExpression) (Value, error) {
	fn, err := ev.Eval(node.Function)
	if err != nil {
		return nil, err
	}
	builtin, ok := fn.(*Builtin)
	if !ok {
		return nil, runtimeErrorf("%s is not callable", fn.Type())
	}
	args := make([]Value, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		val, err := ev.Eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return builtin.Fn(ev, args)
}

func (ev *Evaluator) evalIndexExpression(node *ast.IndexExpression) (Value, error) {
	left, err := ev.Eval(node.Left)
	if err != nil {
		return nil, err
	}
	index, err := ev.Eval(node.Index)
	if err != nil {
		return nil, err
	}
	array, ok := left.(*Array)
	if !ok {
		return nil, runtimeErrorf("cannot index %s", left.Type())
	}
	idx, ok := index.(*Integer)
	if !ok {
		return nil, runtimeErrorf("array index must be an integer, got %s", index.Type())
	}
	if idx.Value < 0 || idx.Value >= int64(len(array.Elements)) {
		return nil, runtimeErrorf("index %d out of bounds for array of %d", idx.Value, len(array.Elements))
	}
	return array.Elements[idx.Value], nil
}
