package formula

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax          = errors.New("syntax error")
	ErrUndefinedSymbol = errors.New("undefined symbol")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrType            = errors.New("type error")
)

type node interface {
	eval(scope map[string]Value) (Value, error)
}

type literalNode struct {
	value Value
}

func (n *literalNode) eval(map[string]Value) (Value, error) {
	return n.value, nil
}

type identNode struct {
	name string
}

func (n *identNode) eval(scope map[string]Value) (Value, error) {
	value, ok := scope[n.name]
	if !ok {
		return Value{}, fmt.Errorf("%w %s", ErrUndefinedSymbol, n.name)
	}
	return value, nil
}

type unaryNode struct {
	op      string
	operand node
}

func (n *unaryNode) eval(scope map[string]Value) (Value, error) {
	operand, err := n.operand.eval(scope)
	if err != nil {
		return Value{}, err
	}

	if n.op == "not" {
		return Bool(!operand.Truthy()), nil
	}

	num, ok := operand.Num()
	if !ok {
		return Value{}, fmt.Errorf("%w: cannot apply unary %s to %s", ErrType, n.op, operand.Kind())
	}
	if n.op == "-" {
		return Number(-num), nil
	}
	return Number(num), nil
}

// logicalNode evaluates both sides so a missing identifier always surfaces.
type logicalNode struct {
	op          string
	left, right node
}

func (n *logicalNode) eval(scope map[string]Value) (Value, error) {
	left, err := n.left.eval(scope)
	if err != nil {
		return Value{}, err
	}
	right, err := n.right.eval(scope)
	if err != nil {
		return Value{}, err
	}

	if n.op == "and" {
		return Bool(left.Truthy() && right.Truthy()), nil
	}
	return Bool(left.Truthy() || right.Truthy()), nil
}

// ifNode evaluates all three arguments before choosing a branch.
type ifNode struct {
	condition, then, otherwise node
}

func (n *ifNode) eval(scope map[string]Value) (Value, error) {
	condition, err := n.condition.eval(scope)
	if err != nil {
		return Value{}, err
	}
	then, err := n.then.eval(scope)
	if err != nil {
		return Value{}, err
	}
	otherwise, err := n.otherwise.eval(scope)
	if err != nil {
		return Value{}, err
	}

	if condition.Truthy() {
		return then, nil
	}
	return otherwise, nil
}

type binaryNode struct {
	op          string
	left, right node
}

func (n *binaryNode) eval(scope map[string]Value) (Value, error) {
	left, err := n.left.eval(scope)
	if err != nil {
		return Value{}, err
	}
	right, err := n.right.eval(scope)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "+":
		if left.Kind() == KindString || right.Kind() == KindString {
			return String(left.String() + right.String()), nil
		}
		return arithmetic(n.op, left, right)
	case "-", "*", "/":
		return arithmetic(n.op, left, right)
	case "==":
		return Bool(equal(left, right)), nil
	case "!=":
		return Bool(!equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return compare(n.op, left, right)
	}

	return Value{}, fmt.Errorf("%w: unknown operator %s", ErrSyntax, n.op)
}

func arithmetic(op string, left, right Value) (Value, error) {
	a, ok := left.Num()
	if !ok {
		return Value{}, fmt.Errorf("%w: cannot apply %s to %s", ErrType, op, left.Kind())
	}
	b, ok := right.Num()
	if !ok {
		return Value{}, fmt.Errorf("%w: cannot apply %s to %s", ErrType, op, right.Kind())
	}

	switch op {
	case "+":
		return Number(a + b), nil
	case "-":
		return Number(a - b), nil
	case "*":
		return Number(a * b), nil
	}

	if b == 0 {
		return Value{}, ErrDivisionByZero
	}
	return Number(a / b), nil
}

func equal(left, right Value) bool {
	if left.Kind() == KindString || right.Kind() == KindString {
		return left.Kind() == right.Kind() && left.str == right.str
	}
	a, _ := left.Num()
	b, _ := right.Num()
	return a == b
}

func compare(op string, left, right Value) (Value, error) {
	var cmp int

	switch {
	case left.Kind() == KindString && right.Kind() == KindString:
		switch {
		case left.str < right.str:
			cmp = -1
		case left.str > right.str:
			cmp = 1
		}
	case left.Kind() != KindString && right.Kind() != KindString:
		a, _ := left.Num()
		b, _ := right.Num()
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	default:
		return Value{}, fmt.Errorf("%w: cannot compare %s with %s", ErrType, left.Kind(), right.Kind())
	}

	switch op {
	case "<":
		return Bool(cmp < 0), nil
	case "<=":
		return Bool(cmp <= 0), nil
	case ">":
		return Bool(cmp > 0), nil
	}
	return Bool(cmp >= 0), nil
}
