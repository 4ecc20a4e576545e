// Package formula is a small sandboxed expression language for custom merge formulas.
//
// Expressions support numbers, quoted strings, booleans, identifiers bound from a row,
// arithmetic (+ - * /), comparisons, and/or/not and the if(condition, then, else) function.
// Nothing else is reachable from an expression.
package formula

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Expression is a parsed formula ready to be evaluated against many rows.
type Expression struct {
	source      string
	root        node
	identifiers []string
}

// Compile parses an expression without caching it.
func Compile(expression string) (*Expression, error) {
	root, identifiers, err := parse(expression)
	if err != nil {
		return nil, err
	}
	slices.Sort(identifiers)
	return &Expression{source: expression, root: root, identifiers: identifiers}, nil
}

func (e *Expression) Source() string { return e.source }

// Identifiers lists the names the expression reads, sorted.
func (e *Expression) Identifiers() []string {
	return slices.Clone(e.identifiers)
}

func (e *Expression) Evaluate(scope map[string]Value) (Value, error) {
	return e.root.eval(scope)
}

// Evaluator caches compiled expressions by source text.
type Evaluator struct {
	cache map[string]*Expression
	mu    sync.RWMutex
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*Expression),
	}
}

// Evaluate evaluates an expression against a typed scope.
func (e *Evaluator) Evaluate(expression string, scope map[string]Value) (Value, error) {
	compiled, err := e.getOrCompile(expression)
	if err != nil {
		return Value{}, fmt.Errorf("invalid expression %q: %w", expression, err)
	}

	result, err := compiled.Evaluate(scope)
	if err != nil {
		return Value{}, fmt.Errorf("failed to evaluate expression %q: %w", expression, err)
	}

	return result, nil
}

// EvaluateRow binds the row with TypedContext and renders the result as a string.
func (e *Evaluator) EvaluateRow(expression string, row models.Row) (string, error) {
	result, err := e.Evaluate(expression, TypedContext(row))
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

// Validate compiles and caches an expression and returns the identifiers it reads.
func (e *Evaluator) Validate(expression string) ([]string, error) {
	compiled, err := e.getOrCompile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", expression, err)
	}
	return compiled.Identifiers(), nil
}

func (e *Evaluator) getOrCompile(expression string) (*Expression, error) {
	e.mu.RLock()
	if compiled, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return compiled, nil
	}
	e.mu.RUnlock()

	compiled, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[expression] = compiled
	e.mu.Unlock()

	return compiled, nil
}

