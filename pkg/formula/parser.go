package formula

import (
	"fmt"
	"strings"
)

type parser struct {
	tokens      []token
	pos         int
	identifiers map[string]struct{}
}

func parse(input string) (node, []string, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	p := &parser{tokens: tokens, identifiers: map[string]struct{}{}}
	if p.peek().typ == tokenEOF {
		return nil, nil, fmt.Errorf("%w: expression is empty", ErrSyntax)
	}

	root, err := p.parseOr()
	if err != nil {
		return nil, nil, err
	}

	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, tok.text, tok.pos)
	}

	identifiers := make([]string, 0, len(p.identifiers))
	for name := range p.identifiers {
		identifiers = append(identifiers, name)
	}

	return root, identifiers, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

// matchOperator consumes the next token if it is one of the given operators or keywords.
func (p *parser) matchOperator(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.typ != tokenOperator && tok.typ != tokenIdent {
		return "", false
	}
	for _, op := range ops {
		if tok.typ == tokenOperator && tok.text == op {
			p.next()
			return op, true
		}
		if tok.typ == tokenIdent && strings.EqualFold(tok.text, op) {
			p.next()
			return strings.ToLower(op), true
		}
	}
	return "", false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		if _, ok := p.matchOperator("||", "or"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{op: "or", left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for {
		if _, ok := p.matchOperator("&&", "and"); !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{op: "and", left: left, right: right}
	}
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.matchOperator("==", "!=", "<=", ">=", "<", ">")
		if !ok {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.matchOperator("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.matchOperator("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

// parseUnary binds tighter than any binary operator, so !a == b is (!a) == b.
func (p *parser) parseUnary() (node, error) {
	if _, ok := p.matchOperator("!", "not"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: "not", operand: operand}, nil
	}
	if op, ok := p.matchOperator("-", "+"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()

	switch tok.typ {
	case tokenNumber:
		return &literalNode{value: Number(tok.num)}, nil

	case tokenString:
		return &literalNode{value: String(tok.text)}, nil

	case tokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.typ != tokenRParen {
			return nil, fmt.Errorf("%w: expected ')' at position %d", ErrSyntax, closing.pos)
		}
		return inner, nil

	case tokenIdent:
		switch strings.ToLower(tok.text) {
		case "true":
			return &literalNode{value: Bool(true)}, nil
		case "false":
			return &literalNode{value: Bool(false)}, nil
		}

		if p.peek().typ == tokenLParen {
			return p.parseCall(tok)
		}

		p.identifiers[tok.text] = struct{}{}
		return &identNode{name: tok.text}, nil

	case tokenEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, tok.text, tok.pos)
}

func (p *parser) parseCall(name token) (node, error) {
	if !strings.EqualFold(name.text, "if") {
		return nil, fmt.Errorf("%w: unknown function %q", ErrSyntax, name.text)
	}
	p.next() // (

	args := []node{}
	if p.peek().typ != tokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().typ != tokenComma {
				break
			}
			p.next()
		}
	}

	if closing := p.next(); closing.typ != tokenRParen {
		return nil, fmt.Errorf("%w: expected ')' at position %d", ErrSyntax, closing.pos)
	}

	if len(args) != 3 {
		return nil, fmt.Errorf("%w: if expects 3 arguments (condition, then, else), got %d", ErrSyntax, len(args))
	}

	return &ifNode{condition: args[0], then: args[1], otherwise: args[2]}, nil
}
