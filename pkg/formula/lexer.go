package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenOperator
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	typ  tokenType
	text string
	num  float64
	pos  int
}

// operators are matched longest first
var operators = []string{"==", "!=", "<=", ">=", "&&", "||", "+", "-", "*", "/", "<", ">", "!"}

func tokenize(input string) ([]token, error) {
	tokens := []token{}
	runes := []rune(input)

	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, token{typ: tokenLParen, text: "(", pos: i})
			i++

		case r == ')':
			tokens = append(tokens, token{typ: tokenRParen, text: ")", pos: i})
			i++

		case r == ',':
			tokens = append(tokens, token{typ: tokenComma, text: ",", pos: i})
			i++

		case r == '"' || r == '\'':
			end := i + 1
			var b strings.Builder
			for end < len(runes) && runes[end] != r {
				if runes[end] == '\\' && end+1 < len(runes) {
					end++
				}
				b.WriteRune(runes[end])
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("unterminated string starting at position %d", i)
			}
			tokens = append(tokens, token{typ: tokenString, text: b.String(), pos: i})
			i = end + 1

		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			end := i
			for end < len(runes) && (unicode.IsDigit(runes[end]) || runes[end] == '.') {
				end++
			}
			if end < len(runes) && (runes[end] == 'e' || runes[end] == 'E') {
				exp := end + 1
				if exp < len(runes) && (runes[exp] == '+' || runes[exp] == '-') {
					exp++
				}
				if exp < len(runes) && unicode.IsDigit(runes[exp]) {
					end = exp
					for end < len(runes) && unicode.IsDigit(runes[end]) {
						end++
					}
				}
			}
			text := string(runes[i:end])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at position %d", text, i)
			}
			tokens = append(tokens, token{typ: tokenNumber, text: text, num: num, pos: i})
			i = end

		case unicode.IsLetter(r) || r == '_':
			end := i
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_') {
				end++
			}
			tokens = append(tokens, token{typ: tokenIdent, text: string(runes[i:end]), pos: i})
			i = end

		default:
			matched := false
			rest := string(runes[i:])
			for _, op := range operators {
				if strings.HasPrefix(rest, op) {
					tokens = append(tokens, token{typ: tokenOperator, text: op, pos: i})
					i += len([]rune(op))
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
			}
		}
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(runes)})
	return tokens, nil
}
