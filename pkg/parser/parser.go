// Package parser converts call-chain source text into AST values.
//
// The grammar is small enough that no token stream is needed: calls split
// on the chain separator, and expressions parse by recursive descent with
// a parenthesis-depth scan for each top-level operation character.
package parser

import (
	"strconv"
	"strings"

	"github.com/serjsysoev/pipefold/pkg/ast"
)

// MaxSourceSize is the maximum chain source size in bytes (64 KB).
const MaxSourceSize = 64 * 1024

// Parse parses a full call chain. Empty segments around separators are
// discarded; a chain with no calls at all is a syntax error.
func Parse(input string) (ast.CallChain, error) {
	if len(input) > MaxSourceSize {
		return nil, ast.NewSyntaxError("chain source size %d exceeds maximum %d bytes", len(input), MaxSourceSize)
	}
	var chain ast.CallChain
	for _, segment := range strings.Split(input, ast.ChainSeparator) {
		if segment == "" {
			continue
		}
		call, err := ParseCall(segment)
		if err != nil {
			return nil, err
		}
		chain = append(chain, call)
	}
	if len(chain) == 0 {
		return nil, ast.NewSyntaxError("empty call chain")
	}
	return chain, nil
}

// ParseCall parses a single map{...} or filter{...} call.
func ParseCall(segment string) (ast.Call, error) {
	open := strings.IndexByte(segment, '{')
	if open < 0 {
		return ast.Call{}, ast.NewSyntaxError("call %q has no expression braces", segment)
	}
	kind, ok := ast.CallTypeFor(segment[:open])
	if !ok {
		return ast.Call{}, ast.NewSyntaxError("unknown call %q, want map or filter", segment[:open])
	}
	if len(segment) < open+2 || segment[len(segment)-1] != '}' {
		return ast.Call{}, ast.NewSyntaxError("call %q has unterminated braces", segment)
	}
	expr, err := ParseExpression(segment[open+1 : len(segment)-1])
	if err != nil {
		return ast.Call{}, err
	}
	return ast.NewCall(kind, expr)
}

// ParseExpression parses a bare expression into its postfix token form.
func ParseExpression(source string) (ast.Expression, error) {
	tokens, err := parseExpr(source)
	if err != nil {
		return ast.Expression{}, err
	}
	return ast.NewExpression(tokens...), nil
}

// parseExpr recognizes, in order: the element literal, a signed integer
// literal, and a parenthesized binary expression. For the binary case it
// strips exactly one layer of parentheses, locates the top-level operation
// character, recurses on both operand substrings, and checks both operand
// types against the operation before emitting postfix tokens.
func parseExpr(source string) ([]ast.Token, error) {
	if source == ast.ElementLiteral {
		return []ast.Token{ast.NewElement()}, nil
	}
	if isIntegerLiteral(source) {
		n, err := strconv.Atoi(source)
		if err != nil {
			return nil, ast.NewSyntaxError("number %q out of range", source)
		}
		return []ast.Token{ast.NewNumber(n)}, nil
	}
	if len(source) < 2 || source[0] != '(' || source[len(source)-1] != ')' {
		return nil, ast.NewSyntaxError("invalid expression %q", source)
	}
	inner := source[1 : len(source)-1]
	at, op, err := topLevelOperation(inner)
	if err != nil {
		return nil, err
	}
	left, err := parseExpr(inner[:at])
	if err != nil {
		return nil, err
	}
	right, err := parseExpr(inner[at+1:])
	if err != nil {
		return nil, err
	}
	want := op.OperandType()
	if got := typeOf(left); got != want {
		return nil, ast.NewTypeError("operation '%s' requires %s operands, got %s in %q", op, want, got, source)
	}
	if got := typeOf(right); got != want {
		return nil, ast.NewTypeError("operation '%s' requires %s operands, got %s in %q", op, want, got, source)
	}
	tokens := append(left, right...)
	return append(tokens, ast.NewOperation(op)), nil
}

// topLevelOperation scans left to right with a parenthesis-depth counter
// and returns the first operation character at depth 0. Depth going
// negative or no such character is a syntax error; over-parenthesized
// input like ((element+2)) fails here after the outer strip.
func topLevelOperation(inner string) (int, ast.Operation, error) {
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch c := inner[i]; c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return 0, 0, ast.NewSyntaxError("unbalanced parentheses in %q", inner)
			}
		default:
			if depth == 0 {
				if op, ok := ast.OperationFor(c); ok {
					return i, op, nil
				}
			}
		}
	}
	return 0, 0, ast.NewSyntaxError("no top-level operation in %q", inner)
}

func typeOf(tokens []ast.Token) ast.ExprType {
	return tokens[len(tokens)-1].Type()
}

// isIntegerLiteral reports whether s is an optionally minus-signed digit
// run. A leading plus is not part of the grammar, so strconv alone would
// accept too much.
func isIntegerLiteral(s string) bool {
	digits := s
	if strings.HasPrefix(s, "-") {
		digits = s[1:]
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}
