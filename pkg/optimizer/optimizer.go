// Package optimizer rewrites valid call chains into the canonical
// two-call form filter{...}%>%map{...}.
//
// The rewrite composes every map into a single polynomial over the
// original element and folds every filter predicate against the values the
// element had at that point in the chain, so the one remaining filter runs
// before the one remaining map.
package optimizer

import (
	"github.com/serjsysoev/pipefold/pkg/ast"
	"github.com/serjsysoev/pipefold/pkg/poly"
)

// Optimize rewrites chain into exactly two calls: a filter carrying the
// conjunction of all simplified predicates (or (1=1) when the chain has no
// filters), then a map carrying the composed polynomial. Chains that the
// parser produces always rewrite cleanly; any failure on a hand-built
// chain surfaces as a malformed-chain internal error.
func Optimize(chain ast.CallChain) (ast.CallChain, error) {
	if len(chain) == 0 {
		return nil, ast.NewInternalError("empty call chain")
	}

	composed := poly.Identity()
	var accumulated []ast.Token

	for _, call := range chain {
		tokens := substitute(call.Expr().Tokens(), composed)
		switch call.Kind() {
		case ast.CallMap:
			next, err := poly.FromTokens(tokens)
			if err != nil {
				return nil, err
			}
			composed = next
		case ast.CallFilter:
			simplified, err := simplifyPredicate(tokens)
			if err != nil {
				return nil, err
			}
			if accumulated == nil {
				accumulated = simplified
				continue
			}
			// Conjoin new-AND-old: the later predicate becomes the
			// left operand of the joining &.
			joined := make([]ast.Token, 0, len(simplified)+len(accumulated)+1)
			joined = append(joined, simplified...)
			joined = append(joined, accumulated...)
			accumulated = append(joined, ast.NewOperation(ast.OpAnd))
		default:
			return nil, ast.NewInternalError("unknown call type %d", call.Kind())
		}
	}

	if accumulated == nil {
		accumulated = alwaysTrue()
	}

	filterCall, err := ast.NewCall(ast.CallFilter, ast.NewExpression(expand(accumulated)...))
	if err != nil {
		return nil, ast.NewInternalError("rewritten predicate is not boolean: %v", err)
	}
	mapCall, err := ast.NewCall(ast.CallMap, composed.ToExpression())
	if err != nil {
		return nil, ast.NewInternalError("rewritten map is not arithmetic: %v", err)
	}

	out := ast.CallChain{filterCall, mapCall}
	if _, err := out.Render(); err != nil {
		return nil, err
	}
	return out, nil
}

// substitute replaces every element token with the composed map
// polynomial, expressing the call over the original chain input.
func substitute(tokens []ast.Token, composed poly.Polynomial) []ast.Token {
	out := make([]ast.Token, len(tokens))
	for i, t := range tokens {
		if t.Kind() == ast.TokenElement {
			out[i] = ast.NewPolynomial(composed.Coefficients())
		} else {
			out[i] = t
		}
	}
	return out
}

// simplifyPredicate walks a substituted postfix predicate with a
// polynomial stack. Non-operator tokens convert to polynomials eagerly and
// plus/minus/multiply combine them; a comparison pops both sides and
// constant-folds; and/or pass through to the output unchanged, preserving
// the logical structure. Leftover operands mean the predicate was not
// well-typed postfix.
func simplifyPredicate(tokens []ast.Token) ([]ast.Token, error) {
	var out []ast.Token
	var stack []poly.Polynomial
	for _, t := range tokens {
		switch t.Kind() {
		case ast.TokenNumber:
			stack = append(stack, poly.Constant(t.AsNumber()))
		case ast.TokenElement:
			stack = append(stack, poly.Identity())
		case ast.TokenPolynomial:
			stack = append(stack, poly.New(t.AsCoefficients()...))
		case ast.TokenOperation:
			op := t.AsOperation()
			if op == ast.OpAnd || op == ast.OpOr {
				out = append(out, t)
				continue
			}
			if len(stack) < 2 {
				return nil, ast.NewInternalError("operation '%s' is missing operands", op)
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			switch op {
			case ast.OpPlus:
				stack = append(stack, left.Add(right))
			case ast.OpMinus:
				stack = append(stack, left.Sub(right))
			case ast.OpMultiply:
				stack = append(stack, left.Mul(right))
			case ast.OpLess, ast.OpGreater, ast.OpEqual:
				out = append(out, foldComparison(op, left, right)...)
			}
		default:
			return nil, ast.NewInternalError("%s token cannot appear in a predicate", t.Kind())
		}
	}
	if len(stack) != 0 {
		return nil, ast.NewInternalError("predicate left %d unreduced operands", len(stack))
	}
	if len(out) == 0 {
		return nil, ast.NewInternalError("predicate reduced to nothing")
	}
	return out, nil
}

// foldComparison normalizes greater to less by swapping operands, then
// decides against diff = right - left. A constant diff folds to a literal
// verdict, (1=1) or (0=1); anything else re-emits as 0 <op> diff with the
// difference carried as a transient polynomial token.
func foldComparison(op ast.Operation, left, right poly.Polynomial) []ast.Token {
	if op == ast.OpGreater {
		op = ast.OpLess
		left, right = right, left
	}
	diff := right.Sub(left)
	if diff.IsConstant() {
		c := diff.ConstantTerm()
		verdict := 0
		if (op == ast.OpEqual && c == 0) || (op == ast.OpLess && c > 0) {
			verdict = 1
		}
		return []ast.Token{ast.NewNumber(verdict), ast.NewNumber(1), ast.NewOperation(ast.OpEqual)}
	}
	return []ast.Token{
		ast.NewPolynomial([]int{0}),
		ast.NewPolynomial(diff.Coefficients()),
		ast.NewOperation(op),
	}
}

// expand replaces transient polynomial tokens with their term emission so
// the final predicate consists of ordinary tokens only.
func expand(tokens []ast.Token) []ast.Token {
	out := make([]ast.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind() == ast.TokenPolynomial {
			out = append(out, poly.New(t.AsCoefficients()...).Tokens()...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// alwaysTrue is the default predicate for chains without filters.
func alwaysTrue() []ast.Token {
	return []ast.Token{ast.NewNumber(1), ast.NewNumber(1), ast.NewOperation(ast.OpEqual)}
}
