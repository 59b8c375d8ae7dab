// Package runtime evaluates call chains on concrete element values. It is
// the reference semantics the rewriter preserves: a filter drops the
// element when its predicate is false, a map replaces the element with the
// expression's value.
package runtime

import (
	"github.com/serjsysoev/pipefold/pkg/ast"
)

// value is a tagged union over the two expression types.
type value struct {
	typ ast.ExprType
	n   int
	b   bool
}

// Apply runs the chain on one element. The boolean result reports whether
// the element survived every filter; when it is false the integer result
// is the value the element carried at the moment it was dropped.
func Apply(chain ast.CallChain, element int) (int, bool, error) {
	cur := element
	for _, call := range chain {
		v, err := evalExpression(call.Expr(), cur)
		if err != nil {
			return 0, false, err
		}
		switch call.Kind() {
		case ast.CallMap:
			if v.typ != ast.Arithmetic {
				return 0, false, ast.NewInternalError("map produced a %s value", v.typ)
			}
			cur = v.n
		case ast.CallFilter:
			if v.typ != ast.Boolean {
				return 0, false, ast.NewInternalError("filter produced a %s value", v.typ)
			}
			if !v.b {
				return cur, false, nil
			}
		default:
			return 0, false, ast.NewInternalError("unknown call type %d", call.Kind())
		}
	}
	return cur, true, nil
}

// evalExpression walks the postfix tokens with a value stack. Operand kind
// mismatches cannot occur on parser or rewriter output; they surface as
// malformed-chain errors for hand-built expressions.
func evalExpression(e ast.Expression, element int) (value, error) {
	stack := make([]value, 0, len(e.Tokens()))
	for _, t := range e.Tokens() {
		switch t.Kind() {
		case ast.TokenNumber:
			stack = append(stack, value{typ: ast.Arithmetic, n: t.AsNumber()})
		case ast.TokenElement:
			stack = append(stack, value{typ: ast.Arithmetic, n: element})
		case ast.TokenOperation:
			op := t.AsOperation()
			if len(stack) < 2 {
				return value{}, ast.NewInternalError("operation '%s' is missing operands", op)
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			if left.typ != op.OperandType() || right.typ != op.OperandType() {
				return value{}, ast.NewInternalError("operation '%s' applied to %s and %s operands", op, left.typ, right.typ)
			}
			out := value{typ: op.ResultType()}
			switch op {
			case ast.OpPlus:
				out.n = left.n + right.n
			case ast.OpMinus:
				out.n = left.n - right.n
			case ast.OpMultiply:
				out.n = left.n * right.n
			case ast.OpLess:
				out.b = left.n < right.n
			case ast.OpGreater:
				out.b = left.n > right.n
			case ast.OpEqual:
				out.b = left.n == right.n
			case ast.OpAnd:
				out.b = left.b && right.b
			case ast.OpOr:
				out.b = left.b || right.b
			}
			stack = append(stack, out)
		default:
			return value{}, ast.NewInternalError("%s token cannot be evaluated", t.Kind())
		}
	}
	if len(stack) != 1 {
		return value{}, ast.NewInternalError("expression left %d values on the stack, want 1", len(stack))
	}
	return stack[0], nil
}
