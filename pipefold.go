// Package pipefold parses, evaluates, and canonicalizes call chains: small
// map{...}/filter{...} pipelines over a single integer element, joined by
// the %>% separator.
//
// Any valid chain rewrites to an equivalent two-call form, one filter on
// the original element followed by one map:
//
//	out, err := pipefold.Optimize("filter{(element>1)}%>%map{(element+7)}")
//	// out == "filter{(0<(element-1))}%>%map{(element+7)}"
//
// Errors classify into exactly three kinds: syntax errors (input does not
// match the grammar), type errors (grammatical input that violates the
// two-type system), and malformed-chain internal errors, which only
// hand-built chains can trigger. Use IsSyntaxError, IsTypeError, and
// IsInternalError to tell them apart.
//
// The building blocks live in the subpackages:
//   - Parser: github.com/serjsysoev/pipefold/pkg/parser
//   - Rewriter: github.com/serjsysoev/pipefold/pkg/optimizer
//   - Evaluator: github.com/serjsysoev/pipefold/pkg/runtime
//   - Model: github.com/serjsysoev/pipefold/pkg/ast
package pipefold

import (
	"github.com/serjsysoev/pipefold/pkg/ast"
	"github.com/serjsysoev/pipefold/pkg/optimizer"
	"github.com/serjsysoev/pipefold/pkg/parser"
	"github.com/serjsysoev/pipefold/pkg/runtime"
)

// Parse parses chain source text into its AST form.
func Parse(input string) (ast.CallChain, error) {
	return parser.Parse(input)
}

// Optimize parses input and returns the canonical filter-then-map
// rendering of the chain.
func Optimize(input string) (string, error) {
	chain, err := parser.Parse(input)
	if err != nil {
		return "", err
	}
	folded, err := optimizer.Optimize(chain)
	if err != nil {
		return "", err
	}
	return folded.Render()
}

// MustOptimize is like Optimize but panics on error. Use it for
// chains known to be valid, typically in tests or package setup.
func MustOptimize(input string) string {
	out, err := Optimize(input)
	if err != nil {
		panic(err)
	}
	return out
}

// Apply parses input and runs it on one element. The boolean result
// reports whether the element survived every filter.
func Apply(input string, element int) (int, bool, error) {
	chain, err := parser.Parse(input)
	if err != nil {
		return 0, false, err
	}
	return runtime.Apply(chain, element)
}

// IsSyntaxError reports whether err is (or wraps) a syntax error.
func IsSyntaxError(err error) bool { return ast.IsSyntaxError(err) }

// IsTypeError reports whether err is (or wraps) a type error.
func IsTypeError(err error) bool { return ast.IsTypeError(err) }

// IsInternalError reports whether err is (or wraps) a malformed-chain
// internal error.
func IsInternalError(err error) bool { return ast.IsInternalError(err) }
