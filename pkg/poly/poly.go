// Package poly implements the integer polynomial normal form the rewriter
// reduces arithmetic expressions to. A polynomial is a coefficient vector
// in ascending order of power; all arithmetic uses the platform-default
// signed integer and overflow wraps silently.
package poly

import (
	"github.com/serjsysoev/pipefold/pkg/ast"
)

// Polynomial is an immutable polynomial in one variable. The canonical
// form trims trailing zero coefficients down to a minimum length of one,
// so the zero polynomial is the single coefficient [0].
type Polynomial struct {
	coeffs []int
}

// New builds a polynomial from coefficients in ascending order of power.
// The input is copied and trimmed to canonical form; no coefficients at
// all yields the zero polynomial.
func New(coeffs ...int) Polynomial {
	if len(coeffs) == 0 {
		return Polynomial{coeffs: []int{0}}
	}
	c := make([]int, len(coeffs))
	copy(c, coeffs)
	return Polynomial{coeffs: trim(c)}
}

// Constant returns the degree-0 polynomial n.
func Constant(n int) Polynomial {
	return Polynomial{coeffs: []int{n}}
}

// Identity returns the polynomial x, the image of the element variable.
func Identity() Polynomial {
	return Polynomial{coeffs: []int{0, 1}}
}

func trim(coeffs []int) []int {
	n := len(coeffs)
	for n > 1 && coeffs[n-1] == 0 {
		n--
	}
	return coeffs[:n]
}

// Coefficients returns the canonical coefficient vector. Callers must not
// modify the returned slice.
func (p Polynomial) Coefficients() []int { return p.coeffs }

// Degree returns the polynomial's degree; constants have degree 0.
func (p Polynomial) Degree() int { return len(p.coeffs) - 1 }

// IsConstant reports whether the polynomial is a single coefficient.
func (p Polynomial) IsConstant() bool { return len(p.coeffs) == 1 }

// IsZero reports whether the polynomial is the zero polynomial.
func (p Polynomial) IsZero() bool { return len(p.coeffs) == 1 && p.coeffs[0] == 0 }

// ConstantTerm returns the degree-0 coefficient.
func (p Polynomial) ConstantTerm() int { return p.coeffs[0] }

// Equal reports whether two polynomials have identical canonical forms.
func (p Polynomial) Equal(q Polynomial) bool {
	if len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i, c := range p.coeffs {
		if q.coeffs[i] != c {
			return false
		}
	}
	return true
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	return p.combine(q, 1)
}

// Sub returns p - q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	return p.combine(q, -1)
}

func (p Polynomial) combine(q Polynomial, sign int) Polynomial {
	n := len(p.coeffs)
	if len(q.coeffs) > n {
		n = len(q.coeffs)
	}
	out := make([]int, n)
	for i := range out {
		var a, b int
		if i < len(p.coeffs) {
			a = p.coeffs[i]
		}
		if i < len(q.coeffs) {
			b = q.coeffs[i]
		}
		out[i] = a + sign*b
	}
	return Polynomial{coeffs: trim(out)}
}

// Mul returns p * q by coefficient convolution.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	out := make([]int, len(p.coeffs)+len(q.coeffs)-1)
	for i, a := range p.coeffs {
		for j, b := range q.coeffs {
			out[i+j] += a * b
		}
	}
	return Polynomial{coeffs: trim(out)}
}

// Eval evaluates the polynomial at x using Horner's scheme.
func (p Polynomial) Eval(x int) int {
	r := 0
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		r = r*x + p.coeffs[i]
	}
	return r
}

// FromExpression reduces a purely arithmetic expression to a polynomial.
func FromExpression(e ast.Expression) (Polynomial, error) {
	return FromTokens(e.Tokens())
}

// FromTokens evaluates a postfix token list with a polynomial stack:
// numbers become constants, the element variable becomes x, polynomial
// tokens pass through, and plus/minus/multiply combine. Any other
// operation, stack underflow, or more than one residual is a malformed
// chain.
func FromTokens(tokens []ast.Token) (Polynomial, error) {
	stack := make([]Polynomial, 0, len(tokens))
	for _, t := range tokens {
		switch t.Kind() {
		case ast.TokenNumber:
			stack = append(stack, Constant(t.AsNumber()))
		case ast.TokenElement:
			stack = append(stack, Identity())
		case ast.TokenPolynomial:
			stack = append(stack, New(t.AsCoefficients()...))
		case ast.TokenOperation:
			op := t.AsOperation()
			if len(stack) < 2 {
				return Polynomial{}, ast.NewInternalError("operation '%s' is missing operands", op)
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
			default:
				return Polynomial{}, ast.NewInternalError("operation '%s' has no polynomial form", op)
			}
		default:
			return Polynomial{}, ast.NewInternalError("%s token has no polynomial form", t.Kind())
		}
	}
	if len(stack) != 1 {
		return Polynomial{}, ast.NewInternalError("expression left %d polynomials on the stack, want 1", len(stack))
	}
	return stack[0], nil
}

// Tokens emits the polynomial as a postfix token run, terms from highest
// degree to lowest, skipping zero coefficients. A term of coefficient c
// and degree d repeats the element d times with a multiply after every
// factor that has a predecessor, prefixed by a number token for |c| unless
// |c| is 1 at degree above 0. Terms after the first join with plus, or
// with minus for a negative coefficient (printed positive); the leading
// term keeps its sign on its own literal. The zero polynomial is the
// single token 0.
func (p Polynomial) Tokens() []ast.Token {
	if p.IsZero() {
		return []ast.Token{ast.NewNumber(0)}
	}
	var tokens []ast.Token
	first := true
	for d := p.Degree(); d >= 0; d-- {
		c := p.coeffs[d]
		if c == 0 {
			continue
		}
		coeff := c
		if !first && coeff < 0 {
			coeff = -coeff
		}
		termEmpty := true
		if coeff != 1 || d == 0 {
			tokens = append(tokens, ast.NewNumber(coeff))
			termEmpty = false
		}
		for i := 0; i < d; i++ {
			tokens = append(tokens, ast.NewElement())
			if !termEmpty {
				tokens = append(tokens, ast.NewOperation(ast.OpMultiply))
			}
			termEmpty = false
		}
		if !first {
			join := ast.OpPlus
			if c < 0 {
				join = ast.OpMinus
			}
			tokens = append(tokens, ast.NewOperation(join))
		}
		first = false
	}
	return tokens
}

// ToExpression wraps Tokens in an Expression.
func (p Polynomial) ToExpression() ast.Expression {
	return ast.NewExpression(p.Tokens()...)
}

// String renders the polynomial in concrete syntax, e.g.
// ((element*element)+1).
func (p Polynomial) String() string {
	s, _ := p.ToExpression().Render()
	return s
}
