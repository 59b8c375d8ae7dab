// Package ast defines the call-chain model: map/filter calls over postfix
// expressions built from numbers, the element variable, and eight binary
// operations, plus the typed error kinds shared by the parser and rewriter.
package ast

// ChainSeparator joins calls in the concrete syntax.
const ChainSeparator = "%>%"

// ElementLiteral is the single admissible identifier inside expressions.
const ElementLiteral = "element"

// ExprType is the static type of an expression: every expression is either
// arithmetic (integer-valued) or boolean. There are no other types.
type ExprType int

const (
	Arithmetic ExprType = iota
	Boolean
)

// String returns the type name used in error messages.
func (t ExprType) String() string {
	switch t {
	case Arithmetic:
		return "arithmetic"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Operation is one of the eight binary operations of the language.
type Operation int

const (
	OpPlus     Operation = iota // +
	OpMinus                     // -
	OpMultiply                  // *
	OpLess                      // <
	OpGreater                   // >
	OpEqual                     // =
	OpAnd                       // &
	OpOr                        // |
)

// operationByChar is the module-level lookup table from an operation
// character to its Operation. The parser scans raw bytes against it.
var operationByChar = map[byte]Operation{
	'+': OpPlus,
	'-': OpMinus,
	'*': OpMultiply,
	'<': OpLess,
	'>': OpGreater,
	'=': OpEqual,
	'&': OpAnd,
	'|': OpOr,
}

// OperationFor returns the Operation for an operation character.
func OperationFor(c byte) (Operation, bool) {
	op, ok := operationByChar[c]
	return op, ok
}

// String returns the operation's concrete-syntax character.
func (op Operation) String() string {
	switch op {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMultiply:
		return "*"
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpEqual:
		return "="
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	default:
		return "?"
	}
}

// OperandType returns the type both operands of the operation must have.
func (op Operation) OperandType() ExprType {
	if op == OpAnd || op == OpOr {
		return Boolean
	}
	return Arithmetic
}

// ResultType returns the type an application of the operation produces.
// Plus, minus, and multiply produce arithmetic values; the comparisons and
// the logical operations produce boolean values.
func (op Operation) ResultType() ExprType {
	switch op {
	case OpPlus, OpMinus, OpMultiply:
		return Arithmetic
	default:
		return Boolean
	}
}

// CallType distinguishes map calls from filter calls.
type CallType int

const (
	CallMap CallType = iota
	CallFilter
)

// callTypeByName is the module-level lookup table from a call keyword to
// its CallType.
var callTypeByName = map[string]CallType{
	"map":    CallMap,
	"filter": CallFilter,
}

// CallTypeFor returns the CallType for a call keyword.
func CallTypeFor(name string) (CallType, bool) {
	ct, ok := callTypeByName[name]
	return ct, ok
}

// String returns the call keyword.
func (ct CallType) String() string {
	switch ct {
	case CallMap:
		return "map"
	case CallFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// OperandType returns the expression type the call requires: map calls take
// an arithmetic expression, filter calls a boolean one.
func (ct CallType) OperandType() ExprType {
	if ct == CallFilter {
		return Boolean
	}
	return Arithmetic
}

// TokenKind discriminates the token union.
type TokenKind int

const (
	TokenNumber  TokenKind = iota // integer literal
	TokenElement                  // the element variable
	TokenOperation
	// TokenPolynomial carries a whole polynomial as a single operand. It
	// never appears in parser output and exists only inside the rewriter;
	// the serializer rejects it.
	TokenPolynomial
)

// String returns a debug-friendly name for the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenElement:
		return "element"
	case TokenOperation:
		return "operation"
	case TokenPolynomial:
		return "polynomial"
	default:
		return "unknown"
	}
}

// Token is one postfix token. It is a tagged union over the four kinds;
// only the accessor matching the kind returns meaningful data.
type Token struct {
	kind   TokenKind
	num    int
	op     Operation
	coeffs []int
}

// NewNumber creates an integer literal token. Arithmetic on numbers uses
// the platform-default signed integer; overflow wraps silently.
func NewNumber(n int) Token {
	return Token{kind: TokenNumber, num: n}
}

// NewElement creates an element-variable token.
func NewElement() Token {
	return Token{kind: TokenElement}
}

// NewOperation creates an operation token.
func NewOperation(op Operation) Token {
	return Token{kind: TokenOperation, op: op}
}

// NewPolynomial creates a transient polynomial token from coefficients in
// ascending order of power. The slice is copied.
func NewPolynomial(coeffs []int) Token {
	c := make([]int, len(coeffs))
	copy(c, coeffs)
	return Token{kind: TokenPolynomial, coeffs: c}
}

// Kind returns the token's kind.
func (t Token) Kind() TokenKind { return t.kind }

// AsNumber returns the literal value of a number token.
func (t Token) AsNumber() int { return t.num }

// AsOperation returns the operation of an operation token.
func (t Token) AsOperation() Operation { return t.op }

// AsCoefficients returns the coefficient vector of a polynomial token.
// Callers must not modify the returned slice.
func (t Token) AsCoefficients() []int { return t.coeffs }

// Type returns the expression type the token produces: operations produce
// their result type, everything else is arithmetic.
func (t Token) Type() ExprType {
	if t.kind == TokenOperation {
		return t.op.ResultType()
	}
	return Arithmetic
}

// Expression is an immutable postfix token sequence. Its type is the
// produced type of its final token.
type Expression struct {
	tokens []Token
}

// NewExpression builds an expression from postfix tokens. The slice is
// copied; expressions never change after construction.
func NewExpression(tokens ...Token) Expression {
	ts := make([]Token, len(tokens))
	copy(ts, tokens)
	return Expression{tokens: ts}
}

// Tokens returns the postfix token sequence. Callers must not modify it.
func (e Expression) Tokens() []Token { return e.tokens }

// Type returns the expression's static type.
func (e Expression) Type() ExprType {
	if len(e.tokens) == 0 {
		return Arithmetic
	}
	return e.tokens[len(e.tokens)-1].Type()
}

// Call is a single map or filter call.
type Call struct {
	kind CallType
	expr Expression
}

// NewCall builds a call, enforcing that the expression's type matches the
// call type: map requires arithmetic, filter requires boolean.
func NewCall(kind CallType, expr Expression) (Call, error) {
	if got, want := expr.Type(), kind.OperandType(); got != want {
		return Call{}, NewTypeError("%s call requires a %s expression, got %s", kind, want, got)
	}
	return Call{kind: kind, expr: expr}, nil
}

// Kind returns the call type.
func (c Call) Kind() CallType { return c.kind }

// Expr returns the call's expression.
func (c Call) Expr() Expression { return c.expr }

// CallChain is a sequence of calls joined by the chain separator.
type CallChain []Call
