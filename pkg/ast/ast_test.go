package ast

import (
	"testing"
)

func TestOperationFor(t *testing.T) {
	tests := []struct {
		c    byte
		want Operation
		ok   bool
	}{
		{'+', OpPlus, true},
		{'-', OpMinus, true},
		{'*', OpMultiply, true},
		{'<', OpLess, true},
		{'>', OpGreater, true},
		{'=', OpEqual, true},
		{'&', OpAnd, true},
		{'|', OpOr, true},
		{'/', 0, false},
		{'x', 0, false},
		{'(', 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			op, ok := OperationFor(tt.c)
			if ok != tt.ok {
				t.Fatalf("OperationFor(%q) ok = %v, want %v", tt.c, ok, tt.ok)
			}
			if ok && op != tt.want {
				t.Errorf("OperationFor(%q) = %v, want %v", tt.c, op, tt.want)
			}
		})
	}
}

func TestOperationTypes(t *testing.T) {
	tests := []struct {
		op          Operation
		operandType ExprType
		resultType  ExprType
	}{
		{OpPlus, Arithmetic, Arithmetic},
		{OpMinus, Arithmetic, Arithmetic},
		{OpMultiply, Arithmetic, Arithmetic},
		{OpLess, Arithmetic, Boolean},
		{OpGreater, Arithmetic, Boolean},
		{OpEqual, Arithmetic, Boolean},
		{OpAnd, Boolean, Boolean},
		{OpOr, Boolean, Boolean},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.OperandType(); got != tt.operandType {
				t.Errorf("OperandType() = %v, want %v", got, tt.operandType)
			}
			if got := tt.op.ResultType(); got != tt.resultType {
				t.Errorf("ResultType() = %v, want %v", got, tt.resultType)
			}
		})
	}
}

func TestCallTypeFor(t *testing.T) {
	if ct, ok := CallTypeFor("map"); !ok || ct != CallMap {
		t.Errorf("CallTypeFor(map) = %v, %v", ct, ok)
	}
	if ct, ok := CallTypeFor("filter"); !ok || ct != CallFilter {
		t.Errorf("CallTypeFor(filter) = %v, %v", ct, ok)
	}
	if _, ok := CallTypeFor("reduce"); ok {
		t.Error("CallTypeFor(reduce) should not resolve")
	}
	if _, ok := CallTypeFor("Map"); ok {
		t.Error("call keywords are case-sensitive")
	}
}

func TestExpressionType(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   ExprType
	}{
		{"number", []Token{NewNumber(5)}, Arithmetic},
		{"element", []Token{NewElement()}, Arithmetic},
		{"sum", []Token{NewElement(), NewNumber(1), NewOperation(OpPlus)}, Arithmetic},
		{"comparison", []Token{NewElement(), NewNumber(1), NewOperation(OpLess)}, Boolean},
		{"conjunction", []Token{
			NewNumber(1), NewNumber(1), NewOperation(OpEqual),
			NewNumber(0), NewNumber(1), NewOperation(OpEqual),
			NewOperation(OpAnd),
		}, Boolean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpression(tt.tokens...)
			if got := e.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewExpressionCopies(t *testing.T) {
	tokens := []Token{NewNumber(1), NewNumber(2), NewOperation(OpPlus)}
	e := NewExpression(tokens...)

	tokens[0] = NewNumber(99)
	if e.Tokens()[0].AsNumber() != 1 {
		t.Error("expression shares storage with the caller's slice")
	}
}

func TestNewPolynomialCopies(t *testing.T) {
	coeffs := []int{0, 1}
	tok := NewPolynomial(coeffs)

	coeffs[1] = 42
	if tok.AsCoefficients()[1] != 1 {
		t.Error("polynomial token shares storage with the caller's slice")
	}
}

func TestNewCall(t *testing.T) {
	arith := NewExpression(NewElement(), NewNumber(1), NewOperation(OpPlus))
	boolean := NewExpression(NewElement(), NewNumber(1), NewOperation(OpLess))

	if _, err := NewCall(CallMap, arith); err != nil {
		t.Errorf("map over arithmetic should build: %v", err)
	}
	if _, err := NewCall(CallFilter, boolean); err != nil {
		t.Errorf("filter over boolean should build: %v", err)
	}

	if _, err := NewCall(CallMap, boolean); !IsTypeError(err) {
		t.Errorf("map over boolean should be a type error, got %v", err)
	}
	if _, err := NewCall(CallFilter, arith); !IsTypeError(err) {
		t.Errorf("filter over arithmetic should be a type error, got %v", err)
	}
}

func TestErrorKinds(t *testing.T) {
	syntax := NewSyntaxError("bad token %q", "x")
	typeErr := NewTypeError("want %s", Boolean)
	internal := NewInternalError("stack underflow")

	if !IsSyntaxError(syntax) || IsSyntaxError(typeErr) || IsSyntaxError(internal) {
		t.Error("IsSyntaxError misclassifies")
	}
	if !IsTypeError(typeErr) || IsTypeError(syntax) || IsTypeError(internal) {
		t.Error("IsTypeError misclassifies")
	}
	if !IsInternalError(internal) || IsInternalError(syntax) || IsInternalError(typeErr) {
		t.Error("IsInternalError misclassifies")
	}

	if got := syntax.Error(); got != `syntax error: bad token "x"` {
		t.Errorf("syntax error text = %q", got)
	}
	if got := typeErr.Error(); got != "type error: want boolean" {
		t.Errorf("type error text = %q", got)
	}
	if got := internal.Error(); got != "malformed chain: stack underflow" {
		t.Errorf("internal error text = %q", got)
	}
}
