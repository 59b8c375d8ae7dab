package ast

import (
	"strconv"
	"strings"
)

// Render serializes the expression to its concrete syntax by walking the
// postfix tokens with a string stack: numbers and the element literal push
// themselves, an operation pops the right operand, then the left, and
// pushes "(left op right)". Anything but exactly one residual string, or a
// transient polynomial token reaching the serializer, is a malformed chain.
func (e Expression) Render() (string, error) {
	stack := make([]string, 0, len(e.tokens))
	for _, t := range e.tokens {
		switch t.Kind() {
		case TokenNumber:
			stack = append(stack, strconv.Itoa(t.AsNumber()))
		case TokenElement:
			stack = append(stack, ElementLiteral)
		case TokenOperation:
			if len(stack) < 2 {
				return "", NewInternalError("operation '%s' is missing operands", t.AsOperation())
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, "("+left+t.AsOperation().String()+right+")")
		default:
			return "", NewInternalError("%s token cannot be rendered", t.Kind())
		}
	}
	if len(stack) != 1 {
		return "", NewInternalError("expression left %d values on the stack, want 1", len(stack))
	}
	return stack[0], nil
}

// Render serializes the call as kind{expression}.
func (c Call) Render() (string, error) {
	expr, err := c.expr.Render()
	if err != nil {
		return "", err
	}
	return c.kind.String() + "{" + expr + "}", nil
}

// Render serializes the chain, joining call renders with the separator.
func (cc CallChain) Render() (string, error) {
	parts := make([]string, len(cc))
	for i, c := range cc {
		s, err := c.Render()
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ChainSeparator), nil
}

// String returns the rendered chain, or the empty string when the chain is
// malformed. Use Render to observe the error.
func (cc CallChain) String() string {
	s, err := cc.Render()
	if err != nil {
		return ""
	}
	return s
}
