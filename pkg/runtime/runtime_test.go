package runtime

import (
	"testing"

	"github.com/serjsysoev/pipefold/pkg/ast"
	"github.com/serjsysoev/pipefold/pkg/parser"
)

func apply(t *testing.T, source string, element int) (int, bool) {
	t.Helper()
	chain, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	value, kept, err := Apply(chain, element)
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	return value, kept
}

func TestApplyMap(t *testing.T) {
	tests := []struct {
		source  string
		element int
		want    int
	}{
		{"map{element}", 5, 5},
		{"map{42}", 5, 42},
		{"map{(element+7)}", 2, 9},
		{"map{(element-7)}", 2, -5},
		{"map{(7-element)}", 2, 5},
		{"map{(element*element)}", -4, 16},
		{"map{((element+10)*(element+10))}", -10, 0},
		{"map{(element+1)}%>%map{(element*element)}", 2, 9},
		{"map{-7}", 0, -7},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			value, kept := apply(t, tt.source, tt.element)
			if !kept {
				t.Fatal("map-only chain must keep every element")
			}
			if value != tt.want {
				t.Errorf("got %d, want %d", value, tt.want)
			}
		})
	}
}

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		source  string
		element int
		kept    bool
	}{
		{"filter{(element>1)}", 2, true},
		{"filter{(element>1)}", 1, false},
		{"filter{(element<1)}", 0, true},
		{"filter{(element=4)}", 4, true},
		{"filter{(element=4)}", 5, false},
		{"filter{((element>1)&(element<5))}", 3, true},
		{"filter{((element>1)&(element<5))}", 1, false},
		{"filter{((element>1)&(element<5))}", 7, false},
		{"filter{((element<1)|(element>5))}", 0, true},
		{"filter{((element<1)|(element>5))}", 3, false},
		{"filter{((element<1)|(element>5))}", 9, true},
		{"filter{(1=1)}", 123, true},
		{"filter{(0=1)}", 123, false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if _, kept := apply(t, tt.source, tt.element); kept != tt.kept {
				t.Errorf("element %d: kept = %v, want %v", tt.element, kept, tt.kept)
			}
		})
	}
}

func TestApplyThreadsValues(t *testing.T) {
	source := "map{(element+1)}%>%filter{(element>3)}%>%map{(element*element)}"

	value, kept := apply(t, source, 3)
	if !kept || value != 16 {
		t.Errorf("element 3: got %d/%v, want 16/true", value, kept)
	}

	if _, kept := apply(t, source, 2); kept {
		t.Error("element 2 should be dropped after the first map")
	}
}

func TestApplyFilterShortCircuits(t *testing.T) {
	// The second filter would keep 0, but the first drops it before the
	// map between them runs.
	source := "filter{(element>1)}%>%map{(element*0)}%>%filter{(element=0)}"

	if _, kept := apply(t, source, 0); kept {
		t.Error("dropped element must not reach later calls")
	}
	if _, kept := apply(t, source, 5); !kept {
		t.Error("element 5 passes both filters")
	}
}

func TestApplyMalformedChain(t *testing.T) {
	call, err := ast.NewCall(ast.CallMap, ast.NewExpression(
		ast.NewNumber(1), ast.NewNumber(2),
	))
	if err != nil {
		t.Fatalf("building call: %v", err)
	}

	if _, _, err := Apply(ast.CallChain{call}, 0); !ast.IsInternalError(err) {
		t.Errorf("expected malformed-chain error, got %v", err)
	}
}

func TestApplyEmptyChain(t *testing.T) {
	value, kept, err := Apply(ast.CallChain{}, 7)
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if !kept || value != 7 {
		t.Errorf("empty chain should pass the element through, got %d/%v", value, kept)
	}
}
