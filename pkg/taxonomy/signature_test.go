package taxonomy

import (
	"slices"
	"testing"
)

func TestNewSignature(t *testing.T) {
	s := NewSignature("b", "a", "b")
	if got := s.Labels(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Labels = %v, want [a b]", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if !s.Contains("a") || s.Contains("c") {
		t.Errorf("Contains: a=%v c=%v, want true false", s.Contains("a"), s.Contains("c"))
	}
}

func TestSignatureEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Signature
		want bool
	}{
		{"BothEmpty", NewSignature(), NewSignature(), true},
		{"OrderInsensitive", NewSignature("x", "y"), NewSignature("y", "x"), true},
		{"Different", NewSignature("x"), NewSignature("y"), false},
		{"SubsetNotEqual", NewSignature("x"), NewSignature("x", "y"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSignatureSubset(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Signature
		subset     bool
		strict     bool
	}{
		{"EmptyInEmpty", NewSignature(), NewSignature(), true, false},
		{"EmptyInAny", NewSignature(), NewSignature("x"), true, true},
		{"SelfNotStrict", NewSignature("x", "y"), NewSignature("x", "y"), true, false},
		{"Proper", NewSignature("x"), NewSignature("x", "y"), true, true},
		{"Disjoint", NewSignature("z"), NewSignature("x", "y"), false, false},
		{"Superset", NewSignature("x", "y"), NewSignature("x"), false, false},
		{"Interleaved", NewSignature("b", "d"), NewSignature("a", "b", "c", "d"), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Subset(tt.b); got != tt.subset {
				t.Errorf("Subset = %v, want %v", got, tt.subset)
			}
			if got := tt.a.StrictSubset(tt.b); got != tt.strict {
				t.Errorf("StrictSubset = %v, want %v", got, tt.strict)
			}
		})
	}
}

func TestSignatureKey(t *testing.T) {
	a := NewSignature("finding site", "associated morphology")
	b := NewSignature("associated morphology", "finding site")
	if a.Key() != b.Key() {
		t.Errorf("keys differ for equal signatures: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == NewSignature("finding site").Key() {
		t.Error("distinct signatures share a key")
	}
}

func TestSignatureString(t *testing.T) {
	if got := NewSignature().String(); got != "∅" {
		t.Errorf("empty String = %q, want ∅", got)
	}
	if got := NewSignature("b", "a").String(); got != "a, b" {
		t.Errorf("String = %q, want %q", got, "a, b")
	}
}
