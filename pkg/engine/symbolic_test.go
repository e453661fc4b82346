package engine

import (
	"testing"

	"github.com/mlindahl/layernet/pkg/errors"
)

func TestShapeCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b Shape
		want bool
	}{
		{"Equal", Shape{2, 3}, Shape{2, 3}, true},
		{"WildcardLeft", Shape{0, 3}, Shape{2, 3}, true},
		{"WildcardRight", Shape{2, 3}, Shape{2, 0}, true},
		{"RankMismatch", Shape{2}, Shape{2, 3}, false},
		{"DimMismatch", Shape{2, 3}, Shape{4, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compatible(tt.b); got != tt.want {
				t.Errorf("Compatible(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestShapeString(t *testing.T) {
	if got := (Shape{2, 0, 5}).String(); got != "(2, ?, 5)" {
		t.Errorf("String = %q, want (2, ?, 5)", got)
	}
}

func TestMergeShapes(t *testing.T) {
	tests := []struct {
		name   string
		shapes []Shape
		want   Shape
		code   errors.Code
	}{
		{"TwoVectors", []Shape{{1}, {1}}, Shape{2}, ""},
		{"ThreeVectors", []Shape{{2}, {3}, {4}}, Shape{9}, ""},
		{"Matrices", []Shape{{8, 2}, {8, 5}}, Shape{8, 7}, ""},
		{"WildcardFeature", []Shape{{2}, {0}}, Shape{0}, ""},
		{"WildcardLeading", []Shape{{0, 2}, {8, 5}}, Shape{0, 7}, ""},
		{"RankMismatch", []Shape{{2}, {2, 3}}, nil, errors.ErrCodeMergeIncompatible},
		{"LeadingMismatch", []Shape{{4, 2}, {8, 5}}, nil, errors.ErrCodeMergeIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewSymbolic()
			handles := make([]Handle, len(tt.shapes))
			for i, s := range tt.shapes {
				h, err := eng.Placeholder("p", s)
				if err != nil {
					t.Fatalf("Placeholder: %v", err)
				}
				handles[i] = h
			}

			merged, err := eng.Merge(handles)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("Merge: got %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if !merged.Shape().Equal(tt.want) {
				t.Errorf("merged shape = %s, want %s", merged.Shape(), tt.want)
			}
		})
	}
}

func TestMergeSingleOperandIsIdentity(t *testing.T) {
	eng := NewSymbolic()
	h, _ := eng.Placeholder("x", Shape{3})

	merged, err := eng.Merge([]Handle{h})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged != h {
		t.Error("single-operand merge should return the operand unchanged")
	}
	if eng.Counters().Merges != 0 {
		t.Errorf("merges = %d, want 0", eng.Counters().Merges)
	}
}

func TestCounters(t *testing.T) {
	eng := NewSymbolic()
	a, _ := eng.Placeholder("a", Shape{2})
	b, _ := eng.Apply(a, "relu", Shape{5})
	if _, err := eng.Compile([]Handle{a}, []Handle{b}); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	got := eng.Counters()
	want := Counters{Placeholders: 1, Applies: 1, Merges: 0, Compiles: 1}
	if got != want {
		t.Errorf("counters = %+v, want %+v", got, want)
	}
}

func TestExprString(t *testing.T) {
	eng := NewSymbolic()
	a, _ := eng.Placeholder("i1", Shape{1})
	b, _ := eng.Placeholder("i2", Shape{1})
	m, _ := eng.Merge([]Handle{a, b})
	out, _ := eng.Apply(m, "relu", Shape{2})

	want := "apply[relu](merge(placeholder(i1), placeholder(i2)))"
	if got := out.(*Expr).String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestApplyRejectsNegativeShape(t *testing.T) {
	eng := NewSymbolic()
	a, _ := eng.Placeholder("a", Shape{2})
	if _, err := eng.Apply(a, "", Shape{-1}); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("Apply: got %v, want INVALID_SHAPE", err)
	}
}
