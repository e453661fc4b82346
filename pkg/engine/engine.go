// Package engine defines the boundary to the tensor-compute backend.
//
// layernet prepares and caches the structure of computation graphs; it never
// performs numeric work itself. Everything numeric happens behind the
// [Engine] interface: creating input placeholders, applying a layer's
// transformation, merging multiple upstream branches, and compiling a set of
// input/output handles into an executable graph.
//
// The package ships one implementation, [Symbolic], which builds structural
// expression trees instead of numeric kernels. It is used by the CLI and the
// tests, and doubles as a reference for wiring a real backend.
package engine

import (
	"fmt"
	"strings"
)

// Shape is a semantic tensor shape. Dimensions are positive integers; a zero
// dimension is the "unspecified" wildcard and matches any size.
type Shape []int

// Validate returns an error if any dimension is negative.
func (s Shape) Validate() error {
	for _, d := range s {
		if d < 0 {
			return fmt.Errorf("negative dimension %d in shape %s", d, s)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions.
// Wildcards only match wildcards; use Compatible for unification.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Compatible reports whether two shapes unify: same rank, and every pair of
// dimensions is equal or at least one side is the wildcard.
func (s Shape) Compatible(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] && s[i] != 0 && o[i] != 0 {
			return false
		}
	}
	return true
}

// String renders the shape as "(2, 5)"; wildcards render as "?".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d == 0 {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprintf("%d", d)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Handle is an opaque reference to a node in a computation graph under
// construction. Handles are produced and owned by an Engine; layernet only
// passes them back into the same engine.
type Handle interface {
	// Shape returns the output shape of the computation this handle denotes.
	Shape() Shape
}

// Executable is a compiled computation graph segment with fixed positional
// inputs and outputs.
type Executable interface {
	InputShapes() []Shape
	OutputShapes() []Shape
}

// Engine is the required capability set of a compute backend.
//
// Merge has concatenation semantics along the feature (last) axis: all
// operand shapes must agree on rank and leading dimensions. Implementations
// report incompatible operands with a MERGE_INCOMPATIBLE error.
type Engine interface {
	// Placeholder creates a named input of the given shape.
	Placeholder(name string, shape Shape) (Handle, error)

	// Apply composes a layer's own transformation onto in, producing a
	// handle of the layer's declared shape. The activation tag may be empty.
	Apply(in Handle, activation string, shape Shape) (Handle, error)

	// Merge concatenates the operands along the feature axis, in order.
	Merge(ins []Handle) (Handle, error)

	// Compile freezes ordered inputs and outputs into an executable graph.
	Compile(inputs, outputs []Handle) (Executable, error)
}
