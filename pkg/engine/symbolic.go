package engine

import (
	"fmt"
	"sync"

	"github.com/mlindahl/layernet/pkg/errors"
)

// Op identifies the kind of a symbolic expression node.
type Op string

// Symbolic expression node kinds.
const (
	OpPlaceholder Op = "placeholder"
	OpApply       Op = "apply"
	OpMerge       Op = "merge"
)

// Expr is a node in a symbolic expression tree. It records structure only:
// which operation produced it, from which operands, and with what shape.
type Expr struct {
	Op         Op
	Name       string // placeholder name, empty otherwise
	Activation string // apply activation tag, empty otherwise
	Inputs     []*Expr
	shape      Shape
}

// Shape implements [Handle].
func (e *Expr) Shape() Shape { return e.shape }

// String renders the expression for debugging, e.g.
// "apply[relu](merge(placeholder(i1), placeholder(i2)))".
func (e *Expr) String() string {
	switch e.Op {
	case OpPlaceholder:
		return fmt.Sprintf("placeholder(%s)", e.Name)
	case OpApply:
		tag := e.Activation
		if tag == "" {
			tag = "linear"
		}
		return fmt.Sprintf("apply[%s](%s)", tag, e.Inputs[0])
	case OpMerge:
		s := "merge("
		for i, in := range e.Inputs {
			if i > 0 {
				s += ", "
			}
			s += in.String()
		}
		return s + ")"
	}
	return string(e.Op)
}

// Counters tracks how many graph constructions an engine has performed.
// Tests use these to prove that memoized compilations are not rebuilt.
type Counters struct {
	Placeholders int
	Applies      int
	Merges       int
	Compiles     int
}

// Symbolic is an [Engine] that builds expression trees instead of numeric
// kernels. It enforces the same structural rules a real backend would:
// merge operands must share rank and leading dimensions.
//
// Symbolic is safe for concurrent use; a mutex guards the counters.
type Symbolic struct {
	mu       sync.Mutex
	counters Counters
}

// NewSymbolic creates a symbolic engine.
func NewSymbolic() *Symbolic {
	return &Symbolic{}
}

// Counters returns a snapshot of the construction counters.
func (s *Symbolic) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// Placeholder implements [Engine].
func (s *Symbolic) Placeholder(name string, shape Shape) (Handle, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "placeholder %q", name)
	}
	s.mu.Lock()
	s.counters.Placeholders++
	s.mu.Unlock()
	return &Expr{Op: OpPlaceholder, Name: name, shape: shape.Clone()}, nil
}

// Apply implements [Engine].
func (s *Symbolic) Apply(in Handle, activation string, shape Shape) (Handle, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "apply with nil input handle")
	}
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "apply")
	}
	expr, err := s.expr(in)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.counters.Applies++
	s.mu.Unlock()
	return &Expr{Op: OpApply, Activation: activation, Inputs: []*Expr{expr}, shape: shape.Clone()}, nil
}

// Merge implements [Engine]. Operand shapes must share rank and leading
// dimensions; the feature axis is summed. A wildcard feature dimension in
// any operand makes the result's feature dimension a wildcard.
func (s *Symbolic) Merge(ins []Handle) (Handle, error) {
	if len(ins) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "merge with no operands")
	}
	if len(ins) == 1 {
		return ins[0], nil
	}

	exprs := make([]*Expr, len(ins))
	for i, in := range ins {
		expr, err := s.expr(in)
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}

	shape, err := mergedShape(ins)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.counters.Merges++
	s.mu.Unlock()
	return &Expr{Op: OpMerge, Inputs: exprs, shape: shape}, nil
}

// Compile implements [Engine].
func (s *Symbolic) Compile(inputs, outputs []Handle) (Executable, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "compile needs at least one input and one output")
	}
	exe := &symbolicExecutable{
		inputs:  make([]Shape, len(inputs)),
		outputs: make([]Shape, len(outputs)),
	}
	for i, in := range inputs {
		exe.inputs[i] = in.Shape().Clone()
	}
	for i, out := range outputs {
		exe.outputs[i] = out.Shape().Clone()
	}
	s.mu.Lock()
	s.counters.Compiles++
	s.mu.Unlock()
	return exe, nil
}

// expr asserts that a handle was produced by this engine family.
func (s *Symbolic) expr(h Handle) (*Expr, error) {
	expr, ok := h.(*Expr)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "foreign handle %T", h)
	}
	return expr, nil
}

// mergedShape computes the concatenated shape of the operands.
func mergedShape(ins []Handle) (Shape, error) {
	first := ins[0].Shape()
	if len(first) == 0 {
		return nil, errors.New(errors.ErrCodeMergeIncompatible, "merge operand has empty shape")
	}

	out := first.Clone()
	feature := first[len(first)-1]
	for _, in := range ins[1:] {
		shape := in.Shape()
		if len(shape) != len(first) {
			return nil, errors.New(errors.ErrCodeMergeIncompatible,
				"rank mismatch: %s vs %s", first, shape)
		}
		for i := 0; i < len(shape)-1; i++ {
			if shape[i] != first[i] && shape[i] != 0 && first[i] != 0 {
				return nil, errors.New(errors.ErrCodeMergeIncompatible,
					"leading dimensions differ: %s vs %s", first, shape)
			}
		}
		if feature == 0 || shape[len(shape)-1] == 0 {
			feature = 0
		} else {
			feature += shape[len(shape)-1]
		}
	}
	out[len(out)-1] = feature
	return out, nil
}

type symbolicExecutable struct {
	inputs  []Shape
	outputs []Shape
}

func (e *symbolicExecutable) InputShapes() []Shape  { return e.inputs }
func (e *symbolicExecutable) OutputShapes() []Shape { return e.outputs }

// Ensure Symbolic implements Engine.
var _ Engine = (*Symbolic)(nil)
