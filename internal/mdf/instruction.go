package mdf

import "reflect"

// ParamDecl is a (name, declared type) pair attached to an instruction
// parameter slot, mirroring mdf::ParamDecl<T> in the original source.
// Names must be unique within a single instruction; they are matched by
// string equality at firing time, never by position.
type ParamDecl struct {
	Name string
	Type reflect.Type
}

// Param declares a named parameter of static type T.
func Param[T any](name string) ParamDecl {
	var zero T
	return ParamDecl{Name: name, Type: reflect.TypeOf(&zero).Elem()}
}

// Instruction is the object-safe, scheduler-facing contract every node
// body must satisfy. It corresponds to the abstract mdf::Instruction base
// class; concrete instructions are produced by the arity-specific
// constructors below (Instr1..Instr4), which monomorphize the body via Go
// generics the way design note §9 option (a) recommends — the scheduler
// only ever sees this interface, while the body itself sees native
// argument types.
type Instruction interface {
	// Params returns the ordered parameter declarations. Its length is the
	// instruction's arity.
	Params() []ParamDecl
	// Execute binds inputs by declared name, invokes the body, and wraps
	// its return value into a fresh Token. nodeID is passed through purely
	// for error context.
	Execute(nodeID NodeId, inputs map[string]Token) (Token, error)
	// Clone returns a new Instruction sharing the same body — instruction
	// bodies are pure and stateless, so Clone need not deep-copy them; it
	// exists so Graph.Clone can hand each instance its own Instruction
	// value without nodes from different instances aliasing mutable state
	// (there is none here, but the hook matches mdf::Instruction::Clone).
	Clone() Instruction
}

func bind[T any](inputs map[string]Token, nodeID NodeId, decl ParamDecl) (T, error) {
	tok, ok := inputs[decl.Name]
	if !ok {
		var zero T
		return zero, &MissingPortError{NodeID: nodeID, Param: decl.Name}
	}
	return recoverValue[T](tok, nodeID, decl.Name)
}

// Instr1 builds a single-input instruction.
func Instr1[A, R any](fn func(A) R, a ParamDecl) Instruction {
	return &instr1[A, R]{fn: fn, a: a}
}

type instr1[A, R any] struct {
	fn func(A) R
	a  ParamDecl
}

func (i *instr1[A, R]) Params() []ParamDecl { return []ParamDecl{i.a} }

func (i *instr1[A, R]) Execute(nodeID NodeId, inputs map[string]Token) (Token, error) {
	av, err := bind[A](inputs, nodeID, i.a)
	if err != nil {
		return Token{}, err
	}
	return WrapValue(i.fn(av)), nil
}

func (i *instr1[A, R]) Clone() Instruction { c := *i; return &c }

// Instr2 builds a two-input instruction.
func Instr2[A, B, R any](fn func(A, B) R, a, b ParamDecl) Instruction {
	return &instr2[A, B, R]{fn: fn, a: a, b: b}
}

type instr2[A, B, R any] struct {
	fn   func(A, B) R
	a, b ParamDecl
}

func (i *instr2[A, B, R]) Params() []ParamDecl { return []ParamDecl{i.a, i.b} }

func (i *instr2[A, B, R]) Execute(nodeID NodeId, inputs map[string]Token) (Token, error) {
	av, err := bind[A](inputs, nodeID, i.a)
	if err != nil {
		return Token{}, err
	}
	bv, err := bind[B](inputs, nodeID, i.b)
	if err != nil {
		return Token{}, err
	}
	return WrapValue(i.fn(av, bv)), nil
}

func (i *instr2[A, B, R]) Clone() Instruction { c := *i; return &c }

// Instr3 builds a three-input instruction.
func Instr3[A, B, C, R any](fn func(A, B, C) R, a, b, c ParamDecl) Instruction {
	return &instr3[A, B, C, R]{fn: fn, a: a, b: b, c: c}
}

type instr3[A, B, C, R any] struct {
	fn      func(A, B, C) R
	a, b, c ParamDecl
}

func (i *instr3[A, B, C, R]) Params() []ParamDecl { return []ParamDecl{i.a, i.b, i.c} }

func (i *instr3[A, B, C, R]) Execute(nodeID NodeId, inputs map[string]Token) (Token, error) {
	av, err := bind[A](inputs, nodeID, i.a)
	if err != nil {
		return Token{}, err
	}
	bv, err := bind[B](inputs, nodeID, i.b)
	if err != nil {
		return Token{}, err
	}
	cv, err := bind[C](inputs, nodeID, i.c)
	if err != nil {
		return Token{}, err
	}
	return WrapValue(i.fn(av, bv, cv)), nil
}

func (i *instr3[A, B, C, R]) Clone() Instruction { c := *i; return &c }

// Instr4 builds a four-input instruction — the widest arity the example
// workloads need (examples/dependencies.cpp's row-multiply node takes
// mat, vec, out, nrows).
func Instr4[A, B, C, D, R any](fn func(A, B, C, D) R, a, b, c, d ParamDecl) Instruction {
	return &instr4[A, B, C, D, R]{fn: fn, a: a, b: b, c: c, d: d}
}

type instr4[A, B, C, D, R any] struct {
	fn         func(A, B, C, D) R
	a, b, c, d ParamDecl
}

func (i *instr4[A, B, C, D, R]) Params() []ParamDecl { return []ParamDecl{i.a, i.b, i.c, i.d} }

func (i *instr4[A, B, C, D, R]) Execute(nodeID NodeId, inputs map[string]Token) (Token, error) {
	av, err := bind[A](inputs, nodeID, i.a)
	if err != nil {
		return Token{}, err
	}
	bv, err := bind[B](inputs, nodeID, i.b)
	if err != nil {
		return Token{}, err
	}
	cv, err := bind[C](inputs, nodeID, i.c)
	if err != nil {
		return Token{}, err
	}
	dv, err := bind[D](inputs, nodeID, i.d)
	if err != nil {
		return Token{}, err
	}
	return WrapValue(i.fn(av, bv, cv, dv)), nil
}

func (i *instr4[A, B, C, D, R]) Clone() Instruction { c := *i; return &c }

// InstrN builds an instruction of arbitrary arity operating on raw Tokens,
// for nodes whose arity exceeds Instr1..Instr4's four named slots (e.g. a
// fan-in sink with a dozen independent sources). Instr1..Instr4 should be
// preferred whenever arity is four or fewer, since they give the body
// native argument types instead of manual per-port binding.
func InstrN(params []ParamDecl, fn func(nodeID NodeId, inputs map[string]Token) (Token, error)) Instruction {
	return &instrN{params: params, fn: fn}
}

type instrN struct {
	params []ParamDecl
	fn     func(NodeId, map[string]Token) (Token, error)
}

func (i *instrN) Params() []ParamDecl { return i.params }

func (i *instrN) Execute(nodeID NodeId, inputs map[string]Token) (Token, error) {
	return i.fn(nodeID, inputs)
}

func (i *instrN) Clone() Instruction { c := *i; return &c }
