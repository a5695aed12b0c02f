package mdf

import "fmt"

// Token is an opaque, immutable carrier for exactly one value of some
// runtime-determined type. It corresponds to mdf::Token / mdf::Value<T> in
// the original C++ source: there the erasure is a virtual base class with a
// templated subclass and a dynamic downcast; here it is a boxed `any` with
// a generic recover function, since Go has no runtime template
// instantiation to mirror the original 1:1.
//
// Tokens are shared by value: copying a Token copies the box, not the
// underlying value, so multiple downstream InstructionStates can hold the
// same Token cheaply and concurrently without any explicit refcounting —
// Go's garbage collector keeps the boxed value alive for as long as any
// Token still references it.
type Token struct {
	value any
}

// WrapValue boxes v into a fresh Token.
func WrapValue[T any](v T) Token {
	return Token{value: v}
}

// Value returns the token's dynamically-typed payload, for callers (such as
// a Drainer) that must inspect it without knowing T ahead of time.
func (t Token) Value() any {
	return t.value
}

// IsZero reports whether the token was never assigned a value (the zero
// Token{}), as opposed to one that legitimately wraps a zero value like 0
// or "".
func (t Token) IsZero() bool {
	return t.value == nil
}

// recoverValue downcasts a Token to T, reporting a *TypeMismatchError
// scoped to nodeID/param on failure. This is the Go analogue of the C++
// dynamic_pointer_cast<Value<T>> failure path.
func recoverValue[T any](tok Token, nodeID NodeId, param string) (T, error) {
	v, ok := tok.value.(T)
	if !ok {
		var zero T
		return zero, &TypeMismatchError{
			NodeID:   nodeID,
			Param:    param,
			Declared: fmt.Sprintf("%T", zero),
			Actual:   fmt.Sprintf("%T", tok.value),
		}
	}
	return v, nil
}
