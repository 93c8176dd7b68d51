// Package structs implements helpers to generalize vectors of structs, as well as their serialization.
package structs

type Equatable[T any] interface {
	Equal(*T) bool
}

type Cloner[V any] interface {
	Clone() *V
}

type BinarySizer interface {
	BinarySize() int
}
