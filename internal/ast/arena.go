package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is dense 1-based storage typed by its index class; index 0 is
// the invalid sentinel for every node class.
type Arena[ID ~uint32, T any] struct {
	data []T
}

func NewArena[ID ~uint32, T any](capHint uint) *Arena[ID, T] {
	return &Arena[ID, T]{
		data: make([]T, 0, capHint),
	}
}

// Allocate appends value and returns its 1-based index.
func (a *Arena[ID, T]) Allocate(value T) ID {
	a.data = append(a.data, value)
	idx, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	return ID(idx)
}

func (a *Arena[ID, T]) Get(id ID) *T {
	if id == 0 || int(id) > len(a.data) {
		return nil
	}
	return &a.data[id-1]
}

// Slice exposes the backing storage for read-only scans and the codec.
func (a *Arena[ID, T]) Slice() []T {
	return a.data
}

// SetSlice replaces the backing storage; used when decoding an astpack.
func (a *Arena[ID, T]) SetSlice(data []T) {
	a.data = data
}

func (a *Arena[ID, T]) Len() uint32 {
	return uint32(len(a.data))
}
