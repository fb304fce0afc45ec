package store

import (
	"fmt"
	"reflect"
)

// Cursor is a typed view of a node.
type Cursor[T any] struct {
	node *Node
}

func NewTyped[T any](initial T, opts ...Option) (*Store, Cursor[T]) {
	s := New(initial, opts...)
	return s, Cursor[T]{node: s.root}
}

func Bind[T any](n *Node) Cursor[T] {
	return Cursor[T]{node: n}
}

// Field is a typed cursor on the node at path below n.
func Field[T any](n *Node, path ...any) Cursor[T] {
	return Cursor[T]{node: n.At(path...)}
}

func (c Cursor[T]) Node() *Node {
	return c.node
}

// Lookup returns the value and whether it is present and holds a T.
func (c Cursor[T]) Lookup() (T, bool) {
	v, ok := c.node.Read().(T)
	return v, ok
}

// Read returns the zero T when the value is missing or of another type.
func (c Cursor[T]) Read() T {
	v, _ := c.Lookup()
	return v
}

func (c Cursor[T]) Write(v T) error {
	return c.node.Write(v)
}

func (c Cursor[T]) Delete() error {
	return c.node.Delete()
}

func (c Cursor[T]) Assign(partial map[string]any) error {
	return c.node.Assign(partial)
}

func (c Cursor[T]) Update(fn func(v T) T) error {
	return c.node.Write(fn(c.Read()))
}

// Mutate hands fn a pointer to a shallow clone of the value and writes the
// clone back.
func (c Cursor[T]) Mutate(fn func(v *T)) error {
	cur := c.node.Read()
	if isMissing(cur) {
		return fmt.Errorf("mutate %s: %w", c.node.Path(), ErrMissingParent)
	}
	rv := reflect.ValueOf(cur)
	var clone T
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Struct, reflect.Array:
		cv, err := cloneValue(rv)
		if err != nil {
			return fmt.Errorf("mutate %s: %w", c.node.Path(), err)
		}
		t, ok := cv.Interface().(T)
		if !ok {
			return fmt.Errorf("mutate %s: %w: holds %T", c.node.Path(), ErrTypeMismatch, cur)
		}
		clone = t
	default:
		t, ok := cur.(T)
		if !ok {
			return fmt.Errorf("mutate %s: %w: holds %T", c.node.Path(), ErrTypeMismatch, cur)
		}
		clone = t
	}
	fn(&clone)
	return c.node.Write(clone)
}

func (c Cursor[T]) Subscribe(fn func(v T) error) *Subscription {
	return c.node.Subscribe(func(v any) error {
		t, _ := v.(T)
		return fn(t)
	})
}
