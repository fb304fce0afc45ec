// Package spread turns list and map valued nodes into per-element nodes,
// the shape a renderer wants when it draws one row per item.
package spread

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/delaneyj/statetree/store"
)

type Entry struct {
	Key  any
	Node *store.Node
}

// Items returns one child node per element of a slice or array value. It
// returns nil when the value is missing or not a list.
func Items(n *store.Node) []*store.Node {
	rv := reflect.ValueOf(n.Read())
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]*store.Node, rv.Len())
	for i := range items {
		items[i] = n.Slice(i)
	}
	return items
}

// Entries returns the children of a map or struct value ordered by key.
// Only exported struct fields are listed.
func Entries(n *store.Node) []Entry {
	rv := reflect.ValueOf(n.Read())
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	var keys []any
	switch rv.Kind() {
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.Interface())
		}
	case reflect.Struct:
		for _, f := range reflect.VisibleFields(rv.Type()) {
			if f.IsExported() && len(f.Index) == 1 {
				keys = append(keys, f.Name)
			}
		}
	default:
		return nil
	}

	slices.SortFunc(keys, compareKeys)
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Node: n.Slice(k)}
	}
	return entries
}

func compareKeys(a, b any) int {
	switch a := a.(type) {
	case string:
		if b, ok := b.(string); ok {
			return cmp.Compare(a, b)
		}
	case int:
		if b, ok := b.(int); ok {
			return cmp.Compare(a, b)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func TypedItems[T any](c store.Cursor[[]T]) []store.Cursor[T] {
	items := Items(c.Node())
	if items == nil {
		return nil
	}
	cursors := make([]store.Cursor[T], len(items))
	for i, n := range items {
		cursors[i] = store.Bind[T](n)
	}
	return cursors
}
