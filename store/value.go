package store

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Missing is what a path resolves to when there is nothing there.
var Missing any = nil

// Same reports whether a and b are the same value by reference. Maps,
// pointers, chans and funcs compare by identity, slices by backing array
// and length. Struct and array values compare field by field under the
// same rules, everything else by ==.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	return sameValue(va, vb)
}

// sameValue expects both values to share a type.
func sameValue(va, vb reflect.Value) bool {
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Func:
		return funcPointer(va) == funcPointer(vb)
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	case reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		ea, eb := va.Elem(), vb.Elem()
		return ea.Type() == eb.Type() && sameValue(ea, eb)
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !sameValue(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < va.Len(); i++ {
			if !sameValue(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	}
	return va.Equal(vb)
}

// funcPointer is the closure a func value points at. Unlike
// Value.UnsafePointer it tells apart closures sharing the same code.
// Funcs held in unexported fields cannot be copied out and fall back to
// the code pointer.
func funcPointer(v reflect.Value) unsafe.Pointer {
	if !v.CanInterface() {
		return v.UnsafePointer()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return *(*unsafe.Pointer)(p.UnsafePointer())
}

func isMissing(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func lookup(container, key any) any {
	if container == nil {
		return nil
	}
	v := reflect.ValueOf(container)
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		k, ok := mapKey(v.Type(), key)
		if !ok {
			return nil
		}
		e := v.MapIndex(k)
		if !e.IsValid() {
			return nil
		}
		return e.Interface()
	case reflect.Slice, reflect.Array:
		i, ok := index(key)
		if !ok || i < 0 || i >= v.Len() {
			return nil
		}
		return v.Index(i).Interface()
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return nil
		}
		return field(v.Elem(), key)
	case reflect.Struct:
		return field(v, key)
	}
	return nil
}

func field(v reflect.Value, key any) any {
	name, ok := key.(string)
	if !ok {
		return nil
	}
	sf, ok := v.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return nil
	}
	return v.FieldByIndex(sf.Index).Interface()
}

func mapKey(t reflect.Type, key any) (reflect.Value, bool) {
	kv := reflect.ValueOf(key)
	if !kv.IsValid() {
		return reflect.Value{}, false
	}
	kt := t.Key()
	if kv.Type().AssignableTo(kt) {
		return kv, true
	}
	if kv.Kind() == kt.Kind() && kv.Type().ConvertibleTo(kt) {
		return kv.Convert(kt), true
	}
	return reflect.Value{}, false
}

func index(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int64:
		return int(k), true
	case int32:
		return int(k), true
	case uint:
		return int(k), true
	}
	return 0, false
}

// cloneValue returns a settable shallow copy of a container. Pointers to
// structs are copied into a fresh pointer, struct values into an
// addressable copy.
func cloneValue(v reflect.Value) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Map:
		c := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), iter.Value())
		}
		return c, nil
	case reflect.Slice:
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(c, v)
		return c, nil
	case reflect.Pointer:
		if v.Elem().Kind() != reflect.Struct {
			break
		}
		c := reflect.New(v.Elem().Type())
		c.Elem().Set(v.Elem())
		return c, nil
	case reflect.Struct, reflect.Array:
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		return c, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotContainer, v.Type())
}

// setKey stores value under key in a clone produced by cloneValue. Slices
// may grow, so the possibly reallocated container is returned.
func setKey(c reflect.Value, key, value any) (reflect.Value, error) {
	switch c.Kind() {
	case reflect.Map:
		k, ok := mapKey(c.Type(), key)
		if !ok {
			return c, fmt.Errorf("%w: %v (%T) for %s", ErrInvalidKey, key, key, c.Type())
		}
		if value == nil {
			c.SetMapIndex(k, reflect.Value{})
			return c, nil
		}
		ev, err := elemValue(c.Type().Elem(), value)
		if err != nil {
			return c, err
		}
		c.SetMapIndex(k, ev)
		return c, nil
	case reflect.Slice:
		i, ok := index(key)
		if !ok || i < 0 {
			return c, fmt.Errorf("%w: %v (%T) for %s", ErrInvalidKey, key, key, c.Type())
		}
		if i >= c.Len() {
			grown := reflect.MakeSlice(c.Type(), i+1, i+1)
			reflect.Copy(grown, c)
			c = grown
		}
		ev, err := elemValue(c.Type().Elem(), value)
		if err != nil {
			return c, err
		}
		c.Index(i).Set(ev)
		return c, nil
	case reflect.Array:
		i, ok := index(key)
		if !ok || i < 0 || i >= c.Len() {
			return c, fmt.Errorf("%w: %v (%T) for %s", ErrInvalidKey, key, key, c.Type())
		}
		ev, err := elemValue(c.Type().Elem(), value)
		if err != nil {
			return c, err
		}
		c.Index(i).Set(ev)
		return c, nil
	case reflect.Pointer:
		return c, setField(c.Elem(), key, value)
	case reflect.Struct:
		return c, setField(c, key, value)
	}
	return c, fmt.Errorf("%w: %s", ErrNotContainer, c.Type())
}

func setField(s reflect.Value, key, value any) error {
	name, ok := key.(string)
	if !ok {
		return fmt.Errorf("%w: %v (%T) for %s", ErrInvalidKey, key, key, s.Type())
	}
	sf, ok := s.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return fmt.Errorf("%w: no exported field %q on %s", ErrInvalidKey, name, s.Type())
	}
	ev, err := elemValue(sf.Type, value)
	if err != nil {
		return err
	}
	s.FieldByIndex(sf.Index).Set(ev)
	return nil
}

func elemValue(t reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot store %T as %s", ErrTypeMismatch, value, t)
}

// withKey is the copy-on-write step: a shallow clone of container with key
// set to value.
func withKey(container, key, value any) (any, error) {
	if isMissing(container) {
		return nil, ErrMissingParent
	}
	c, err := cloneValue(reflect.ValueOf(container))
	if err != nil {
		return nil, err
	}
	if c, err = setKey(c, key, value); err != nil {
		return nil, err
	}
	return c.Interface(), nil
}

// withKeys sets several keys on a single clone.
func withKeys(container any, values map[string]any, keys []string) (any, error) {
	if isMissing(container) {
		return nil, ErrMissingParent
	}
	c, err := cloneValue(reflect.ValueOf(container))
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if c, err = setKey(c, k, values[k]); err != nil {
			return nil, err
		}
	}
	return c.Interface(), nil
}
