package swanjson

import (
	"reflect"
	"strconv"
)

const circularKey = "$circref"

// identity is the reference identity of a composite value. Slices sharing a
// backing array are only the same value when their lengths match too.
type identity struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// identityOf returns the identity of v, or false for values without one
// (structs, arrays, scalars and nil references).
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}, true
	}
	return identity{}, false
}

func (id identity) String() string {
	return strconv.FormatUint(uint64(id.ptr), 10)
}

// Identity returns the identity string the serializer writes in a $circref
// marker for v, or an empty string when v has no reference identity.
func Identity(v any) string {
	id, ok := identityOf(reflect.ValueOf(v))
	if !ok {
		return ""
	}
	return id.String()
}

// guard tracks the composites on the active recursion path.
type guard map[identity]struct{}

// enter records id and reports false when it is already an ancestor.
func (g guard) enter(id identity) bool {
	if _, ok := g[id]; ok {
		return false
	}
	g[id] = struct{}{}
	return true
}

func (g guard) leave(id identity) {
	delete(g, id)
}
