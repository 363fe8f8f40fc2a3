package cell

import (
	"math"
	"reflect"

	"github.com/go-drift/setstate/pkg/errors"
)

// mergeValues resolves an update. Two non-nil maps of the same type merge
// into a new map where candidate's entries win on collision. Anything else,
// including slices and arrays, is replaced by candidate.
func mergeValues[T any](current, candidate T) T {
	cur := reflect.ValueOf(any(current))
	next := reflect.ValueOf(any(candidate))
	if !isMapping(cur) || !isMapping(next) || cur.Type() != next.Type() {
		return candidate
	}

	merged := reflect.MakeMapWithSize(cur.Type(), cur.Len()+next.Len())
	for iter := cur.MapRange(); iter.Next(); {
		merged.SetMapIndex(iter.Key(), iter.Value())
	}
	for iter := next.MapRange(); iter.Next(); {
		merged.SetMapIndex(iter.Key(), iter.Value())
	}
	return merged.Interface().(T)
}

func isMapping(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Map && !v.IsNil()
}

// callbackFunc resolves the untyped callback argument. ok is false when cb
// is present but cannot be called with a T.
func callbackFunc[T any](cb any) (fn func(T), ok bool) {
	if cb == nil {
		return nil, true
	}
	if fn, ok := cb.(func(T)); ok {
		return fn, true
	}
	want := reflect.TypeOf((func(T))(nil))
	v := reflect.ValueOf(cb)
	if v.Kind() != reflect.Func || !v.Type().ConvertibleTo(want) {
		return nil, false
	}
	if v.IsNil() {
		return nil, true
	}
	return v.Convert(want).Interface().(func(T)), true
}

// sameValue is the comparison used to decide whether a stabilization pass
// saw a change. Maps, slices, funcs, channels and pointers compare by
// identity, other comparable values with ==, the rest with reflect.DeepEqual.
func sameValue(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Float32, reflect.Float64:
		x, y := va.Float(), vb.Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}

	if va.Type().Comparable() {
		if eq, ok := safeEqual(a, b); ok {
			return eq
		}
	}
	return reflect.DeepEqual(a, b)
}

// safeEqual compares with ==, which panics for comparable types holding
// non-comparable interface values.
func safeEqual(a, b any) (eq, ok bool) {
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return a == b, true
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// funcUpdater turns a function value that is not a func(T) T into an
// updater. ok is false when next is not a function. A nil function yields a
// nil updater. A function that is not unary, or whose result is not
// assignable to T, panics with an *errors.ArgumentError; so does calling the
// updater with a current value the function does not accept.
func funcUpdater[T any](op string, next any) (fn func(T) T, ok bool) {
	rv := reflect.ValueOf(next)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, false
	}
	if rv.IsNil() {
		return nil, true
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	ft := rv.Type()
	if ft.NumIn() != 1 || ft.NumOut() != 1 || ft.IsVariadic() || !ft.Out(0).AssignableTo(target) {
		panic(&errors.ArgumentError{Op: op, Want: target.String(), Got: next})
	}

	in := ft.In(0)
	return func(current T) T {
		arg := reflect.ValueOf(any(current))
		switch {
		case !arg.IsValid() && isNillable(in):
			arg = reflect.Zero(in)
		case !arg.IsValid() || !arg.Type().AssignableTo(in):
			panic(&errors.ArgumentError{Op: op, Want: target.String(), Got: next})
		}
		var result T
		if out := rv.Call([]reflect.Value{arg})[0]; out.IsValid() {
			reflect.ValueOf(&result).Elem().Set(out)
		}
		return result
	}, true
}

func isNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
