package mempool

import (
	"reflect"
	"sync"
	"unsafe"
)

// pointerFreeTypes caches the per-type verdict of the pointer walk so the
// reflect pass runs once per T.
var pointerFreeTypes sync.Map // reflect.Type -> bool

// Construct allocates storage for one T, copies v into it and returns the
// typed pointer, or nil when the allocator cannot serve. T must not
// contain Go pointers in any field (pool storage is untyped bytes that the
// garbage collector does not scan, so a pointer stored there would not
// keep its referent alive); a pointerful T panics with ErrPointerType.
func Construct[T any](a *Allocator, v T) *T {
	t := reflect.TypeFor[T]()
	assertPointerFree(t)

	size := int(t.Size())
	if size == 0 {
		size = 1 // zero-size values still get a distinct address
	}
	ptr := a.Allocate(size)
	if ptr == nil {
		return nil
	}

	p := (*T)(ptr)
	*p = v
	return p
}

// Destroy releases storage obtained from Construct. Nil is ignored and
// reported as false.
func Destroy[T any](a *Allocator, p *T) bool {
	if p == nil {
		return false
	}
	return a.Deallocate(unsafe.Pointer(p))
}

func assertPointerFree(t reflect.Type) {
	if !pointerFree(t) {
		panic(newAllocError("construct", t.String(), ErrPointerType))
	}
}

func pointerFree(t reflect.Type) bool {
	if v, ok := pointerFreeTypes.Load(t); ok {
		return v.(bool)
	}
	v := !typeHasPointers(t)
	pointerFreeTypes.Store(t, v)
	return v
}

// typeHasPointers walks t and reports whether any reachable field is a
// pointer-carrying kind. Strings, slices, maps, channels, funcs and
// interfaces all count: each holds a runtime pointer internally.
func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typeHasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
