package webapi

import (
	"github.com/dop251/goja"
)

// bytesOf extracts the mutable byte view behind an ArrayBuffer, typed array,
// or DataView value. Returns false for anything else.
func bytesOf(v goja.Value) ([]byte, bool) {
	if v == nil {
		return nil, false
	}
	if ab, ok := v.Export().(goja.ArrayBuffer); ok {
		return ab.Bytes(), true
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	bufV := obj.Get("buffer")
	if bufV == nil {
		return nil, false
	}
	ab, ok := bufV.Export().(goja.ArrayBuffer)
	if !ok {
		return nil, false
	}
	data := ab.Bytes()

	offV, lenV := obj.Get("byteOffset"), obj.Get("byteLength")
	if offV == nil || lenV == nil {
		return nil, false
	}
	off, length := int(offV.ToInteger()), int(lenV.ToInteger())
	if off < 0 || length < 0 || off+length > len(data) {
		return nil, false
	}
	return data[off : off+length], true
}

// newUint8Array wraps bytes in a fresh Uint8Array. Falls back to a bare
// ArrayBuffer if the constructor is unavailable.
func newUint8Array(vm *goja.Runtime, b []byte) goja.Value {
	ctor, ok := goja.AssertConstructor(vm.Get("Uint8Array"))
	if !ok {
		return vm.ToValue(vm.NewArrayBuffer(b))
	}
	arr, err := ctor(nil, vm.ToValue(vm.NewArrayBuffer(b)))
	if err != nil {
		panic(vm.NewGoError(err))
	}
	return arr
}
