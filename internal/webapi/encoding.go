package webapi

import (
	"encoding/base64"

	"github.com/dop251/goja"
)

func installEncoding(vm *goja.Runtime) error {
	err := vm.Set("btoa", func(call goja.FunctionCall) goja.Value {
		s := call.Argument(0).String()
		return vm.ToValue(base64.StdEncoding.EncodeToString([]byte(s)))
	})
	if err != nil {
		return err
	}

	err = vm.Set("atob", func(call goja.FunctionCall) goja.Value {
		decoded, err := base64.StdEncoding.DecodeString(call.Argument(0).String())
		if err != nil {
			panic(vm.NewTypeError("atob: the string to be decoded is not correctly encoded"))
		}
		return vm.ToValue(string(decoded))
	})
	if err != nil {
		return err
	}

	err = vm.Set("TextEncoder", func(call goja.ConstructorCall) *goja.Object {
		call.This.Set("encoding", "utf-8")
		call.This.Set("encode", func(c goja.FunctionCall) goja.Value {
			s := ""
			if len(c.Arguments) > 0 {
				s = c.Argument(0).String()
			}
			return newUint8Array(vm, []byte(s))
		})
		return nil
	})
	if err != nil {
		return err
	}

	return vm.Set("TextDecoder", func(call goja.ConstructorCall) *goja.Object {
		call.This.Set("encoding", "utf-8")
		call.This.Set("decode", func(c goja.FunctionCall) goja.Value {
			if len(c.Arguments) == 0 {
				return vm.ToValue("")
			}
			buf, ok := bytesOf(c.Argument(0))
			if !ok {
				panic(vm.NewTypeError("decode requires a BufferSource"))
			}
			return vm.ToValue(string(buf))
		})
		return nil
	})
}
