package disguise

import (
	"fmt"

	"github.com/dop251/goja"
)

// nativeTemplate is the canonical text the engine uses when stringifying a
// built-in function.
const nativeTemplate = "function %s() { [native code] }"

// NativeText returns the native-code stringification for a display name.
func NativeText(name string) string {
	return fmt.Sprintf(nativeTemplate, name)
}

// Disguise makes one callable stringify as an engine native. It is a no-op
// for non-callables and for callables already in the registry. The display
// name defaults to the callable's current name, then "anonymous". On any
// mutation failure the callable is returned unregistered so a later call may
// retry. Side effects are confined to the callable plus registry insertion.
func (in *Installer) Disguise(v goja.Value, displayName string) goja.Value {
	fn, ok := asCallable(v)
	if !ok || in.reg.has(v) {
		return v
	}

	name := displayName
	if name == "" {
		name = funcName(fn)
	}
	if name == "" {
		name = "anonymous"
	}
	text := NativeText(name)

	wrapper := in.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return in.vm.ToValue(text)
	})
	if wObj, ok := asCallable(wrapper); ok {
		if err := wObj.DefineDataProperty("name", in.vm.ToValue("toString"), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			in.debug("name wrapper", name, err)
		}
	}

	if err := fn.DefineDataProperty("toString", wrapper, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		in.debug("override toString", name, err)
		return v
	}
	if displayName != "" && displayName != funcName(fn) {
		if err := fn.DefineDataProperty("name", in.vm.ToValue(displayName), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			in.debug("override name", name, err)
			return v
		}
	}

	// The wrapper itself must survive Function.prototype.toString probes.
	in.reg.add(wrapper, NativeText("toString"))
	in.reg.add(v, text)
	return v
}

// installToString replaces Function.prototype.toString with a registry-backed
// override: disguised callables report their fixed native text no matter how
// the call is routed, everything else delegates to the original.
func (in *Installer) installToString() {
	override := in.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if text, ok := in.reg.lookup(call.This); ok {
			return in.vm.ToValue(text)
		}
		res, err := in.orig.funcToString(call.This)
		if err != nil {
			in.throw(err)
		}
		return res
	})
	in.Disguise(override, "toString")
	in.setHook(in.orig.funcProto, "toString", override)
}

// asCallable returns v as an object when v is a function.
func asCallable(v goja.Value) (*goja.Object, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	if _, fn := goja.AssertFunction(v); !fn {
		return nil, false
	}
	return obj, true
}

func isCallable(v goja.Value) bool {
	_, ok := asCallable(v)
	return ok
}

// defined reports whether v resolved to a usable value.
func defined(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

func funcName(fn *goja.Object) string {
	v := fn.Get("name")
	if v == nil {
		return ""
	}
	s, _ := v.Export().(string)
	return s
}
