package disguise

import (
	"strconv"

	"github.com/dop251/goja"
)

// installReflectionFilter overrides the four key-enumeration entry points:
// Object.keys, Object.getOwnPropertyNames, Object.getOwnPropertyDescriptors
// and Reflect.ownKeys. Each delegates to the snapshotted original and filters
// hidden keys only when the target is identically the global object; every
// other target gets the original result back untouched.
func (in *Installer) installReflectionFilter() {
	hidden := in.catalog.hiddenSet()

	in.setHook(in.orig.objectCtor, "keys",
		in.filteringList(in.orig.keys, "keys", hidden))
	in.setHook(in.orig.objectCtor, "getOwnPropertyNames",
		in.filteringList(in.orig.ownNames, "getOwnPropertyNames", hidden))
	in.setHook(in.orig.reflectNS, "ownKeys",
		in.filteringList(in.orig.ownKeys, "ownKeys", hidden))
	in.setHook(in.orig.objectCtor, "getOwnPropertyDescriptors",
		in.filteringDescriptors(in.orig.ownDescriptors, hidden))
}

// filteringList builds a disguised override for a name-returning entry
// point. Symbols pass through untouched; only hidden string keys of the
// global object are removed.
func (in *Installer) filteringList(orig goja.Callable, name string, hidden map[string]bool) goja.Value {
	override := in.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		res, err := orig(goja.Undefined(), call.Arguments...)
		if err != nil {
			in.throw(err)
		}
		if !in.targetsGlobal(call) {
			return res
		}
		return in.filterNames(res, hidden)
	})
	in.Disguise(override, name)
	return override
}

// filteringDescriptors builds the disguised override for the bulk descriptor
// entry point; hidden entries are deleted from the result object in place.
func (in *Installer) filteringDescriptors(orig goja.Callable, hidden map[string]bool) goja.Value {
	override := in.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		res, err := orig(goja.Undefined(), call.Arguments...)
		if err != nil {
			in.throw(err)
		}
		if !in.targetsGlobal(call) {
			return res
		}
		if obj, ok := res.(*goja.Object); ok {
			for key := range hidden {
				if err := obj.Delete(key); err != nil {
					in.debug("drop descriptor", key, err)
				}
			}
		}
		return res
	})
	in.Disguise(override, "getOwnPropertyDescriptors")
	return override
}

// targetsGlobal reports whether the call's first argument is identically the
// global namespace object.
func (in *Installer) targetsGlobal(call goja.FunctionCall) bool {
	if len(call.Arguments) == 0 {
		return false
	}
	return call.Argument(0).StrictEquals(in.global)
}

// filterNames rebuilds a key array without the hidden string keys.
func (in *Installer) filterNames(res goja.Value, hidden map[string]bool) goja.Value {
	arr, ok := res.(*goja.Object)
	if !ok {
		return res
	}
	lengthV := arr.Get("length")
	if lengthV == nil {
		return res
	}
	length := lengthV.ToInteger()
	kept := make([]interface{}, 0, length)
	for i := int64(0); i < length; i++ {
		item := arr.Get(strconv.FormatInt(i, 10))
		if item == nil {
			continue
		}
		if s, ok := item.Export().(string); ok && hidden[s] {
			continue
		}
		kept = append(kept, item)
	}
	return in.vm.NewArray(kept...)
}
