package disguise

import (
	"strconv"

	"github.com/dop251/goja"
)

// structuralKeys are the own keys of a constructor that are not static
// methods and must not be touched by the walk.
var structuralKeys = map[string]bool{
	"prototype": true,
	"length":    true,
	"name":      true,
	"toString":  true,
}

// DisguiseConstructor disguises a constructor, its prototype surface, and
// its static methods. Prototype data-valued callables take their key as
// display name; accessor getters and setters become "get key" / "set key"
// independently. The constructor back-reference is re-marked non-enumerable.
// Per-key failures never abort the walk.
func (in *Installer) DisguiseConstructor(v goja.Value, displayName string) goja.Value {
	ctor, ok := asCallable(v)
	if !ok {
		return v
	}
	in.Disguise(v, displayName)

	if proto, ok := ctor.Get("prototype").(*goja.Object); ok {
		for _, key := range in.ownPropertyNames(proto) {
			if key == "constructor" {
				continue
			}
			in.disguiseMember(proto, key)
		}
		if back := proto.Get("constructor"); defined(back) {
			if err := proto.DefineDataProperty("constructor", back, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
				in.debug("hide constructor", displayName, err)
			}
		}
	}

	for _, key := range in.ownPropertyNames(ctor) {
		if structuralKeys[key] {
			continue
		}
		desc := in.ownDescriptorOf(ctor, key)
		if desc == nil {
			continue
		}
		if value := desc.Get("value"); isCallable(value) {
			in.Disguise(value, key)
		}
	}
	return v
}

// disguiseMember disguises one prototype member, accessor pair or plain
// callable, by descriptor. Descriptors are used instead of property reads so
// getters are never invoked during the walk.
func (in *Installer) disguiseMember(owner *goja.Object, key string) {
	desc := in.ownDescriptorOf(owner, key)
	if desc == nil {
		return
	}
	if getter := desc.Get("get"); isCallable(getter) {
		in.Disguise(getter, "get "+key)
	}
	if setter := desc.Get("set"); isCallable(setter) {
		in.Disguise(setter, "set "+key)
	}
	if value := desc.Get("value"); isCallable(value) {
		in.Disguise(value, key)
	}
}

// ownPropertyNames lists own string keys via the snapshotted original, so
// the walk is unaffected by the enumeration overrides installed later.
func (in *Installer) ownPropertyNames(obj *goja.Object) []string {
	res, err := in.orig.ownNames(goja.Undefined(), obj)
	if err != nil {
		in.debug("own names", "", err)
		return nil
	}
	return exportStrings(in.vm, res)
}

// ownDescriptorOf fetches an own property descriptor via the snapshotted
// original, returning nil when the property is absent or retrieval fails.
func (in *Installer) ownDescriptorOf(obj *goja.Object, key string) *goja.Object {
	res, err := in.orig.ownDescriptor(goja.Undefined(), obj, in.vm.ToValue(key))
	if err != nil || !defined(res) {
		return nil
	}
	desc, _ := res.(*goja.Object)
	return desc
}

// exportStrings flattens a JS array of strings; non-string entries are
// dropped.
func exportStrings(vm *goja.Runtime, v goja.Value) []string {
	arr, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	lengthV := arr.Get("length")
	if lengthV == nil {
		return nil
	}
	length := lengthV.ToInteger()
	out := make([]string, 0, length)
	for i := int64(0); i < length; i++ {
		item := arr.Get(strconv.FormatInt(i, 10))
		if item == nil {
			continue
		}
		if s, ok := item.Export().(string); ok {
			out = append(out, s)
		}
	}
	return out
}
