package disguise

import (
	"strings"

	"github.com/dop251/goja"
)

// applyCatalog walks the protection catalog once: constructors through the
// class walker, bare functions through the engine, and singleton namespaces
// method by method. Bindings missing from this VM are silently skipped.
func (in *Installer) applyCatalog() {
	for _, name := range in.catalog.Constructors {
		if v := in.global.Get(name); isCallable(v) {
			in.DisguiseConstructor(v, name)
		}
	}
	for _, name := range in.catalog.Functions {
		if v := in.global.Get(name); isCallable(v) {
			in.Disguise(v, name)
		}
	}
	for _, ns := range in.catalog.Namespaces {
		obj := in.resolveBinding(ns.Binding)
		if obj == nil {
			continue
		}
		// Singleton objects get no prototype walk; only the listed
		// methods are disguised.
		for _, method := range ns.Methods {
			if v := obj.Get(method); isCallable(v) {
				in.Disguise(v, method)
			}
		}
	}
}

// resolveBinding resolves a dotted path ("crypto.subtle") from the global
// object, returning nil when any segment is missing or not an object.
func (in *Installer) resolveBinding(path string) *goja.Object {
	var current goja.Value = in.global
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(*goja.Object)
		if !ok {
			return nil
		}
		current = obj.Get(part)
		if !defined(current) {
			return nil
		}
	}
	obj, _ := current.(*goja.Object)
	return obj
}
