package disguise

import (
	"github.com/dop251/goja"
)

// applyTags fixes the type-identification tag on well-known singletons so
// Object.prototype.toString reports the native class name. Function bindings
// and missing bindings are skipped; the tag is installed non-enumerable and
// non-writable but stays reconfigurable.
func (in *Installer) applyTags() {
	for name, tag := range in.catalog.Tags {
		v := in.global.Get(name)
		if !defined(v) || isCallable(v) {
			continue
		}
		obj, ok := v.(*goja.Object)
		if !ok {
			continue
		}
		if err := obj.DefineDataPropertySymbol(goja.SymToStringTag, in.vm.ToValue(tag), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			in.debug("set tag", name, err)
		}
	}
}
