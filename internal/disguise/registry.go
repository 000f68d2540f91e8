package disguise

import (
	"errors"

	"github.com/dop251/goja"
)

// weakTable is a non-owning side table keyed by object identity, backed by a
// WeakMap living inside the guest VM. Entries never extend the lifetime of
// their keys. Operations on non-object keys are swallowed and read as absent.
type weakTable struct {
	vm   *goja.Runtime
	self *goja.Object
	get  goja.Callable
	set  goja.Callable
	has  goja.Callable
}

func newWeakTable(vm *goja.Runtime) (*weakTable, error) {
	ctor, ok := goja.AssertConstructor(vm.Get("WeakMap"))
	if !ok {
		return nil, errors.New("disguise: WeakMap constructor unavailable")
	}
	self, err := ctor(nil)
	if err != nil {
		return nil, err
	}

	t := &weakTable{vm: vm, self: self}
	for name, target := range map[string]*goja.Callable{
		"get": &t.get,
		"set": &t.set,
		"has": &t.has,
	} {
		fn, ok := goja.AssertFunction(self.Get(name))
		if !ok {
			return nil, errors.New("disguise: WeakMap." + name + " unavailable")
		}
		*target = fn
	}
	return t, nil
}

func (t *weakTable) Get(key goja.Value) goja.Value {
	v, err := t.get(t.self, key)
	if err != nil {
		return goja.Undefined()
	}
	return v
}

func (t *weakTable) Set(key, value goja.Value) {
	_, _ = t.set(t.self, key, value)
}

func (t *weakTable) Has(key goja.Value) bool {
	v, err := t.has(t.self, key)
	return err == nil && v.ToBoolean()
}

// registry tracks which callables are already disguised and the exact text
// their stringification must report. Membership, not descriptor inspection,
// is how idempotence is detected.
type registry struct {
	table *weakTable
}

func newRegistry(vm *goja.Runtime) (*registry, error) {
	table, err := newWeakTable(vm)
	if err != nil {
		return nil, err
	}
	return &registry{table: table}, nil
}

func (r *registry) has(v goja.Value) bool {
	return r.table.Has(v)
}

// lookup returns the fixed native-code text recorded for a disguised
// callable. The text is captured at disguise time, so later mutation of the
// function's name never changes what stringification reports.
func (r *registry) lookup(v goja.Value) (string, bool) {
	if !r.table.Has(v) {
		return "", false
	}
	s, ok := r.table.Get(v).Export().(string)
	return s, ok
}

func (r *registry) add(v goja.Value, text string) {
	r.table.Set(v, r.table.vm.ToValue(text))
}
