package disguise

import (
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/2926295173/never-jscore/internal/logging"
)

// Installer binds the disguise layer to a single VM. New snapshots the
// engine's original reflection primitives; Install performs the one-time,
// strictly ordered bootstrap. One Installer per VM, used from the VM's
// goroutine only.
type Installer struct {
	vm      *goja.Runtime
	log     *logging.Logger
	catalog Catalog
	global  *goja.Object
	reg     *registry
	stacks  *weakTable
	san     *Sanitizer
	orig    originals
	hooks   []hook

	installed bool
}

// originals holds the engine primitives snapshotted before any override is
// in place. All delegation goes through these, never through the (possibly
// already overridden) live bindings.
type originals struct {
	funcProto    *goja.Object
	funcToString goja.Callable

	objectCtor     *goja.Object
	reflectNS      *goja.Object
	keys           goja.Callable
	ownNames       goja.Callable
	ownDescriptors goja.Callable
	ownDescriptor  goja.Callable
	ownKeys        goja.Callable

	errorCtor    *goja.Object
	errorProto   *goja.Object
	captureStack goja.Callable // nil when the engine does not provide it
	stackGetter  goja.Callable // pre-existing Error.prototype.stack getter, if any
}

// hook records one installed override so lockdown can re-define it
// non-writable and non-configurable in a single deterministic pass.
type hook struct {
	owner  *goja.Object
	key    string
	value  goja.Value // data hooks
	getter goja.Value // accessor hooks
	setter goja.Value
}

// New creates an Installer for vm. It fails only when the VM is missing the
// primitives that must be snapshotted; everything after that is best effort.
func New(vm *goja.Runtime, catalog Catalog, log *logging.Logger) (*Installer, error) {
	if vm == nil {
		return nil, errors.New("disguise: nil runtime")
	}
	if log == nil {
		log = logging.Nop()
	}

	reg, err := newRegistry(vm)
	if err != nil {
		return nil, err
	}
	stacks, err := newWeakTable(vm)
	if err != nil {
		return nil, err
	}

	in := &Installer{
		vm:      vm,
		log:     log,
		catalog: catalog,
		global:  vm.GlobalObject(),
		reg:     reg,
		stacks:  stacks,
		san:     NewSanitizer(catalog.StackPatterns, log),
	}
	if err := in.snapshot(); err != nil {
		return nil, err
	}
	return in, nil
}

// snapshot captures the original primitives (bootstrap step 1).
func (in *Installer) snapshot() error {
	fnCtor, ok := in.global.Get("Function").(*goja.Object)
	if !ok {
		return errors.New("disguise: Function constructor unavailable")
	}
	funcProto, ok := fnCtor.Get("prototype").(*goja.Object)
	if !ok {
		return errors.New("disguise: Function.prototype unavailable")
	}
	funcToString, ok := goja.AssertFunction(funcProto.Get("toString"))
	if !ok {
		return errors.New("disguise: Function.prototype.toString unavailable")
	}

	objectCtor, ok := in.global.Get("Object").(*goja.Object)
	if !ok {
		return errors.New("disguise: Object constructor unavailable")
	}
	reflectNS, ok := in.global.Get("Reflect").(*goja.Object)
	if !ok {
		return errors.New("disguise: Reflect namespace unavailable")
	}

	in.orig = originals{
		funcProto:    funcProto,
		funcToString: funcToString,
		objectCtor:   objectCtor,
		reflectNS:    reflectNS,
	}

	for name, target := range map[string]*goja.Callable{
		"keys":                      &in.orig.keys,
		"getOwnPropertyNames":       &in.orig.ownNames,
		"getOwnPropertyDescriptors": &in.orig.ownDescriptors,
		"getOwnPropertyDescriptor":  &in.orig.ownDescriptor,
	} {
		fn, ok := goja.AssertFunction(objectCtor.Get(name))
		if !ok {
			return errors.New("disguise: Object." + name + " unavailable")
		}
		*target = fn
	}
	ownKeys, ok := goja.AssertFunction(reflectNS.Get("ownKeys"))
	if !ok {
		return errors.New("disguise: Reflect.ownKeys unavailable")
	}
	in.orig.ownKeys = ownKeys

	errorCtor, ok := in.global.Get("Error").(*goja.Object)
	if !ok {
		return errors.New("disguise: Error constructor unavailable")
	}
	in.orig.errorCtor = errorCtor
	errorProto, ok := errorCtor.Get("prototype").(*goja.Object)
	if !ok {
		return errors.New("disguise: Error.prototype unavailable")
	}
	in.orig.errorProto = errorProto

	// Optional primitives: absence is tolerated, not fatal.
	if fn, ok := goja.AssertFunction(errorCtor.Get("captureStackTrace")); ok {
		in.orig.captureStack = fn
	}
	if desc := in.ownDescriptorOf(errorProto, "stack"); desc != nil {
		if fn, ok := goja.AssertFunction(desc.Get("get")); ok {
			in.orig.stackGetter = fn
		}
	}
	return nil
}

// Install runs the bootstrap sequence exactly once. Every step is a
// synchronous property mutation; no failure halts the sequence.
func (in *Installer) Install() {
	if in.installed {
		return
	}
	in.installed = true

	// Originals were snapshotted in New (step 1).
	in.relocateInternal()        // 2. hide the host-internal namespace
	in.applyCatalog()            // 3. disguise the cataloged surface
	in.installToString()         // 4. global stringification override
	in.installReflectionFilter() // 5. key-enumeration filtering
	in.installStackSanitizer()   // 6. stack scrubbing at capture and read
	in.applyTags()               // 7. Symbol.toStringTag corrections
	in.lockdown()                // 8. freeze the override entry points
}

// Installed reports whether the bootstrap has run.
func (in *Installer) Installed() bool {
	return in.installed
}

// relocateInternal moves the host-internal namespace to a hidden
// non-enumerable alias and strips enumerability from the original binding.
// Prior existence of the alias is tolerated: it is simply redefined.
func (in *Installer) relocateInternal() {
	name, alias := in.catalog.InternalBinding, in.catalog.InternalAlias
	if name == "" || alias == "" {
		return
	}
	v := in.global.Get(name)
	if !defined(v) {
		return
	}
	if err := in.global.DefineDataProperty(alias, v, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		in.debug("relocate alias", alias, err)
	}
	if err := in.global.DefineDataProperty(name, v, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		in.debug("strip binding enumerability", name, err)
	}
}

// setHook installs a data override and records it for lockdown.
func (in *Installer) setHook(owner *goja.Object, key string, value goja.Value) {
	if owner == nil {
		return
	}
	if err := owner.DefineDataProperty(key, value, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		in.debug("install hook", key, err)
		return
	}
	in.hooks = append(in.hooks, hook{owner: owner, key: key, value: value})
}

// setAccessorHook installs an accessor override and records it for lockdown.
func (in *Installer) setAccessorHook(owner *goja.Object, key string, getter, setter goja.Value) {
	if owner == nil {
		return
	}
	if err := owner.DefineAccessorProperty(key, getter, setter, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		in.debug("install accessor hook", key, err)
		return
	}
	in.hooks = append(in.hooks, hook{owner: owner, key: key, getter: getter, setter: setter})
}

// lockdown re-defines every installed hook as non-writable and
// non-configurable so sandboxed code cannot swap the interceptors back out.
// Individual disguised functions stay reconfigurable; only the shared entry
// points are locked.
func (in *Installer) lockdown() {
	for _, h := range in.hooks {
		var err error
		if h.getter != nil || h.setter != nil {
			err = h.owner.DefineAccessorProperty(h.key, h.getter, h.setter, goja.FLAG_FALSE, goja.FLAG_FALSE)
		} else {
			err = h.owner.DefineDataProperty(h.key, h.value, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
		}
		if err != nil {
			in.debug("lock hook", h.key, err)
		}
	}
}

// throw re-raises a delegated call's failure as a JS exception so overrides
// stay referentially transparent for throwing targets.
func (in *Installer) throw(err error) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		panic(ex)
	}
	panic(in.vm.NewGoError(err))
}

func (in *Installer) debug(op, key string, err error) {
	in.log.Debug("disguise mutation skipped",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
