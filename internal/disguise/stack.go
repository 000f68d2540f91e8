package disguise

import (
	"regexp"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/2926295173/never-jscore/internal/logging"
)

// blankRuns collapses 3+ consecutive newlines to exactly 2.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// Sanitizer strips host-internal frames from captured error stacks. Rules
// apply in fixed order, each removing every matching frame line. Sanitize is
// idempotent: once scrubbed, a stack passes through unchanged.
type Sanitizer struct {
	rules []*regexp.Regexp
}

// NewSanitizer compiles the pattern list. Invalid patterns are dropped with
// a debug log rather than failing construction.
func NewSanitizer(patterns []string, log *logging.Logger) *Sanitizer {
	if log == nil {
		log = logging.Nop()
	}
	rules := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Debug("stack pattern skipped", zap.String("pattern", p), zap.Error(err))
			continue
		}
		rules = append(rules, re)
	}
	return &Sanitizer{rules: rules}
}

// Sanitize applies every rule in order and collapses blank runs. Empty input
// is returned unchanged.
func (s *Sanitizer) Sanitize(stack string) string {
	if stack == "" {
		return stack
	}
	out := stack
	for _, re := range s.rules {
		out = re.ReplaceAllString(out, "")
	}
	return blankRuns.ReplaceAllString(out, "\n\n")
}

// errorConstructors are the global error classes whose instances receive an
// own stack field at construction time.
var errorConstructors = []string{
	"Error", "TypeError", "RangeError", "SyntaxError",
	"ReferenceError", "EvalError", "URIError", "AggregateError",
}

// installStackSanitizer hooks stack scrubbing in at three points: the
// Error.prototype.stack accessor pair, the global error constructors, and
// Error.captureStackTrace. The engine materializes stacks as own fields on
// error instances, which would shadow the prototype accessor, so the
// constructor wrappers relocate that field into the weak side table right at
// construction. From then on writes route through the setter (raw, verbatim)
// and reads through the getter, which re-sanitizes on every read.
func (in *Installer) installStackSanitizer() {
	getter := in.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		raw := in.stacks.Get(call.This)
		if goja.IsUndefined(raw) {
			raw = in.originalStack(call.This)
		}
		if raw == nil {
			return goja.Undefined()
		}
		if s, ok := raw.Export().(string); ok {
			return in.vm.ToValue(in.san.Sanitize(s))
		}
		return raw
	})
	setter := in.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		in.stacks.Set(call.This, call.Argument(0))
		return goja.Undefined()
	})
	in.Disguise(getter, "get stack")
	in.Disguise(setter, "set stack")
	in.setAccessorHook(in.orig.errorProto, "stack", getter, setter)

	in.wrapErrorConstructors()

	if in.orig.captureStack != nil {
		wrap := in.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			res, err := in.orig.captureStack(in.orig.errorCtor, call.Arguments...)
			if err != nil {
				in.throw(err)
			}
			if target, ok := call.Argument(0).(*goja.Object); ok {
				if in.inheritsErrorProto(target) {
					in.relocateOwnStack(target)
				} else if stackV := target.Get("stack"); stackV != nil {
					// Non-error targets keep their own field; sanitize it in
					// place since no accessor will serve later reads.
					if raw, ok := stackV.Export().(string); ok {
						if err := target.Set("stack", in.san.Sanitize(raw)); err != nil {
							in.debug("sanitize captured stack", "stack", err)
						}
					}
				}
			}
			return res
		})
		in.Disguise(wrap, "captureStackTrace")
		in.setHook(in.errorBinding(), "captureStackTrace", wrap)
	}
}

// wrapErrorConstructors replaces each global error class with a wrapper that
// constructs through the original and relocates the instance's own stack
// field into the weak table, so the prototype accessor serves every later
// read and write. The bindings keep native attributes (writable,
// configurable) and are not part of lockdown.
func (in *Installer) wrapErrorConstructors() {
	for _, name := range errorConstructors {
		binding := in.global.Get(name)
		ctor, ok := goja.AssertConstructor(binding)
		if !ok {
			continue
		}
		orig, ok := binding.(*goja.Object)
		if !ok {
			continue
		}
		wrapped := in.wrapErrorConstructor(name, ctor, orig)
		if err := in.global.DefineDataProperty(name, wrapped, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			in.debug("wrap error constructor", name, err)
		}
	}
}

// wrapErrorConstructor builds one disguised constructor wrapper that is
// substitutable for the original: same prototype object (so instanceof and
// existing instances are unaffected), same statics, matching back-reference.
func (in *Installer) wrapErrorConstructor(name string, ctor goja.Constructor, orig *goja.Object) goja.Value {
	wrapped := in.vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		obj, err := ctor(nil, call.Arguments...)
		if err != nil {
			in.throw(err)
		}
		in.relocateOwnStack(obj)
		return obj
	})
	wObj, ok := wrapped.(*goja.Object)
	if !ok {
		return wrapped
	}

	proto, _ := orig.Get("prototype").(*goja.Object)
	if proto != nil {
		if err := wObj.DefineDataProperty("prototype", proto, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
			in.debug("wrap error prototype", name, err)
		}
		if err := proto.DefineDataProperty("constructor", wrapped, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			in.debug("wrap error back-reference", name, err)
		}
	}
	if length := orig.Get("length"); defined(length) {
		if err := wObj.DefineDataProperty("length", length, goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			in.debug("wrap error length", name, err)
		}
	}
	for _, key := range in.ownPropertyNames(orig) {
		if structuralKeys[key] || key == "captureStackTrace" {
			continue
		}
		if v := orig.Get(key); defined(v) {
			if err := wObj.DefineDataProperty(key, v, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
				in.debug("wrap error static", key, err)
			}
		}
	}

	in.Disguise(wrapped, name)
	return wrapped
}

// relocateOwnStack moves an instance's own stack field into the weak table
// and deletes it, unshadowing the prototype accessor. Instances without an
// own stack field are left alone.
func (in *Installer) relocateOwnStack(obj *goja.Object) {
	if obj == nil || in.ownDescriptorOf(obj, "stack") == nil {
		return
	}
	raw := obj.Get("stack")
	if err := obj.Delete("stack"); err != nil {
		in.debug("relocate own stack", "stack", err)
		return
	}
	if raw != nil && defined(raw) {
		in.stacks.Set(obj, raw)
	}
}

// inheritsErrorProto reports whether Error.prototype sits on the object's
// prototype chain, meaning the replacement stack accessor will serve reads.
func (in *Installer) inheritsErrorProto(obj *goja.Object) bool {
	for p := obj.Prototype(); p != nil; p = p.Prototype() {
		if p.StrictEquals(in.orig.errorProto) {
			return true
		}
	}
	return false
}

// errorBinding resolves the live global Error object, which is the wrapper
// once wrapErrorConstructors has run.
func (in *Installer) errorBinding() *goja.Object {
	if obj, ok := in.global.Get("Error").(*goja.Object); ok {
		return obj
	}
	return in.orig.errorCtor
}

// originalStack reads a stack through the pre-override accessor, for error
// instances whose stacks were never routed through the replacement setter.
func (in *Installer) originalStack(this goja.Value) goja.Value {
	if in.orig.stackGetter == nil {
		return goja.Undefined()
	}
	v, err := in.orig.stackGetter(this)
	if err != nil {
		return goja.Undefined()
	}
	return v
}
