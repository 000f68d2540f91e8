package disguise

import (
	"testing"

	"github.com/dop251/goja"
)

func TestInstallDisguisesCatalogedConstructor(t *testing.T) {
	vm, in := newTestInstaller(t)

	mustRun(t, vm, `function URL(input) { this.href = String(input) }`)
	in.Install()

	want := "function URL() { [native code] }"
	for _, script := range []string{
		`URL.toString()`,
		`Function.prototype.toString.call(URL)`,
		`"" + URL`,
	} {
		if got := mustRun(t, vm, script).String(); got != want {
			t.Errorf("%s = %q, want %q", script, got, want)
		}
	}
}

func TestGlobalToStringFixedUnderMutation(t *testing.T) {
	vm, in := newTestInstaller(t)

	mustRun(t, vm, `function URL(input) {}`)
	in.Install()

	// Mutating other properties never changes what either stringification
	// route reports.
	mustRun(t, vm, `Object.defineProperty(URL, "name", { value: "Zed", configurable: true })`)

	want := "function URL() { [native code] }"
	if got := mustRun(t, vm, `URL.toString()`).String(); got != want {
		t.Errorf("own toString = %q, want %q", got, want)
	}
	if got := mustRun(t, vm, `Function.prototype.toString.call(URL)`).String(); got != want {
		t.Errorf("routed toString = %q, want %q", got, want)
	}
}

func TestGlobalToStringDelegatesForOthers(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	got := mustRun(t, vm, `(function visible() { return 3 }).toString()`).String()
	if got == "function visible() { [native code] }" {
		t.Error("undisguised function reported native code")
	}
}

func TestInstallIdempotent(t *testing.T) {
	vm, in := newTestInstaller(t)

	in.Install()
	hooks := len(in.hooks)
	in.Install()

	if len(in.hooks) != hooks {
		t.Errorf("second Install added hooks: %d -> %d", hooks, len(in.hooks))
	}
	if !in.Installed() {
		t.Error("Installed() = false after Install")
	}
	if got := mustRun(t, vm, `typeof Object.keys`).String(); got != "function" {
		t.Errorf("Object.keys broken after repeated Install: %s", got)
	}
}

func TestInternalNamespaceRelocated(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	// The alias is a real own key, reachable by direct reference for
	// privileged host code.
	if !mustRun(t, vm, `Object.prototype.hasOwnProperty.call(globalThis, "__njscore_priv__")`).ToBoolean() {
		t.Error("internal alias missing from global object")
	}
	if !mustRun(t, vm, `globalThis.__njscore_priv__ === globalThis.__njscore__`).ToBoolean() {
		t.Error("alias does not reference the internal namespace")
	}

	// But enumeration never reports it, while an unrelated object carrying
	// the same key enumerates normally.
	if !mustRun(t, vm, `Object.keys(globalThis).indexOf("__njscore_priv__") === -1`).ToBoolean() {
		t.Error("alias leaked through global enumeration")
	}
	if !mustRun(t, vm, `Object.keys({ "__njscore_priv__": 1 }).length === 1`).ToBoolean() {
		t.Error("same-named key filtered on unrelated object")
	}
}

func TestInstallToleratesMissingInternalBinding(t *testing.T) {
	vm := goja.New()
	in, err := New(vm, DefaultCatalog(), nil)
	if err != nil {
		t.Fatalf("Failed to create installer: %v", err)
	}
	in.Install()

	if mustRun(t, vm, `Object.prototype.hasOwnProperty.call(globalThis, "__njscore_priv__")`).ToBoolean() {
		t.Error("alias created without a binding to relocate")
	}
}

func TestTagCorrection(t *testing.T) {
	vm, in := newTestInstaller(t)

	crypto := vm.NewObject()
	crypto.Set("getRandomValues", func(call goja.FunctionCall) goja.Value { return call.Argument(0) })
	vm.Set("crypto", crypto)
	perf := vm.NewObject()
	perf.Set("now", func(goja.FunctionCall) goja.Value { return vm.ToValue(0.0) })
	vm.Set("performance", perf)

	in.Install()

	tests := []struct {
		script string
		want   string
	}{
		{`Object.prototype.toString.call(crypto)`, "[object Crypto]"},
		{`Object.prototype.toString.call(performance)`, "[object Performance]"},
	}
	for _, tt := range tests {
		if got := mustRun(t, vm, tt.script).String(); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.script, got, tt.want)
		}
	}

	// Tag is non-enumerable and reconfigurable.
	if !mustRun(t, vm, `Object.getOwnPropertyDescriptor(crypto, Symbol.toStringTag).configurable`).ToBoolean() {
		t.Error("toStringTag not reconfigurable")
	}
	if mustRun(t, vm, `Object.getOwnPropertyDescriptor(crypto, Symbol.toStringTag).enumerable`).ToBoolean() {
		t.Error("toStringTag enumerable")
	}
}

func TestNamespaceMethodsDisguised(t *testing.T) {
	vm, in := newTestInstaller(t)

	crypto := vm.NewObject()
	crypto.Set("getRandomValues", func(call goja.FunctionCall) goja.Value { return call.Argument(0) })
	subtle := vm.NewObject()
	subtle.Set("digest", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	crypto.Set("subtle", subtle)
	vm.Set("crypto", crypto)

	in.Install()

	tests := []struct {
		script string
		want   string
	}{
		{`crypto.getRandomValues.toString()`, "function getRandomValues() { [native code] }"},
		{`crypto.getRandomValues.name`, "getRandomValues"},
		{`crypto.subtle.digest.toString()`, "function digest() { [native code] }"},
		{`crypto.subtle.digest.name`, "digest"},
	}
	for _, tt := range tests {
		if got := mustRun(t, vm, tt.script).String(); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.script, got, tt.want)
		}
	}
}

func TestMissingCatalogEntriesSkipped(t *testing.T) {
	// The default catalog names far more bindings than this bare VM has;
	// installation must not fail or create any of them.
	vm, in := newTestInstaller(t)
	in.Install()

	if got := mustRun(t, vm, `typeof WebSocket`).String(); got != "undefined" {
		t.Errorf("WebSocket = %s, want undefined", got)
	}
}

func TestNewRejectsNilRuntime(t *testing.T) {
	if _, err := New(nil, DefaultCatalog(), nil); err == nil {
		t.Error("New(nil) did not fail")
	}
}
