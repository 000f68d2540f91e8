package disguise

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	san := NewSanitizer(DefaultCatalog().StackPatterns, nil)

	tests := []struct {
		name  string
		stack string
		want  string
	}{
		{
			name:  "empty input unchanged",
			stack: "",
			want:  "",
		},
		{
			name:  "clean stack unchanged",
			stack: "Error: boom\n    at user (app.js:2:3)",
			want:  "Error: boom\n    at user (app.js:2:3)",
		},
		{
			name: "internal runtime frame removed",
			stack: "Error: boom\n" +
				"    at hook (njscore://internal/boot.js:1:1)\n" +
				"    at user (app.js:2:3)",
			want: "Error: boom\n    at user (app.js:2:3)",
		},
		{
			name: "internal hook frame removed",
			stack: "Error: boom\n" +
				"    at __njscore_trap (eval:4:9)\n" +
				"    at user (app.js:2:3)",
			want: "Error: boom\n    at user (app.js:2:3)",
		},
		{
			name: "extension frame removed",
			stack: "Error: boom\n" +
				"    at inject (chrome-extension://abcdef/content.js:10:5)\n" +
				"    at user (app.js:2:3)",
			want: "Error: boom\n    at user (app.js:2:3)",
		},
		{
			name:  "blank runs collapse to two newlines",
			stack: "Error: boom\n\n\n\n    at user (app.js:2:3)",
			want:  "Error: boom\n\n    at user (app.js:2:3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := san.Sanitize(tt.stack); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	san := NewSanitizer(DefaultCatalog().StackPatterns, nil)

	stacks := []string{
		"",
		"Error: boom\n    at user (app.js:2:3)",
		"Error: boom\n    at hook (njscore://internal/boot.js:1:1)\n\n\n    at user (app.js:2:3)",
	}
	for _, s := range stacks {
		once := san.Sanitize(s)
		if twice := san.Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent: %q -> %q", once, twice)
		}
	}
}

func TestSanitizerDropsInvalidPatterns(t *testing.T) {
	san := NewSanitizer([]string{`(unclosed`, `(?m)^[ \t]*at .*__njscore[^\n]*\n?`}, nil)

	got := san.Sanitize("Error\n    at __njscore_trap (eval:1:1)\n    at user (app.js:1:1)")
	if strings.Contains(got, "__njscore") {
		t.Errorf("valid pattern not applied after invalid one dropped: %q", got)
	}
}

func TestStackAccessorSanitizesOnRead(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	got := mustRun(t, vm, `
		var o = Object.create(Error.prototype);
		o.stack = "Error: boom\n" +
			"    at hook (njscore://internal/boot.js:1:1)\n" +
			"    at user (app.js:2:3)";
		o.stack;
	`).String()

	if strings.Contains(got, "njscore://") {
		t.Errorf("internal frame leaked through stack getter: %q", got)
	}
	if !strings.Contains(got, "app.js") {
		t.Errorf("user frame lost during sanitization: %q", got)
	}
}

func TestStackAccessorRereadStable(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	// The setter stores raw text; the getter re-sanitizes on every read, so
	// repeated reads agree.
	if !mustRun(t, vm, `
		var o = Object.create(Error.prototype);
		o.stack = "Error: x\n    at __njscore_trap (eval:1:1)\n    at u (a.js:1:1)";
		o.stack === o.stack;
	`).ToBoolean() {
		t.Error("repeated stack reads disagree")
	}
}

func TestRealErrorStackSanitizedOnRead(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	// Instances get their own stack field relocated at construction, so the
	// accessor pair serves both the assignment and the read.
	got := mustRun(t, vm, `
		var e = new Error("boom");
		e.stack = "Error: boom\n" +
			"    at hook (njscore://internal/boot.js:1:1)\n" +
			"    at user (app.js:2:3)";
		e.stack;
	`).String()

	if strings.Contains(got, "njscore://") {
		t.Errorf("internal frame leaked through real error instance: %q", got)
	}
	if !strings.Contains(got, "app.js") {
		t.Errorf("user frame lost during sanitization: %q", got)
	}
}

func TestRealErrorStackReadable(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	// The construction-time stack survives relocation and reads stay stable.
	if got := mustRun(t, vm, `typeof new Error("x").stack`).String(); got != "string" {
		t.Errorf("constructed error lost its stack: typeof = %q", got)
	}
	if !mustRun(t, vm, `
		var e = new TypeError("y");
		e.stack === e.stack;
	`).ToBoolean() {
		t.Error("repeated stack reads on a constructed error disagree")
	}
}

func TestErrorConstructorsSubstitutable(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	tests := []struct {
		name   string
		script string
	}{
		{
			name:   "instanceof chain",
			script: `var e = new TypeError("m"); e instanceof TypeError && e instanceof Error`,
		},
		{
			name:   "message preserved",
			script: `new RangeError("out").message === "out"`,
		},
		{
			name:   "back-reference",
			script: `Error.prototype.constructor === Error && new Error("x").constructor === Error`,
		},
		{
			name:   "thrown and caught",
			script: `(function () { try { throw new RangeError("r") } catch (e) { return e instanceof RangeError } })()`,
		},
		{
			name:   "existing prototype object kept",
			script: `Object.prototype.toString.call(new Error("x")) === "[object Error]"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !mustRun(t, vm, tt.script).ToBoolean() {
				t.Errorf("wrapped constructor not substitutable: %s", tt.name)
			}
		})
	}

	want := "function Error() { [native code] }"
	if got := mustRun(t, vm, `Error.toString()`).String(); got != want {
		t.Errorf("Error.toString() = %q, want %q", got, want)
	}
}

func TestEngineThrownErrorStackReadable(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	// Errors raised inside the engine never pass through the wrappers; their
	// stacks must still read as plain strings.
	got := mustRun(t, vm, `
		(function () {
			try { null.x } catch (e) { return typeof e.stack }
		})()
	`).String()
	if got != "string" {
		t.Errorf("engine-thrown error stack: typeof = %q", got)
	}
}

func TestCaptureStackTraceWrapped(t *testing.T) {
	vm, in := newTestInstaller(t)
	in.Install()

	if !mustRun(t, vm, `typeof Error.captureStackTrace === "function"`).ToBoolean() {
		t.Skip("engine does not provide Error.captureStackTrace")
	}

	got := mustRun(t, vm, `
		var target = {};
		Error.captureStackTrace(target);
		typeof target.stack;
	`).String()
	if got != "string" {
		t.Errorf("captureStackTrace wrapper broke capture: stack is %q", got)
	}

	want := "function captureStackTrace() { [native code] }"
	if s := mustRun(t, vm, `Error.captureStackTrace.toString()`).String(); s != want {
		t.Errorf("captureStackTrace not disguised: %q", s)
	}

	// Error targets get their captured stack relocated into the side table
	// so the accessor pair serves later reads.
	if !mustRun(t, vm, `
		var e = new Error("x");
		Error.captureStackTrace(e);
		Object.getOwnPropertyDescriptor(e, "stack") === undefined && typeof e.stack === "string";
	`).ToBoolean() {
		t.Error("captured stack left an own field shadowing the accessor")
	}
}
