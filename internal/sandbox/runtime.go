package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/2926295173/never-jscore/internal/disguise"
	"github.com/2926295173/never-jscore/internal/logging"
	"github.com/2926295173/never-jscore/internal/webapi"
)

// Version is reported through the host-internal namespace.
const Version = "0.3.0"

// Runtime wraps a goja VM with resource controls and a disguised surface.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	log    *logging.Logger
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex

	interrupt chan struct{}
}

// New creates a sandboxed runtime.
func New(config Config, log *logging.Logger) (*Runtime, error) {
	if log == nil {
		log = logging.Nop()
	}

	r := &Runtime{
		config:    config,
		log:       log,
		console:   []LogEntry{},
		interrupt: make(chan struct{}),
	}
	if err := r.setup(); err != nil {
		return nil, err
	}
	return r, nil
}

// setup builds a fresh VM. Called from New and Reset.
func (r *Runtime) setup() error {
	vm := goja.New()
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}
	r.vm = vm

	if err := r.setupGlobals(); err != nil {
		return err
	}

	if r.config.EnableWebAPIs {
		cfg := webapi.DefaultConfig()
		if r.config.FetchTimeout > 0 {
			cfg.FetchTimeout = r.config.FetchTimeout
		}
		if err := webapi.Install(vm, cfg); err != nil {
			return fmt.Errorf("install web apis: %w", err)
		}
	}

	if r.config.Disguise {
		catalog := disguise.DefaultCatalog()
		if r.config.Catalog != nil {
			catalog = *r.config.Catalog
		}
		installer, err := disguise.New(vm, catalog, r.log)
		if err != nil {
			return fmt.Errorf("disguise bootstrap: %w", err)
		}
		installer.Install()
	}

	return nil
}

// setupGlobals strips Node.js entry points and installs console capture,
// no-op timers, and the host-internal namespace.
func (r *Runtime) setupGlobals() error {
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are accepted and discarded. Scripts relying on deferred work
	// observe the same call surface without gaining a scheduling primitive.
	noop := func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)
	r.vm.Set("clearTimeout", noop)
	r.vm.Set("clearInterval", noop)

	internal := r.vm.NewObject()
	internal.Set("engine", "goja")
	internal.Set("version", Version)
	return r.vm.Set("__njscore__", internal)
}

// Execute runs a script with timeout and interrupt handling.
func (r *Runtime) Execute(ctx context.Context, script string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, fmt.Errorf("runtime is closed")
	}

	start := time.Now()
	result := &Result{Console: []LogEntry{}}

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-r.interrupt:
			return
		}
	}()

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()

	val, err := r.vm.RunString(script)

	close(r.interrupt)
	r.interrupt = make(chan struct{})
	r.vm.ClearInterrupt()

	result.Duration = time.Since(start)

	r.consoleMu.Lock()
	result.Console = append([]LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		result.Error = err
		return result, err
	}

	result.Value = exportValue(val)
	return result, nil
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset rebuilds the VM from scratch, discarding all script state.
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()

	return r.setup()
}

// Close releases resources.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
