package webapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/go-resty/resty/v2"
)

// Config defines Web API installation options.
type Config struct {
	FetchTimeout time.Duration // Hard timeout for fetch requests
	DisableFetch bool          // Skip fetch installation entirely
}

// DefaultConfig returns the default Web API configuration.
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 10 * time.Second,
	}
}

// Install injects every emulation into the runtime. It must run before the
// disguise bootstrap so the protection catalog finds the bindings.
func Install(vm *goja.Runtime, cfg Config) error {
	if vm == nil {
		return errors.New("webapi: nil runtime")
	}

	steps := []struct {
		name    string
		install func(*goja.Runtime) error
	}{
		{"crypto", installCrypto},
		{"encoding", installEncoding},
		{"url", installURL},
		{"performance", installPerformance},
	}
	for _, step := range steps {
		if err := step.install(vm); err != nil {
			return fmt.Errorf("webapi: %s: %w", step.name, err)
		}
	}

	if !cfg.DisableFetch {
		timeout := cfg.FetchTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client := resty.New().SetTimeout(timeout)
		if err := installFetch(vm, client); err != nil {
			return fmt.Errorf("webapi: fetch: %w", err)
		}
	}
	return nil
}
