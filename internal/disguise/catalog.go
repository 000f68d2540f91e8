package disguise

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Catalog is the read-only protection configuration: which global bindings
// get disguised, which keys are hidden from global enumeration, which stack
// frames are scrubbed, and which singletons get corrected type tags.
// A Catalog is never mutated after installation.
type Catalog struct {
	// Constructors are global bindings walked as classes (prototype and
	// statics included). Names missing from the VM are silently skipped.
	Constructors []string `yaml:"constructors"`

	// Functions are bare global callables disguised directly.
	Functions []string `yaml:"functions"`

	// Namespaces are singleton objects whose listed methods are disguised
	// individually. No prototype walk is performed.
	Namespaces []Namespace `yaml:"namespaces"`

	// HiddenProps never appear in enumeration results of the global object.
	// The internal binding and alias are always treated as hidden.
	HiddenProps []string `yaml:"hidden"`

	// StackPatterns are ordered regular expressions; each removes every
	// matching frame line from captured stacks.
	StackPatterns []string `yaml:"stack_patterns"`

	// Tags maps singleton binding names to their Symbol.toStringTag value.
	Tags map[string]string `yaml:"tags"`

	// InternalBinding is the host-internal namespace key on the global
	// object; InternalAlias is the hidden key it is relocated to.
	InternalBinding string `yaml:"internal_binding"`
	InternalAlias   string `yaml:"internal_alias"`
}

// Namespace lists the disguised methods of one singleton object. Binding may
// be a dotted path resolved from the global object ("crypto.subtle").
type Namespace struct {
	Binding string   `yaml:"binding"`
	Methods []string `yaml:"methods"`
}

// DefaultCatalog returns the protection catalog for the standard surface.
// It intentionally lists more names than any single VM provides; missing
// bindings are skipped during installation.
func DefaultCatalog() Catalog {
	return Catalog{
		Constructors: []string{
			"URL",
			"URLSearchParams",
			"TextEncoder",
			"TextDecoder",
			"AbortController",
			"AbortSignal",
			"Headers",
			"Request",
			"Response",
			"Blob",
			"File",
			"FormData",
			"Event",
			"EventTarget",
			"CustomEvent",
			"MessageChannel",
			"MessagePort",
			"WebSocket",
			"XMLHttpRequest",
			"DOMException",
		},
		Functions: []string{
			"fetch",
			"btoa",
			"atob",
			"setTimeout",
			"setInterval",
			"clearTimeout",
			"clearInterval",
			"queueMicrotask",
			"structuredClone",
		},
		Namespaces: []Namespace{
			{
				Binding: "crypto",
				Methods: []string{"getRandomValues", "randomUUID"},
			},
			{
				Binding: "crypto.subtle",
				Methods: []string{
					"digest", "encrypt", "decrypt", "sign", "verify",
					"generateKey", "importKey", "exportKey",
				},
			},
			{
				Binding: "console",
				Methods: []string{
					"log", "warn", "error", "info", "debug", "trace",
					"assert", "dir", "group", "groupEnd", "time", "timeEnd",
				},
			},
			{
				Binding: "performance",
				Methods: []string{
					"now", "mark", "measure", "getEntries",
					"getEntriesByName", "getEntriesByType",
					"clearMarks", "clearMeasures",
				},
			},
		},
		HiddenProps: []string{},
		StackPatterns: []string{
			`(?m)^[ \t]*at .*(?:chrome-)?extension://[^\n]*\n?`,
			`(?m)^[ \t]*at .*njscore://[^\n]*\n?`,
			`(?m)^[ \t]*at .*__njscore[^\n]*\n?`,
		},
		Tags: map[string]string{
			"crypto":      "Crypto",
			"performance": "Performance",
			"console":     "console",
		},
		InternalBinding: "__njscore__",
		InternalAlias:   "__njscore_priv__",
	}
}

// LoadCatalog reads a catalog from a YAML file. Unset sections fall back to
// the defaults, so a file may override only the parts it cares about.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	cat := DefaultCatalog()
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return cat, nil
}

// hiddenSet returns the effective hidden-key set, always including the
// internal binding and its alias.
func (c Catalog) hiddenSet() map[string]bool {
	hidden := make(map[string]bool, len(c.HiddenProps)+2)
	for _, key := range c.HiddenProps {
		hidden[key] = true
	}
	if c.InternalBinding != "" {
		hidden[c.InternalBinding] = true
	}
	if c.InternalAlias != "" {
		hidden[c.InternalAlias] = true
	}
	return hidden
}
