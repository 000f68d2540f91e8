// Package main is the entry point for the njs script runner.
//
// The runner executes a JavaScript file (or an inline -e expression) inside a
// sandboxed goja runtime with the Web API emulations and the anti-detection
// disguise layer installed.
//
// Configuration:
//   - Environment variables (12-factor): SANDBOX_*, LOG_*, CATALOG_PATH
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Run a script file
//	./njs script.js
//
//	# Inline expression
//	./njs -e "crypto.randomUUID()"
//
//	# Custom protection catalog
//	./njs -catalog catalog.yaml script.js
//
// Console output goes to stderr; the JSON-encoded result value goes to
// stdout. A non-zero exit code signals a script error.
package main
