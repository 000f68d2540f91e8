// Package config provides 12-factor configuration management for the
// never-jscore runtime and CLI.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Sandbox: execution timeout, pool size, feature toggles
//   - Logging: log level and output format
//   - Catalog: optional path to a YAML protection catalog override
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Sandbox timeout: %dms\n", cfg.Sandbox.TimeoutMS)
//
// Environment Variables:
//   - SANDBOX_TIMEOUT_MS, SANDBOX_POOL, SANDBOX_CONSOLE, SANDBOX_WEBAPI,
//     SANDBOX_DISGUISE
//   - LOG_LEVEL, LOG_DEV
//   - CATALOG_PATH
package config
