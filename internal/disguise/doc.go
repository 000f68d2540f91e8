/*
Package disguise makes host-injected objects indistinguishable from engine
natives under introspection.

# Overview

Sandboxed code routinely fingerprints its environment: it stringifies
functions, enumerates global keys, pulls property descriptors, and inspects
type tags and error stacks to detect a non-native runtime. This package
intercepts every one of those probes for a goja VM whose Web APIs were
injected by the host:

  - Each cataloged callable stringifies as "function NAME() { [native code] }"
  - Constructors are walked: prototype methods, accessor pairs, and statics
    are disguised with their own display names
  - Object.keys, Object.getOwnPropertyNames, Object.getOwnPropertyDescriptors
    and Reflect.ownKeys hide the host-internal bindings, but only when the
    target is the global object itself
  - Error stacks are scrubbed of internal frames at capture time and on
    every read
  - Well-known singletons report corrected Symbol.toStringTag values

# Usage Example

	inst, err := disguise.New(vm, disguise.DefaultCatalog(), logger)
	if err != nil {
		return err
	}
	inst.Install()

Install runs exactly once per Installer (boolean latch) and must execute
after the host has injected its emulation objects and before any sandboxed
script runs.

# Failure Model

Every property mutation is best effort. A failed mutation leaves its target
undisguised and unregistered, is logged at debug level, and never propagates.
A partially disguised environment is preferred to a halted one.

# Security Model

This is not a capability boundary. Disguising changes what introspection
reports, never what code can invoke through a direct reference. The
relocated internal alias stays reachable for privileged host code.
*/
package disguise
