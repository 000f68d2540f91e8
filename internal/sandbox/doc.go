/*
Package sandbox provides isolated JavaScript execution runtimes.

# Overview

Each Runtime wraps a goja VM with resource controls and a hardened global
surface. On creation the runtime:

 1. Removes Node.js entry points (require, process, module, exports)
 2. Installs console capture and no-op timers
 3. Installs the Web API emulations (crypto, encoding, URL, fetch, performance)
 4. Binds the host-internal namespace and runs the disguise bootstrap

The disguise bootstrap runs last so every injected binding is cataloged
before the reflection surface locks down.

# Execution Model

Execute runs a script with a hard timeout enforced through goja's interrupt
mechanism. A runtime is single-flight: concurrent Execute calls serialize on
an internal mutex. Use a Pool when scripts must run in parallel.

# Security Model

Sandboxed code cannot reach the filesystem, spawn processes, or observe the
host-injected machinery through stringification, key enumeration, property
descriptors, or error stacks.
*/
package sandbox
