/*
Package webapi injects browser-style API emulations into a goja runtime.

These are the host-provided objects the disguise layer protects: crypto
(getRandomValues, randomUUID, subtle.digest), URL and URLSearchParams,
TextEncoder/TextDecoder, btoa/atob, performance, and fetch. They are
deliberately minimal emulations: functional enough for sandboxed scripts,
with fidelity of their introspection surface delegated entirely to the
disguise bootstrap that runs after injection.

fetch is backed by a resty client with a hard timeout and resolves its
promises synchronously within the call, matching the single-threaded
cooperative execution model of the sandbox.
*/
package webapi
