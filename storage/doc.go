// Package storage provides the key-value persistence collaborator the session
// client uses to keep token material across process restarts.
//
// # Contract
//
// Values are opaque strings. Every key is independently readable, writable,
// and deletable; absence of a key is the valid logged-out state, reported as
// [ErrNotFound] rather than an empty value.
//
// # Architecture boundaries
//
// This package owns the [Store] interface and its Redis and in-memory
// implementations. It does NOT know what the values mean — token semantics,
// key naming, and the memory-first write ordering belong to the client.
//
// # What this package must NOT do
//
//   - Parse or validate tokens.
//   - Import the root dclass package (no upward imports).
//   - Cache values outside the backing store.
package storage
