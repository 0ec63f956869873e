// Package internal contains the core implementation packages for starlay.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the starlay CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - registry: Built-in symbol registry with namespaces and freezing
//   - overrides: Override tables resolved by ordinary user scripts
//   - builtins: The privileged _builtins view and value coercion
//   - semantics: Read-only semantics flag store
//   - loader: Trusted exports script evaluation
//   - injection: The environment assembly sequence
//   - prelude: Stock built-in symbol catalog
//   - config: Configuration management with validation
//   - logging: Structured logging built on log/slog
//   - watcher: Exports file monitoring with debouncing
//
// # Concurrency Model
//
// Environment assembly is strictly sequential; everything an assembled
// environment hands out (snapshot, view, sealed tables) is immutable
// and safe for unsynchronized concurrent reads.
package internal
