// Package adapters implements the adapter factory for external systems.
//
// This package provides:
//   - A closed set of adapter categories (web, database, async, ml)
//   - A registry mapping category and provider name to a constructor
//   - The shared lifecycle contract (Initialize, HandleData, Close)
//   - Futures for the deferred results of async adapters
//
// Concrete providers live in sub-packages and are wired together by
// adapters/builtin.
package adapters
