// Package ed2k adapts the external ed2k hashing utility into the
// (path) -> (hash, size) contract the resolver depends on. The exact binary
// is a deployment detail configured at wiring time.
package ed2k
