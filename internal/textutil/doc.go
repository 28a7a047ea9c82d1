// Package textutil provides filename sanitization for synthesized rename
// targets.
package textutil
