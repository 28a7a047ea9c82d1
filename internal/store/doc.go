// Package store persists credentials and the three metadata caches
// (file identity to episode, anime title, release group) in SQLite.
//
// Each write commits before returning; a crash after a successful call never
// loses the entry. The schema is created on first use and guarded by a
// version check. Access is single-process; a flock taken by the CLI enforces
// that at the boundary.
package store
