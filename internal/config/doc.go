// Package config loads and validates the TOML configuration that drives
// shisho: data directories, AniDB client parameters, the external hasher
// binary, and logging output. Missing files fall back to defaults so a first
// run needs no setup beyond credentials.
package config
