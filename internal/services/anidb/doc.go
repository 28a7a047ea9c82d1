// Package anidb implements the AniDB UDP API client: session lifecycle,
// typed FILE/ANIME/GROUP lookups, rate limiting, and retry discipline.
//
// The server enforces a global per-client rate limit, so the client
// serializes all outbound traffic and spaces consecutive requests by a
// configured minimum interval. Flood replies trigger a longer blocking
// cooldown before the same request is retried; network timeouts are retried
// with bounded exponential backoff. A rejected session causes exactly one
// automatic re-login before the failure is surfaced as fatal.
package anidb
