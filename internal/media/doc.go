// Package media defines the domain records shared across the resolution
// pipeline: content identities, episode/anime/group entries, and the merged
// resolved record consumed by the renamer.
package media
