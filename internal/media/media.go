package media

import "fmt"

// Identity uniquely identifies a file's content for AniDB lookups. Two files
// with identical bytes share an identity regardless of path, so it doubles as
// the cache key for the file-to-episode mapping.
type Identity struct {
	Hash      string
	SizeBytes int64
}

// String renders the identity in the form used for logging.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%d", id.Hash, id.SizeBytes)
}

// IsZero reports whether the identity carries no content hash.
func (id Identity) IsZero() bool {
	return id.Hash == "" && id.SizeBytes == 0
}

// Episode is the AniDB episode entry a file resolves to. Number is kept as a
// string because AniDB uses prefixed numbering for specials ("S1", "C2").
type Episode struct {
	EpisodeID int64
	Number    string
	Name      string
	AnimeID   int64
	GroupID   int64
}

// Anime carries the romaji title for an AniDB anime id.
type Anime struct {
	AnimeID     int64
	TitleRomaji string
}

// Group carries the release group name for an AniDB group id.
type Group struct {
	GroupID int64
	Name    string
}

// Resolved is the fully merged metadata record for one file. All three parts
// are required before a rename can be synthesized.
type Resolved struct {
	Episode Episode
	Anime   Anime
	Group   Group
}
