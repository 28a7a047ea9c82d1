package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shisho/internal/media"
)

// Credentials holds the stored AniDB login.
type Credentials struct {
	Username string
	Password string
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Credentials returns the stored login, or nil when none has been saved yet.
func (s *Store) Credentials(ctx context.Context) (*Credentials, error) {
	ctx = ensureContext(ctx)
	var creds Credentials
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password FROM credentials WHERE id = 1",
	).Scan(&creds.Username, &creds.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return &creds, nil
}

// PutCredentials stores the login, replacing any previous one.
func (s *Store) PutCredentials(ctx context.Context, creds Credentials) error {
	if strings.TrimSpace(creds.Username) == "" {
		return errors.New("username required")
	}
	err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO credentials (id, username, password, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET username = excluded.username, password = excluded.password, updated_at = excluded.updated_at`,
		creds.Username, creds.Password, nowStamp())
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// EpisodeByIdentity returns the cached episode for a content identity, or
// nil on a cache miss. The file cache stores only the identity-to-episode-id
// edge; the record itself lives in the episode cache, so distinct files
// referencing the same episode share one entry. Identity is
// content-addressed: path changes never invalidate this mapping.
func (s *Store) EpisodeByIdentity(ctx context.Context, id media.Identity) (*media.Episode, error) {
	ctx = ensureContext(ctx)
	var episodeID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT episode_id FROM file_cache WHERE ed2k = ? AND size_bytes = ?",
		id.Hash, id.SizeBytes,
	).Scan(&episodeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file cache: %w", err)
	}
	return s.EpisodeByID(ctx, episodeID)
}

// PutEpisodeByIdentity caches the identity-to-episode-id edge. The episode
// record must be stored with PutEpisode first; an edge to an absent episode
// reads as a cache miss.
func (s *Store) PutEpisodeByIdentity(ctx context.Context, id media.Identity, episodeID int64) error {
	if id.Hash == "" {
		return errors.New("content hash required")
	}
	if episodeID == 0 {
		return errors.New("episode id required")
	}
	err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO file_cache (ed2k, size_bytes, episode_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(ed2k, size_bytes) DO UPDATE SET episode_id = excluded.episode_id`,
		id.Hash, id.SizeBytes, episodeID, nowStamp())
	if err != nil {
		return fmt.Errorf("store file cache entry: %w", err)
	}
	return nil
}

// EpisodeByID returns the cached episode keyed by its AniDB id, or nil.
// Distinct files can reference the same episode, so this cache is independent
// of the file that produced the entry.
func (s *Store) EpisodeByID(ctx context.Context, episodeID int64) (*media.Episode, error) {
	ctx = ensureContext(ctx)
	ep := media.Episode{EpisodeID: episodeID}
	err := s.db.QueryRowContext(ctx,
		`SELECT episode_number, episode_name, anime_id, group_id FROM episode_cache WHERE episode_id = ?`,
		episodeID,
	).Scan(&ep.Number, &ep.Name, &ep.AnimeID, &ep.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read episode cache: %w", err)
	}
	return &ep, nil
}

// PutEpisode caches an episode by its AniDB id.
func (s *Store) PutEpisode(ctx context.Context, ep media.Episode) error {
	if ep.EpisodeID == 0 {
		return errors.New("episode id required")
	}
	err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO episode_cache (episode_id, episode_number, episode_name, anime_id, group_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(episode_id) DO UPDATE SET
		   episode_number = excluded.episode_number, episode_name = excluded.episode_name,
		   anime_id = excluded.anime_id, group_id = excluded.group_id`,
		ep.EpisodeID, ep.Number, ep.Name, ep.AnimeID, ep.GroupID, nowStamp())
	if err != nil {
		return fmt.Errorf("store episode cache entry: %w", err)
	}
	return nil
}

// Anime returns the cached anime record, or nil on a miss.
func (s *Store) Anime(ctx context.Context, animeID int64) (*media.Anime, error) {
	ctx = ensureContext(ctx)
	anime := media.Anime{AnimeID: animeID}
	err := s.db.QueryRowContext(ctx,
		"SELECT title_romaji FROM anime_cache WHERE anime_id = ?", animeID,
	).Scan(&anime.TitleRomaji)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read anime cache: %w", err)
	}
	return &anime, nil
}

// PutAnime caches an anime record by id.
func (s *Store) PutAnime(ctx context.Context, anime media.Anime) error {
	if anime.AnimeID == 0 {
		return errors.New("anime id required")
	}
	err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO anime_cache (anime_id, title_romaji, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(anime_id) DO UPDATE SET title_romaji = excluded.title_romaji`,
		anime.AnimeID, anime.TitleRomaji, nowStamp())
	if err != nil {
		return fmt.Errorf("store anime cache entry: %w", err)
	}
	return nil
}

// Group returns the cached group record, or nil on a miss.
func (s *Store) Group(ctx context.Context, groupID int64) (*media.Group, error) {
	ctx = ensureContext(ctx)
	group := media.Group{GroupID: groupID}
	err := s.db.QueryRowContext(ctx,
		"SELECT group_name FROM group_cache WHERE group_id = ?", groupID,
	).Scan(&group.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read group cache: %w", err)
	}
	return &group, nil
}

// PutGroup caches a group record by id.
func (s *Store) PutGroup(ctx context.Context, group media.Group) error {
	if group.GroupID == 0 {
		return errors.New("group id required")
	}
	err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO group_cache (group_id, group_name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(group_id) DO UPDATE SET group_name = excluded.group_name`,
		group.GroupID, group.Name, nowStamp())
	if err != nil {
		return fmt.Errorf("store group cache entry: %w", err)
	}
	return nil
}
