package resolver

import (
	"context"
	"log/slog"

	"shisho/internal/logging"
	"shisho/internal/media"
	"shisho/internal/services"
	"shisho/internal/store"
)

// Lookup is the remote metadata source. The AniDB client satisfies it; tests
// substitute a scripted implementation.
type Lookup interface {
	FileByIdentity(ctx context.Context, id media.Identity) (media.Episode, error)
	AnimeByID(ctx context.Context, animeID int64) (media.Anime, error)
	GroupByID(ctx context.Context, groupID int64) (media.Group, error)
}

// Hasher computes the content identity of a local file.
type Hasher interface {
	Hash(ctx context.Context, path string) (media.Identity, error)
}

// Resolver turns a local file path into full episode metadata, consulting
// the persistent cache before the remote service at every level. A file
// already resolved once never costs another network request, and neither do
// further episodes of an anime whose title is already cached.
type Resolver struct {
	hasher Hasher
	store  *store.Store
	lookup Lookup
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches a logger for cache and lookup activity.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logging.WithComponent(logger, "resolver")
		}
	}
}

// New constructs a resolver over the given hasher, cache store, and remote
// lookup.
func New(hasher Hasher, st *store.Store, lookup Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		hasher: hasher,
		store:  st,
		lookup: lookup,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve identifies the file at path and returns its episode, anime, and
// group metadata. Resolution is content-addressed: the path plays no part
// beyond locating the bytes to hash.
func (r *Resolver) Resolve(ctx context.Context, path string) (media.Resolved, error) {
	id, err := r.hasher.Hash(ctx, path)
	if err != nil {
		return media.Resolved{}, err
	}

	episode, err := r.episode(ctx, id, path)
	if err != nil {
		return media.Resolved{}, err
	}
	anime, err := r.anime(ctx, episode.AnimeID)
	if err != nil {
		return media.Resolved{}, err
	}
	group, err := r.group(ctx, episode.GroupID)
	if err != nil {
		return media.Resolved{}, err
	}

	return media.Resolved{Episode: episode, Anime: anime, Group: group}, nil
}

func (r *Resolver) episode(ctx context.Context, id media.Identity, path string) (media.Episode, error) {
	cached, err := r.store.EpisodeByIdentity(ctx, id)
	if err != nil {
		return media.Episode{}, services.Wrap(services.ErrFilesystem, "resolver", "episode", "read file cache", err)
	}
	if cached != nil {
		r.logger.Debug("file cache hit", logging.String(logging.FieldFile, path))
		return *cached, nil
	}

	episode, err := r.lookup.FileByIdentity(ctx, id)
	if err != nil {
		return media.Episode{}, err
	}
	// Record before edge: an identity edge pointing at a missing episode
	// record reads as a miss.
	if err := r.store.PutEpisode(ctx, episode); err != nil {
		r.logger.Warn("episode cache write failed", logging.Error(err))
	} else if err := r.store.PutEpisodeByIdentity(ctx, id, episode.EpisodeID); err != nil {
		r.logger.Warn("file cache write failed", logging.Error(err))
	}
	return episode, nil
}

func (r *Resolver) anime(ctx context.Context, animeID int64) (media.Anime, error) {
	cached, err := r.store.Anime(ctx, animeID)
	if err != nil {
		return media.Anime{}, services.Wrap(services.ErrFilesystem, "resolver", "anime", "read anime cache", err)
	}
	if cached != nil {
		return *cached, nil
	}

	anime, err := r.lookup.AnimeByID(ctx, animeID)
	if err != nil {
		return media.Anime{}, err
	}
	if err := r.store.PutAnime(ctx, anime); err != nil {
		r.logger.Warn("anime cache write failed", logging.Error(err))
	}
	return anime, nil
}

func (r *Resolver) group(ctx context.Context, groupID int64) (media.Group, error) {
	cached, err := r.store.Group(ctx, groupID)
	if err != nil {
		return media.Group{}, services.Wrap(services.ErrFilesystem, "resolver", "group", "read group cache", err)
	}
	if cached != nil {
		return *cached, nil
	}

	group, err := r.lookup.GroupByID(ctx, groupID)
	if err != nil {
		return media.Group{}, err
	}
	if err := r.store.PutGroup(ctx, group); err != nil {
		r.logger.Warn("group cache write failed", logging.Error(err))
	}
	return group, nil
}
