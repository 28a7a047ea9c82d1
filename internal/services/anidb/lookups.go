package anidb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"shisho/internal/media"
	"shisho/internal/services"
)

const (
	// fileFmask selects aid, eid, and gid in the FILE reply (the fid leads
	// every FILE data line regardless of mask).
	fileFmask = "7000000000"
	// fileAmask selects the episode number and episode name.
	fileAmask = "0000C000"
	// animeAmask selects the aid (byte 1 bit 7) and romaji title (byte 2
	// bit 7); the ANIME amask is seven bytes wide.
	animeAmask = "80800000000000"
)

// FileByIdentity looks up the episode a content identity belongs to.
// Unknown and ambiguous hashes both surface as ErrUnidentified; the file is
// simply not resolvable against the remote database.
func (c *Client) FileByIdentity(ctx context.Context, id media.Identity) (media.Episode, error) {
	rep, err := c.request(ctx, "FILE", []tag{
		{"size", strconv.FormatInt(id.SizeBytes, 10)},
		{"ed2k", id.Hash},
		{"fmask", fileFmask},
		{"amask", fileAmask},
	})
	if err != nil {
		return media.Episode{}, err
	}

	switch rep.code {
	case CodeFile:
		fields, err := rep.dataFields(6)
		if err != nil {
			return media.Episode{}, services.Wrap(services.ErrProtocol, "anidb", "FILE", "truncated reply", err)
		}
		aid, errA := strconv.ParseInt(fields[1], 10, 64)
		eid, errE := strconv.ParseInt(fields[2], 10, 64)
		gid, errG := strconv.ParseInt(fields[3], 10, 64)
		if errA != nil || errE != nil || errG != nil {
			return media.Episode{}, services.Wrap(services.ErrProtocol, "anidb", "FILE",
				fmt.Sprintf("non-numeric ids in reply %q", rep.data[0]), nil)
		}
		return media.Episode{
			EpisodeID: eid,
			Number:    fields[4],
			Name:      strings.Join(fields[5:], "|"),
			AnimeID:   aid,
			GroupID:   gid,
		}, nil
	case CodeNoSuchFile:
		return media.Episode{}, services.Wrap(services.ErrUnidentified, "anidb", "FILE", "no such file", nil)
	case CodeMultipleFiles:
		return media.Episode{}, services.Wrap(services.ErrUnidentified, "anidb", "FILE", "multiple files matched", nil)
	default:
		return media.Episode{}, unexpectedReply("FILE", rep)
	}
}

// AnimeByID fetches the romaji title for an anime id.
func (c *Client) AnimeByID(ctx context.Context, animeID int64) (media.Anime, error) {
	rep, err := c.request(ctx, "ANIME", []tag{
		{"aid", strconv.FormatInt(animeID, 10)},
		{"amask", animeAmask},
	})
	if err != nil {
		return media.Anime{}, err
	}

	switch rep.code {
	case CodeAnime:
		fields, err := rep.dataFields(2)
		if err != nil {
			return media.Anime{}, services.Wrap(services.ErrProtocol, "anidb", "ANIME", "truncated reply", err)
		}
		aid, perr := strconv.ParseInt(fields[0], 10, 64)
		if perr != nil {
			return media.Anime{}, services.Wrap(services.ErrProtocol, "anidb", "ANIME",
				fmt.Sprintf("non-numeric aid in reply %q", rep.data[0]), nil)
		}
		title := strings.TrimSpace(fields[1])
		if title == "" {
			return media.Anime{}, services.Wrap(services.ErrProtocol, "anidb", "ANIME", "reply carries no title", nil)
		}
		return media.Anime{AnimeID: aid, TitleRomaji: title}, nil
	case CodeNoSuchAnime:
		return media.Anime{}, services.Wrap(services.ErrUnidentified, "anidb", "ANIME",
			fmt.Sprintf("no such anime %d", animeID), nil)
	default:
		return media.Anime{}, unexpectedReply("ANIME", rep)
	}
}

// GroupByID fetches the release group name for a group id. GROUP replies
// carry a fixed field layout with the name in the sixth position.
func (c *Client) GroupByID(ctx context.Context, groupID int64) (media.Group, error) {
	rep, err := c.request(ctx, "GROUP", []tag{
		{"gid", strconv.FormatInt(groupID, 10)},
	})
	if err != nil {
		return media.Group{}, err
	}

	switch rep.code {
	case CodeGroup:
		fields, err := rep.dataFields(6)
		if err != nil {
			return media.Group{}, services.Wrap(services.ErrProtocol, "anidb", "GROUP", "truncated reply", err)
		}
		gid, perr := strconv.ParseInt(fields[0], 10, 64)
		if perr != nil {
			return media.Group{}, services.Wrap(services.ErrProtocol, "anidb", "GROUP",
				fmt.Sprintf("non-numeric gid in reply %q", rep.data[0]), nil)
		}
		name := strings.TrimSpace(fields[5])
		if name == "" {
			return media.Group{}, services.Wrap(services.ErrProtocol, "anidb", "GROUP", "reply carries no group name", nil)
		}
		return media.Group{GroupID: gid, Name: name}, nil
	case CodeNoSuchGroup:
		return media.Group{}, services.Wrap(services.ErrUnidentified, "anidb", "GROUP",
			fmt.Sprintf("no such group %d", groupID), nil)
	default:
		return media.Group{}, unexpectedReply("GROUP", rep)
	}
}

func unexpectedReply(command string, rep reply) error {
	return services.Wrap(services.ErrProtocol, "anidb", command,
		fmt.Sprintf("unexpected reply: %d %s", rep.code, rep.text), nil)
}
