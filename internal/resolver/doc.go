// Package resolver maps local media files to episode metadata. It layers
// the persistent cache over the remote AniDB lookup so repeated runs and
// repeated series stay cheap.
package resolver
