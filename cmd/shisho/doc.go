// Command shisho renames anime files. It hashes each file, resolves the
// hash against AniDB over the UDP API, and renames the file to its
// canonical episode name, caching all metadata locally so repeated runs
// stay offline.
package main
