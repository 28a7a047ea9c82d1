package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer substitutes characters AniDB emits or host filesystems
// reject. AniDB titles use backticks in place of apostrophes; path
// separators become the unicode division slash so runs of the same input
// always produce the same, legal name.
var fileNameReplacer = strings.NewReplacer(
	"`", "'",
	"/", "∕",
	"\\", "∕",
	":", "꞉",
	"*", "∗",
	"?", "？",
	"\"", "'",
	"<", "(",
	">", ")",
	"|", "¦",
)

// SanitizeFileName rewrites a synthesized filename into a filesystem-safe
// form. The mapping is deterministic: identical input always yields the
// identical output string.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = fileNameReplacer.Replace(name)
	name = strings.Map(dropUnprintable, name)
	return strings.TrimSpace(name)
}

func dropUnprintable(r rune) rune {
	if r < 0x20 || r == 0x7f {
		return -1
	}
	return r
}
