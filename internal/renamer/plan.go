package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shisho/internal/media"
	"shisho/internal/services"
	"shisho/internal/textutil"
)

// Plan is the proposed rename for a single file. Target paths always stay in
// the source file's directory; planning never moves a file across
// directories.
type Plan struct {
	SourcePath string
	TargetName string
	TargetPath string
	Resolved   media.Resolved
	// NoChange marks a file that already carries its target name.
	NoChange bool
}

// Build computes the rename plan for one resolved file.
func Build(sourcePath string, resolved media.Resolved) Plan {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	name := TargetName(resolved, extension(base))
	return Plan{
		SourcePath: sourcePath,
		TargetName: name,
		TargetPath: filepath.Join(dir, name),
		Resolved:   resolved,
		NoChange:   name == base,
	}
}

// TargetName renders the canonical file name for resolved metadata. Every
// metadata field is sanitized so the result is always a single legal path
// component.
func TargetName(resolved media.Resolved, ext string) string {
	anime := textutil.SanitizeFileName(resolved.Anime.TitleRomaji)
	episode := textutil.SanitizeFileName(resolved.Episode.Number)
	episodeName := textutil.SanitizeFileName(resolved.Episode.Name)
	group := textutil.SanitizeFileName(resolved.Group.Name)
	return fmt.Sprintf("%s - %s - %s [%s]%s", anime, episode, episodeName, group, ext)
}

// extension returns everything from the first dot of the base name onward,
// so multi-part suffixes like ".en.srt" survive intact. A leading dot is
// part of the name, not a suffix marker.
func extension(base string) string {
	search := base
	offset := 0
	if strings.HasPrefix(base, ".") {
		search = base[1:]
		offset = 1
	}
	idx := strings.Index(search, ".")
	if idx < 0 {
		return ""
	}
	return base[offset+idx:]
}

// Check validates a batch of plans for collisions. The returned slice is
// aligned with plans: a nil entry means the plan is safe to apply, a non-nil
// entry carries the collision error for that file. A collision never
// contaminates unrelated plans in the same batch.
func Check(plans []Plan) []error {
	errs := make([]error, len(plans))

	targets := make(map[string][]int, len(plans))
	for i, plan := range plans {
		key := filepath.Clean(plan.TargetPath)
		targets[key] = append(targets[key], i)
	}
	for _, indices := range targets {
		if len(indices) < 2 {
			continue
		}
		for _, i := range indices {
			errs[i] = services.Wrap(services.ErrCollision, "renamer", "plan",
				fmt.Sprintf("%d files in this batch map to %q", len(indices), plans[i].TargetName), nil)
		}
	}

	for i, plan := range plans {
		if errs[i] != nil || plan.NoChange {
			continue
		}
		if filepath.Clean(plan.TargetPath) == filepath.Clean(plan.SourcePath) {
			continue
		}
		if _, err := os.Lstat(plan.TargetPath); err == nil {
			errs[i] = services.Wrap(services.ErrCollision, "renamer", "plan",
				fmt.Sprintf("target %q already exists", plan.TargetName), nil)
		} else if !os.IsNotExist(err) {
			errs[i] = services.Wrap(services.ErrFilesystem, "renamer", "plan", "probe target path", err)
		}
	}

	return errs
}
