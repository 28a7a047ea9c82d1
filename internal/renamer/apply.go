package renamer

import (
	"os"

	"shisho/internal/services"
)

// Apply performs the rename described by a checked plan. Plans marked
// NoChange are a no-op.
func Apply(plan Plan) error {
	if plan.NoChange {
		return nil
	}
	if err := os.Rename(plan.SourcePath, plan.TargetPath); err != nil {
		return services.Wrap(services.ErrFilesystem, "renamer", "apply", "rename file", err)
	}
	return nil
}
