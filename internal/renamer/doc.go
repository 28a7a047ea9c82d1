// Package renamer plans and applies canonical file names for resolved
// media. Planning is pure and deterministic; collision checking and the
// actual renames are separate steps so a dry run can show exactly what a
// real run would do.
package renamer
