// Package logging assembles the structured slog loggers used across shisho.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized field keys so every component emits
// data with the same shape. Prefer these constructors over hand-rolled slog
// setup.
package logging
