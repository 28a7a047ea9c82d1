package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"shisho/internal/workflow"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
)

// renderReport prints the per-file outcomes of a run as a table, followed by
// a one-line summary. Colors are only emitted when the writer is a terminal.
func renderReport(w io.Writer, result *workflow.Result) {
	colorize := shouldColorize(w)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Status", "New Name"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	for _, outcome := range result.Outcomes {
		target := outcome.Plan.TargetName
		if outcome.Err != nil {
			target = outcome.Err.Error()
		} else if outcome.Status == workflow.StatusNoChange {
			target = "no rename necessary"
		}
		tw.AppendRow(table.Row{
			filepath.Base(outcome.Path),
			statusLabel(outcome.Status, colorize),
			target,
		})
	}
	fmt.Fprintln(w, tw.Render())

	summary := result.Summary
	verb := "renamed"
	count := summary.Renamed
	if result.DryRun {
		verb = "planned"
		count = summary.Planned
	}
	fmt.Fprintf(w, "%d %s, %d unchanged, %d failed\n",
		count, verb, summary.Unchanged,
		summary.Unidentified+summary.Collisions+summary.Failed)
}

func statusLabel(status workflow.Status, colorize bool) string {
	label := string(status)
	if !colorize {
		return label
	}
	switch status {
	case workflow.StatusRenamed, workflow.StatusPlanned:
		return ansiGreen + label + ansiReset
	case workflow.StatusNoChange:
		return ansiDim + label + ansiReset
	case workflow.StatusUnidentified, workflow.StatusCollision:
		return ansiYellow + label + ansiReset
	case workflow.StatusFailed:
		return ansiRed + label + ansiReset
	default:
		return label
	}
}

// newProgressPrinter returns a workflow progress callback that writes live
// activity lines, colored when the writer is a terminal.
func newProgressPrinter(w io.Writer) workflow.Progress {
	colorize := shouldColorize(w)
	return func(stage, path string) {
		line := fmt.Sprintf("  %s %s", stage, filepath.Base(path))
		if colorize {
			line = ansiDim + line + ansiReset
		}
		fmt.Fprintln(w, line)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
