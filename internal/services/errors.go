package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used to classify failures across the pipeline. Wrap tags
// errors with one of these so callers can decide between skipping a single
// file and aborting the whole run.
var (
	ErrHash          = errors.New("hash failure")
	ErrNetwork       = errors.New("network failure")
	ErrProtocol      = errors.New("protocol failure")
	ErrAuth          = errors.New("authentication failure")
	ErrUnidentified  = errors.New("not in database")
	ErrCollision     = errors.New("name collision")
	ErrFilesystem    = errors.New("filesystem failure")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProtocol
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether the error must abort the entire run rather than a
// single file. Only authentication failures qualify; everything else is
// collected per file and reported at the end of the batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
