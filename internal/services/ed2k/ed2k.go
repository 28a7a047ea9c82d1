package ed2k

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"shisho/internal/media"
	"shisho/internal/services"
)

var commandContext = exec.CommandContext

// Hasher produces a content identity for a file path. Implementations must
// not retry; a hash failure is terminal for that file and must not abort the
// batch.
type Hasher interface {
	Hash(ctx context.Context, path string) (media.Identity, error)
}

// Option configures the CLI hasher.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the external ed2k hashing utility, which reads the file on stdin
// and prints "<size> <hash>".
type CLI struct {
	binary string
}

var _ Hasher = (*CLI)(nil)

// NewCLI constructs a CLI hasher using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ed2k"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Hash runs the hashing utility against the file at path.
func (c *CLI) Hash(ctx context.Context, path string) (media.Identity, error) {
	if strings.TrimSpace(path) == "" {
		return media.Identity{}, services.Wrap(services.ErrHash, "ed2k", "hash", "path required", nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return media.Identity{}, services.Wrap(services.ErrHash, "ed2k", "open file", path, err)
	}
	defer file.Close()

	cmd := commandContext(ctx, c.binary)
	cmd.Stdin = file
	out, err := cmd.Output()
	if err != nil {
		return media.Identity{}, services.Wrap(services.ErrHash, "ed2k", "run hasher", path, err)
	}

	id, err := parseOutput(out)
	if err != nil {
		return media.Identity{}, services.Wrap(services.ErrHash, "ed2k", "parse output", path, err)
	}
	return id, nil
}

// parseOutput decodes "<size> <hash>" as printed by the hashing utility.
func parseOutput(out []byte) (media.Identity, error) {
	line := strings.TrimSpace(string(out))
	if line == "" {
		return media.Identity{}, errors.New("empty hasher output")
	}

	fields := strings.SplitN(line, " ", 2)
	if len(fields) != 2 {
		return media.Identity{}, fmt.Errorf("malformed hasher output %q", line)
	}

	size, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil || size < 0 {
		return media.Identity{}, fmt.Errorf("malformed size in hasher output %q", line)
	}

	hash := strings.ToLower(strings.TrimSpace(fields[1]))
	if len(hash) != 32 || !isHex(hash) {
		return media.Identity{}, fmt.Errorf("malformed hash in hasher output %q", line)
	}

	return media.Identity{Hash: hash, SizeBytes: size}, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
