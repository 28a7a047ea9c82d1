package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shisho/internal/media"
	"shisho/internal/resolver"
	"shisho/internal/services"
	"shisho/internal/services/anidb"
	"shisho/internal/testsupport"
	"shisho/internal/workflow"
)

// contentHasher derives the identity from file contents, like the real
// hasher but without the external binary.
type contentHasher struct {
	byContent map[string]media.Identity
}

func (h *contentHasher) Hash(_ context.Context, path string) (media.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return media.Identity{}, services.Wrap(services.ErrHash, "ed2k", "hash", "read file", err)
	}
	id, ok := h.byContent[string(data)]
	if !ok {
		return media.Identity{}, services.Wrap(services.ErrHash, "ed2k", "hash", "unexpected content", nil)
	}
	return id, nil
}

func TestEndToEndRenameThenCachedRerun(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mkv", "b.mkv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	hasher := &contentHasher{byContent: map[string]media.Identity{
		"a.mkv": {Hash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", SizeBytes: 5},
		"b.mkv": {Hash: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", SizeBytes: 5},
	}}

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply("200 sess LOGIN ACCEPTED"),
		testsupport.Reply("220 FILE\n11|5|101|3|01|First"),
		testsupport.Reply("230 ANIME\n5|Example Show"),
		testsupport.Reply("250 GROUP\n3|0|0|0|0|SubTeam|ST"),
		testsupport.Reply("220 FILE\n12|5|102|3|02|Second"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := anidb.New(anidb.Settings{}, anidb.Credentials{Username: "u", Password: "p"},
		transport, anidb.WithClock(clock))

	res := resolver.New(hasher, st, client)
	runner := workflow.NewRunner(res)

	result, err := runner.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if result.Summary.Renamed != 2 || !result.Summary.Clean() {
		t.Fatalf("first run summary = %+v", result.Summary)
	}
	for _, want := range []string{
		"Example Show - 01 - First [SubTeam].mkv",
		"Example Show - 02 - Second [SubTeam].mkv",
	} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("missing %q after first run: %v", want, err)
		}
	}
	// AUTH, FILE, ANIME, GROUP, FILE: anime and group resolved once for both episodes.
	if len(transport.Requests) != 5 {
		t.Fatalf("first run sent %d requests: %v", len(transport.Requests), transport.Requests)
	}

	// A second run over the renamed files must come entirely from the cache:
	// the scripted transport is exhausted, so any request would fail.
	rerunClient := anidb.New(anidb.Settings{}, anidb.Credentials{Username: "u", Password: "p"},
		&testsupport.ScriptTransport{}, anidb.WithClock(testsupport.NewManualClock(time.Unix(0, 0))))
	rerun := workflow.NewRunner(resolver.New(hasher, st, rerunClient))

	second, err := rerun.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Summary.Unchanged != 2 || !second.Summary.Clean() {
		t.Fatalf("second run summary = %+v", second.Summary)
	}
}
