package services_test

import (
	"errors"
	"strings"
	"testing"

	"shisho/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("connection reset")
	err := services.Wrap(services.ErrNetwork, "anidb", "exchange", "request failed", inner)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected wrapped error to match ErrNetwork, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped error to retain cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "anidb: exchange: request failed") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrUnidentified, "resolver", "lookup", "file unknown to AniDB", nil)
	if !errors.Is(err, services.ErrUnidentified) {
		t.Fatalf("expected ErrUnidentified, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "anidb", "decode", "", nil)
	if !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected nil marker to default to ErrProtocol, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"auth", services.Wrap(services.ErrAuth, "anidb", "login", "bad credentials", nil), true},
		{"network", services.Wrap(services.ErrNetwork, "anidb", "exchange", "", nil), false},
		{"hash", services.Wrap(services.ErrHash, "ed2k", "run", "", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.fatal {
			t.Fatalf("%s: IsFatal=%v want %v", tc.name, got, tc.fatal)
		}
	}
}
