package version

import (
	"strings"
	"testing"
)

func TestGetPrefersLinkerValues(t *testing.T) {
	Version, Commit, BuildDate = "v1.2.3", "abc123", "2026-01-01T00:00:00Z"
	t.Cleanup(func() { Version, Commit, BuildDate = "dev", "", "" })

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc123" || info.BuildDate != "2026-01-01T00:00:00Z" {
		t.Errorf("Get() = %+v", info)
	}
	if !strings.HasPrefix(info.String(), "v1.2.3 (commit=abc123") {
		t.Errorf("String() = %q", info.String())
	}
}

func TestShortRevision(t *testing.T) {
	if got := shortRevision("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortRevision() = %q", got)
	}
	if got := shortRevision("abc"); got != "abc" {
		t.Errorf("shortRevision() = %q", got)
	}
}
