package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"haccpcore/internal/blob/blobtest"
	"haccpcore/internal/blob/core"
)

func TestFilesystemContract(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	blobtest.RunContract(t, s)
}

func TestSanitizeKeyErrors(t *testing.T) {
	for _, key := range []string{"", "  ", "../escape", "/abs", "a/../b", "x.meta"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
	if got, err := sanitizeKey("reports/./r1/a.txt"); err != nil || got != "reports/r1/a.txt" {
		t.Fatalf("unexpected clean key %q (%v)", got, err)
	}
}

func TestFilesystemSidecarAndPresign(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	info, err := s.Put(ctx, "reports/a.txt", strings.NewReader("abc"), core.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(info.ETag) != 64 {
		t.Fatalf("expected sha256 etag, got %q", info.ETag)
	}
	if _, err := os.Stat(filepath.Join(root, "reports", "a.txt.meta")); err != nil {
		t.Fatalf("expected sidecar: %v", err)
	}
	url, err := s.PresignURL(ctx, "reports/a.txt", core.SignedURLOptions{})
	if err != nil || !strings.HasPrefix(url, "file://") || !strings.HasSuffix(url, "/reports/a.txt") {
		t.Fatalf("unexpected url %q (%v)", url, err)
	}
}

func TestFilesystemCorruptSidecar(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Put(ctx, "a.txt", strings.NewReader("abc"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt.meta"), []byte("{"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := s.List(ctx, ""); err == nil {
		t.Fatalf("expected list error for corrupt sidecar")
	}
	if _, _, err := s.Get(ctx, "a.txt"); err == nil {
		t.Fatalf("expected get error for corrupt sidecar")
	}
}

func TestNewDefaultRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Root() != DefaultRoot || s.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected store %+v", s)
	}
}
