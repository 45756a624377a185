package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"haccpcore/internal/blob/blobtest"
	"haccpcore/internal/blob/core"
)

func TestMemoryContract(t *testing.T) {
	blobtest.RunContract(t, New())
}

func TestMemoryIsolationAndPresign(t *testing.T) {
	ctx := context.Background()
	s := New()
	meta := map[string]string{"k": "v"}
	info, err := s.Put(ctx, "a", strings.NewReader("x"), core.PutOptions{Metadata: meta})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["k"] = "changed"
	info.Metadata["k"] = "changed too"
	got, _, err := s.Get(ctx, "a")
	if err != nil || got.Metadata["k"] != "v" {
		t.Fatalf("metadata aliased: %+v %v", got.Metadata, err)
	}
	if _, err := s.PresignURL(ctx, "a", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
}
