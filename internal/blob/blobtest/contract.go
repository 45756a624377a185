// Package blobtest exercises any core.Store against the archive contract.
package blobtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"haccpcore/internal/blob/core"
)

// RunContract checks write-once puts, reads, prefix listing and deletes.
func RunContract(t *testing.T, store core.Store) {
	t.Helper()
	ctx := context.Background()

	body := "HACCP MONITORING LOGS\nline\n"
	info, err := store.Put(ctx, "reports/r1/2026-01-01.txt", strings.NewReader(body), core.PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"restaurant": "r1"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "reports/r1/2026-01-01.txt" || info.Size != int64(len(body)) {
		t.Fatalf("unexpected put info %+v", info)
	}

	if _, err := store.Put(ctx, "reports/r1/2026-01-01.txt", strings.NewReader("again"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists on overwrite, got %v", err)
	}

	if _, err := store.Put(ctx, "reports/r1/2026-01-02.csv", bytes.NewReader([]byte("a,b\n")), core.PutOptions{ContentType: "text/csv"}); err != nil {
		t.Fatalf("put csv: %v", err)
	}
	if _, err := store.Put(ctx, "reports/r2/2026-01-01.txt", strings.NewReader("other"), core.PutOptions{}); err != nil {
		t.Fatalf("put other restaurant: %v", err)
	}

	got, rc, err := store.Get(ctx, "reports/r1/2026-01-01.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(data) != body {
		t.Fatalf("unexpected body %q (%v)", data, err)
	}
	if got.ContentType != "text/plain" {
		t.Fatalf("unexpected content type %q", got.ContentType)
	}

	if _, _, err := store.Get(ctx, "reports/r1/missing.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	listed, err := store.List(ctx, "reports/r1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].Key != "reports/r1/2026-01-01.txt" || listed[1].Key != "reports/r1/2026-01-02.csv" {
		t.Fatalf("unexpected listing %+v", listed)
	}

	deleted, err := store.Delete(ctx, "reports/r2/2026-01-01.txt")
	if err != nil || !deleted {
		t.Fatalf("expected delete to report existing key, got %v %v", deleted, err)
	}
	deleted, err = store.Delete(ctx, "reports/r2/2026-01-01.txt")
	if err != nil || deleted {
		t.Fatalf("expected second delete to report missing key, got %v %v", deleted, err)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 objects after delete, got %d (%v)", len(all), err)
	}
}
