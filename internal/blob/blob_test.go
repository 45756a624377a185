package blob

import (
	"context"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()

	fsStore, err := Open(ctx, Config{FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("expected fs default, got %s", fsStore.Driver())
	}

	mem, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("open memory: %v", err)
	}

	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	s3Store, err := Open(ctx, Config{Driver: DriverS3, S3: S3Config{
		Bucket:          "reports",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
	}})
	if err != nil || s3Store.Driver() != DriverS3 {
		t.Fatalf("open s3: %v", err)
	}

	if _, err := Open(ctx, Config{Driver: "gcs"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if NewMemory().Driver() != DriverMemory || NewMockS3ForTests().Driver() != DriverS3 {
		t.Fatalf("unexpected helper drivers")
	}
}
