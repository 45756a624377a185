package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubConnUpsertsAndFiltersByKey(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	insert := "INSERT INTO state(store_key,bucket,payload) VALUES($1,$2,$3) ON CONFLICT DO UPDATE"
	for _, payload := range []string{`[1]`, `[2]`} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{
			{Value: "k1"}, {Value: "plans"}, {Value: []byte(payload)},
		}); err != nil {
			t.Fatalf("ExecContext: %v", err)
		}
	}
	if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{
		{Value: "k2"}, {Value: "plans"}, {Value: []byte(`[3]`)},
	}); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if len(conn.Rows) != 2 {
		t.Fatalf("expected upsert to keep 2 rows, got %d", len(conn.Rows))
	}

	rows, err := conn.QueryContext(ctx, "SELECT bucket, payload FROM state WHERE store_key = $1", []driver.NamedValue{{Value: "k1"}})
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	defer func() { _ = rows.Close() }()
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "plans" || string(dest[1].([]byte)) != `[2]` {
		t.Fatalf("unexpected row values: %v", dest)
	}
	if err := rows.Next(dest); err == nil {
		t.Fatalf("expected only one row for k1")
	}
}
