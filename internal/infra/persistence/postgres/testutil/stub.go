// Package testutil provides an in-memory database/sql driver emulating the
// postgres state table for store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var driverSeq uint64

// StateRow is one (store_key, bucket) payload.
type StateRow struct {
	StoreKey string
	Bucket   string
	Payload  []byte
}

// StubConn records statements and keeps state rows in memory. Failure flags
// let tests exercise error paths.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	Rows       []StateRow
	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailCommit bool
	RowsErr    error
}

// NewStubDB registers a uniquely named driver and opens a sql.DB on it.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&driverSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx. Writes inside the transaction are
// staged and applied on commit.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	c.mu.Lock()
	snapshot := append([]StateRow(nil), c.Rows...)
	c.mu.Unlock()
	return &stubTx{conn: c, before: snapshot}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	upper := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(upper, "INSERT INTO STATE") {
		return driver.RowsAffected(0), nil
	}
	if len(args) != 3 {
		return nil, fmt.Errorf("expected 3 args, got %d", len(args))
	}
	row := StateRow{
		StoreKey: fmt.Sprint(args[0].Value),
		Bucket:   fmt.Sprint(args[1].Value),
	}
	if b, ok := args[2].Value.([]byte); ok {
		row.Payload = append([]byte(nil), b...)
	}
	for i := range c.Rows {
		if c.Rows[i].StoreKey == row.StoreKey && c.Rows[i].Bucket == row.Bucket {
			c.Rows[i] = row
			return driver.RowsAffected(1), nil
		}
	}
	c.Rows = append(c.Rows, row)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext for
// "SELECT bucket, payload FROM state WHERE store_key = $1".
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToLower(query), "from state") {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	var key string
	if len(args) > 0 {
		key = fmt.Sprint(args[0].Value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var values [][]driver.Value
	for _, r := range c.Rows {
		if r.StoreKey != key {
			continue
		}
		values = append(values, []driver.Value{r.Bucket, append([]byte(nil), r.Payload...)})
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: values, err: c.RowsErr}, nil
}

type stubTx struct {
	conn   *StubConn
	before []StateRow
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.mu.Lock()
	t.conn.Rows = t.before
	t.conn.mu.Unlock()
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
