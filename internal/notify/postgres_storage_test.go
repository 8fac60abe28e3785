package notify

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// kvDriver is a database/sql driver backed by a map. It understands the two
// statements PostgresStorage issues.
type kvDriver struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func (d *kvDriver) Open(string) (driver.Conn, error) { return &kvConn{d: d}, nil }

type kvConn struct{ d *kvDriver }

func (c *kvConn) Prepare(query string) (driver.Stmt, error) { return &kvStmt{d: c.d, query: query}, nil }
func (c *kvConn) Close() error                              { return nil }
func (c *kvConn) Begin() (driver.Tx, error)                 { return nil, errors.New("transactions not supported") }

type kvStmt struct {
	d     *kvDriver
	query string
}

func (s *kvStmt) Close() error  { return nil }
func (s *kvStmt) NumInput() int { return -1 }

func (s *kvStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if s.d.fail != nil {
		return nil, s.d.fail
	}
	if !strings.Contains(s.query, "INSERT INTO local_storage") {
		return driver.RowsAffected(0), nil
	}
	s.d.data[args[0].(string)] = args[1].(string)
	return driver.RowsAffected(1), nil
}

func (s *kvStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if s.d.fail != nil {
		return nil, s.d.fail
	}
	rows := &kvRows{}
	if v, ok := s.d.data[args[0].(string)]; ok {
		rows.vals = []string{v}
	}
	return rows, nil
}

type kvRows struct {
	vals []string
	i    int
}

func (r *kvRows) Columns() []string { return []string{"value"} }
func (r *kvRows) Close() error      { return nil }
func (r *kvRows) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	dest[0] = r.vals[r.i]
	r.i++
	return nil
}

var (
	kvOnce sync.Once
	kv     = &kvDriver{data: make(map[string]string)}
)

func newKVStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	kvOnce.Do(func() { sql.Register("notify-kv", kv) })
	kv.mu.Lock()
	kv.data = make(map[string]string)
	kv.fail = nil
	kv.mu.Unlock()
	db, err := sql.Open("notify-kv", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresStorage{DB: db}
}

func TestPostgresStorageLoadSave(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		saves   []string
		want    string
		wantErr error
	}{
		{name: "missing key", wantErr: ErrNotFound},
		{name: "single save", saves: []string{`[{"id":"a"}]`}, want: `[{"id":"a"}]`},
		{name: "upsert keeps latest", saves: []string{`[]`, `[{"id":"b"}]`}, want: `[{"id":"b"}]`},
	}
	for _, c := range cases {
		ps := newKVStorage(t)
		for _, v := range c.saves {
			if err := ps.Save(ctx, DefaultStorageKey, []byte(v)); err != nil {
				t.Fatalf("%s: save: %v", c.name, err)
			}
		}
		got, err := ps.Load(ctx, DefaultStorageKey)
		if c.wantErr != nil {
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("%s: err = %v, want %v", c.name, err, c.wantErr)
			}
			continue
		}
		if err != nil || string(got) != c.want {
			t.Fatalf("%s: load = %q, %v", c.name, got, err)
		}
	}
}

func TestPostgresStorageQueryError(t *testing.T) {
	ps := newKVStorage(t)
	kv.mu.Lock()
	kv.fail = errors.New("connection reset")
	kv.mu.Unlock()
	if _, err := ps.Load(context.Background(), DefaultStorageKey); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if err := ps.Save(context.Background(), DefaultStorageKey, []byte(`[]`)); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestPersisterOverPostgresStorage(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(newKVStorage(t), "")
	recs, err := p.Load(ctx)
	if err != nil || len(recs) != 0 {
		t.Fatalf("missing key should load empty, got %v, %v", recs, err)
	}
	if err := p.Save(ctx, []Record{{ID: "x", Title: "T", Kind: KindWarning}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	recs, err = p.Load(ctx)
	if err != nil || len(recs) != 1 || recs[0].ID != "x" {
		t.Fatalf("round trip = %+v, %v", recs, err)
	}
}
