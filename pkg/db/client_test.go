package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:db_client?mode=memory&cache=shared"), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return &Client{conn: conn}
}

func TestPingAndSQL(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	sqlDB, err := client.SQL()
	if err != nil || sqlDB == nil {
		t.Fatalf("expected sql handle, got %v %v", sqlDB, err)
	}
}

func TestDialectorFor(t *testing.T) {
	cases := []struct {
		driver string
		name   string
		err    bool
	}{
		{driver: "", name: "postgres"},
		{driver: config.DBDriverPostgres, name: "postgres"},
		{driver: config.DBDriverSQLite, name: "sqlite"},
		{driver: "mysql", err: true},
	}
	for _, tc := range cases {
		dialector, err := dialectorFor(config.DBConfig{Driver: tc.driver, DSN: "x"})
		if tc.err {
			if err == nil {
				t.Fatalf("expected error for driver %q", tc.driver)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for driver %q: %v", tc.driver, err)
		}
		if dialector.Name() != tc.name {
			t.Fatalf("driver %q: expected dialector %q got %q", tc.driver, tc.name, dialector.Name())
		}
	}
}

func TestSQLiteDSNPragmas(t *testing.T) {
	if got := sqliteDSN("orderdesk.db"); got != "orderdesk.db?"+sqlitePragmas {
		t.Fatalf("expected pragmas appended, got %q", got)
	}
	for _, dsn := range []string{"file::memory:?cache=shared", "orderdesk.db?_fk=1"} {
		if got := sqliteDSN(dsn); got != dsn {
			t.Fatalf("expected %q untouched, got %q", dsn, got)
		}
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing dsn to fail")
	}
}

func TestGormLoggerReportsSlowAndFailedQueries(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
	gl := newGormLogger(logg, 10*time.Millisecond)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), fc, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast successful query should be quiet, got %s", buf.String())
	}

	gl.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("not-found should be quiet, got %s", buf.String())
	}

	gl.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	if !bytes.Contains(buf.Bytes(), []byte("db.query.slow")) {
		t.Fatalf("expected slow query warning, got %s", buf.String())
	}

	buf.Reset()
	gl.Trace(ctx, time.Now(), fc, errors.New("no such table: order_notes"))
	if !bytes.Contains(buf.Bytes(), []byte("no such table")) {
		t.Fatalf("expected failure warning, got %s", buf.String())
	}

	buf.Reset()
	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now().Add(-time.Second), fc, errors.New("x"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should log nothing, got %s", buf.String())
	}
}
