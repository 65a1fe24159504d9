package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB is a database handle that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Driver string

	mu   sync.Mutex
	cols map[string]map[string]bool
}

// Open opens a database connection and configures it for the driver.
// For SQLite the DSN is a file path (or ":memory:").
func Open(driver, dsn string) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if driver == DriverPostgres {
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return &DB{DB: conn, Driver: driver}, nil
	}

	// A single connection keeps :memory: databases shared and serializes
	// writers the way SQLite wants anyway.
	conn.SetMaxOpenConns(1)

	// Set pragmas for performance and correctness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return &DB{DB: conn, Driver: driver}, nil
}

// Rebind rewrites ? placeholders into the driver's placeholder syntax.
// Queries must not contain literal question marks.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Driver, query)
}

// Rebind rewrites ? placeholders for driver.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Columns returns the set of column names of table.
func (d *DB) Columns(ctx context.Context, table string) (map[string]bool, error) {
	var query string
	switch d.Driver {
	case DriverPostgres:
		query = `SELECT column_name FROM information_schema.columns
		         WHERE table_schema = current_schema() AND table_name = $1`
	default:
		query = `SELECT name FROM pragma_table_info(?)`
	}

	rows, err := d.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("probing columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column name: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cols, nil
}

// HasColumn reports whether table has column. The column set of each table
// is probed once and cached; call ResetColumns after altering a table.
func (d *DB) HasColumn(ctx context.Context, table, column string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cols, ok := d.cols[table]
	if !ok {
		var err error
		cols, err = d.Columns(ctx, table)
		if err != nil {
			return false, err
		}
		if d.cols == nil {
			d.cols = make(map[string]map[string]bool)
		}
		d.cols[table] = cols
	}
	return cols[column], nil
}

// ResetColumns drops the cached column sets.
func (d *DB) ResetColumns() {
	d.mu.Lock()
	d.cols = nil
	d.mu.Unlock()
}
