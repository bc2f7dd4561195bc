package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const recordsTable = "stockroom_records"

// dialect isolates the SQL differences between Postgres and SQLite. Documents
// are stored as JSON text; field access goes through the engine's JSON
// functions.
type dialect struct {
	name        string
	driver      string
	placeholder func(n int) string
	// field renders an expression extracting a JSON field whose path is bound
	// at placeholder n.
	field func(n int) string
	// fieldText is field coerced to text for equality filters.
	fieldText func(n int) string
	// fieldPath turns a field name into the bound path argument.
	fieldPath func(name string) string
}

var postgresDialect = dialect{
	name:        "postgres",
	driver:      "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	field:       func(n int) string { return fmt.Sprintf("(doc::jsonb -> $%d::text)", n) },
	fieldText:   func(n int) string { return fmt.Sprintf("(doc::jsonb ->> $%d::text)", n) },
	fieldPath:   func(name string) string { return name },
}

var sqliteDialect = dialect{
	name:        "sqlite",
	driver:      "sqlite",
	placeholder: func(int) string { return "?" },
	field:       func(int) string { return "json_extract(doc, ?)" },
	fieldText:   func(int) string { return "CAST(json_extract(doc, ?) AS TEXT)" },
	fieldPath:   func(name string) string { return "$." + name },
}

// SQL stores every collection as JSON documents in one table.
type SQL struct {
	db      *sql.DB
	dialect dialect
	timeout time.Duration
	newID   func() string
	now     func() time.Time

	closeOnce sync.Once
	closeErr  error
}

var _ Client = (*SQL)(nil)

// OpenPostgres connects to Postgres through lib/pq and prepares the schema.
func OpenPostgres(dsn string, opts Options) (*SQL, error) {
	return openSQL(postgresDialect, dsn, opts)
}

// OpenSQLite opens (or creates) a SQLite database file.
func OpenSQLite(path string, opts Options) (*SQL, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return openSQL(sqliteDialect, dsn, opts)
}

func openSQL(d dialect, dsn string, opts Options) (*SQL, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.name == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &SQL{
		db:      db,
		dialect: d,
		timeout: timeout,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init %s schema: %w", d.name, err)
	}
	return s, nil
}

func (s *SQL) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + recordsTable + ` (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			doc TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + recordsTable + `_created_idx ON ` + recordsTable + ` (collection, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) List(ctx context.Context, collection string, q Query) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b := s.newQuery("SELECT doc FROM " + recordsTable + " WHERE collection = ")
	b.arg(collection)
	for field, want := range q.Where {
		b.sql.WriteString(" AND " + s.dialect.fieldText(b.n+1) + " = ")
		b.n++
		b.args = append(b.args, s.dialect.fieldPath(field))
		b.arg(want)
	}
	if field := strings.TrimSpace(q.OrderBy); field != "" {
		dir := "ASC"
		if q.descending() {
			dir = "DESC"
		}
		b.sql.WriteString(" ORDER BY " + s.dialect.field(b.n+1) + " " + dir + ", created_at, id")
		b.n++
		b.args = append(b.args, s.dialect.fieldPath(field))
	} else {
		b.sql.WriteString(" ORDER BY created_at, id")
	}
	if q.Limit > 0 {
		b.sql.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}

	rows, err := s.db.QueryContext(ctx, b.sql.String(), b.args...)
	if err != nil {
		return nil, opError("list", collection, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, opError("list", collection, err)
		}
		rec, err := decodeDoc(doc)
		if err != nil {
			return nil, opError("list", collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, opError("list", collection, err)
	}
	return out, nil
}

func (s *SQL) Insert(ctx context.Context, collection string, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := rec.Clone()
	if row == nil {
		row = Record{}
	}
	id := row.ID()
	if id == "" {
		id = s.newID()
	}
	row["id"] = id
	createdAt, ok := row["created_at"].(string)
	if !ok || createdAt == "" {
		createdAt = s.now().UTC().Format(timestampLayout)
		row["created_at"] = createdAt
	}
	doc, err := json.Marshal(row)
	if err != nil {
		return nil, opError("insert", collection, fmt.Errorf("encode document: %w", err))
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.exists(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: id %s", ErrConflict, id)
		}
		p := s.dialect.placeholder
		_, err = tx.ExecContext(ctx,
			"INSERT INTO "+recordsTable+" (collection, id, doc, created_at) VALUES ("+p(1)+", "+p(2)+", "+p(3)+", "+p(4)+")",
			collection, id, string(doc), createdAt)
		return err
	})
	if err != nil {
		return nil, opError("insert", collection, err)
	}
	return decodeDoc(string(doc))
}

func (s *SQL) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var updated Record
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		p := s.dialect.placeholder
		var doc string
		err := tx.QueryRowContext(ctx,
			"SELECT doc FROM "+recordsTable+" WHERE collection = "+p(1)+" AND id = "+p(2),
			collection, id).Scan(&doc)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		row, err := decodeDoc(doc)
		if err != nil {
			return err
		}
		for k, v := range patch {
			if k == "id" {
				continue
			}
			row[k] = v
		}
		next, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE "+recordsTable+" SET doc = "+p(1)+" WHERE collection = "+p(2)+" AND id = "+p(3),
			string(next), collection, id); err != nil {
			return err
		}
		updated, err = decodeDoc(string(next))
		return err
	})
	if err != nil {
		return nil, opError("update", collection, err)
	}
	return updated, nil
}

func (s *SQL) Delete(ctx context.Context, collection, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p := s.dialect.placeholder
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+recordsTable+" WHERE collection = "+p(1)+" AND id = "+p(2),
		collection, id)
	if err != nil {
		return false, opError("delete", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, opError("delete", collection, err)
	}
	return n > 0, nil
}

func (s *SQL) Probe(ctx context.Context, collection string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p := s.dialect.placeholder
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM "+recordsTable+" WHERE collection = "+p(1)+" LIMIT 1", collection)
	if err != nil {
		return opError("probe", collection, err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return opError("probe", collection, rows.Err())
}

func (s *SQL) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *SQL) exists(ctx context.Context, tx *sql.Tx, collection, id string) (bool, error) {
	p := s.dialect.placeholder
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM "+recordsTable+" WHERE collection = "+p(1)+" AND id = "+p(2),
		collection, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type queryBuilder struct {
	sql  strings.Builder
	args []any
	n    int
	d    dialect
}

func (s *SQL) newQuery(prefix string) *queryBuilder {
	b := &queryBuilder{d: s.dialect}
	b.sql.WriteString(prefix)
	return b
}

func (b *queryBuilder) arg(v any) {
	b.n++
	b.sql.WriteString(b.d.placeholder(b.n))
	b.args = append(b.args, v)
}

func decodeDoc(doc string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return rec, nil
}
