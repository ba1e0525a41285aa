package store

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/ordinal/fu"
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"os"
	"path/filepath"
	"time"
)

/*
SQLiteStore keeps models in a sqlite database
*/
type SQLiteStore struct {
	db      *sql.DB
	solvers model.Table
}

/*
NewSQLiteStore wraps an open database and migrates its schema
*/
func NewSQLiteStore(db *sql.DB, solvers model.Table) (*SQLiteStore, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, solvers: solvers}, nil
}

/*
OpenSQLite opens the database file, relative paths are resolved against the models cache dir
*/
func OpenSQLite(path string, solvers model.Table) (*SQLiteStore, error) {
	path = fu.ModelPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, xerrors.Errorf("failed to create store directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open sqlite store: %w", err)
	}
	s, err := NewSQLiteStore(db, solvers)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, m *model.Model, meta map[string]float64) error {
	if err := checkName(name); err != nil {
		return err
	}
	artifact, err := m.Encode()
	if err != nil {
		return err
	}
	e := newEntry(name, m, meta)
	classes, err := json.Marshal(e.Classes)
	if err != nil {
		return xerrors.Errorf("failed to encode classes of %v: %w", name, err)
	}
	metaJSON, err := json.Marshal(e.Meta)
	if err != nil {
		return xerrors.Errorf("failed to encode meta of %v: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO models (name, solver, dim, classes, meta, artifact, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			solver = excluded.solver,
			dim = excluded.dim,
			classes = excluded.classes,
			meta = excluded.meta,
			artifact = excluded.artifact,
			created_at = excluded.created_at`,
		e.Name, e.Solver, e.Dim, string(classes), string(metaJSON), artifact, e.CreatedAt.UnixMilli())
	if err != nil {
		return xerrors.Errorf("failed to save model %v: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*model.Model, error) {
	var artifact []byte
	err := s.db.QueryRowContext(ctx, `SELECT artifact FROM models WHERE name = ?`, name).Scan(&artifact)
	if err == sql.ErrNoRows {
		return nil, xerrors.Errorf("%v: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to load model %v: %w", name, err)
	}
	return model.Decode(s.solvers, artifact)
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, solver, dim, classes, meta, created_at FROM models ORDER BY name`)
	if err != nil {
		return nil, xerrors.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()
	r := []Entry{}
	for rows.Next() {
		var e Entry
		var classes, meta string
		var created int64
		if err := rows.Scan(&e.Name, &e.Solver, &e.Dim, &classes, &meta, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(classes), &e.Classes); err != nil {
			return nil, xerrors.Errorf("bad classes of %v: %w", e.Name, err)
		}
		if err := json.Unmarshal([]byte(meta), &e.Meta); err != nil {
			return nil, xerrors.Errorf("bad meta of %v: %w", e.Name, err)
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		r = append(r, e)
	}
	return r, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return xerrors.Errorf("failed to delete model %v: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return xerrors.Errorf("%v: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ModelStore = (*SQLiteStore)(nil)
