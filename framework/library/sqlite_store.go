package library

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists function signatures in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS functions (
		name TEXT PRIMARY KEY,
		documentation TEXT,
		return_type TEXT,
		updated_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS parameters (
		function_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		type TEXT,
		optional BOOLEAN,
		documentation TEXT,
		PRIMARY KEY(function_name, position),
		FOREIGN KEY(function_name) REFERENCES functions(name) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSignatures upserts every signature in a single transaction, replacing
// the parameter list of functions that already exist.
func (s *SQLiteStore) SaveSignatures(ctx context.Context, sigs []FunctionSignature) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertSignatures(ctx, tx, sigs); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertSignatures(ctx context.Context, tx *sql.Tx, sigs []FunctionSignature) error {
	if len(sigs) == 0 {
		return nil
	}
	fnStmt, err := tx.PrepareContext(ctx, `INSERT INTO functions (name, documentation, return_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			documentation=excluded.documentation,
			return_type=excluded.return_type,
			updated_at=excluded.updated_at`)
	if err != nil {
		return err
	}
	defer fnStmt.Close()
	paramStmt, err := tx.PrepareContext(ctx, `INSERT INTO parameters (
		function_name, position, name, type, optional, documentation
	) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer paramStmt.Close()
	now := time.Now().UTC()
	for _, sig := range sigs {
		if sig.Name == "" {
			return errors.New("signature name required")
		}
		if _, err := fnStmt.ExecContext(ctx, sig.Name, sig.Documentation, sig.ReturnType, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM parameters WHERE function_name = ?`, sig.Name); err != nil {
			return err
		}
		for i, p := range sig.Parameters {
			if _, err := paramStmt.ExecContext(ctx, sig.Name, i, p.Name, p.Type, p.Optional, p.Documentation); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup implements Library.
func (s *SQLiteStore) Lookup(ctx context.Context, name string) (*FunctionSignature, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, documentation, return_type FROM functions WHERE name = ?`, name)
	sig, err := scanFunction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	params, err := s.parameters(ctx, sig.Name)
	if err != nil {
		return nil, err
	}
	sig.Parameters = params
	return sig, nil
}

// List returns the signatures whose name starts with prefix, sorted by name.
// An empty prefix lists everything.
func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]FunctionSignature, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, documentation, return_type FROM functions
		WHERE substr(name, 1, length(?)) = ? ORDER BY name`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	var sigs []FunctionSignature
	for rows.Next() {
		sig, err := scanFunction(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sigs = append(sigs, *sig)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	for i := range sigs {
		params, err := s.parameters(ctx, sigs[i].Name)
		if err != nil {
			return nil, err
		}
		sigs[i].Parameters = params
	}
	return sigs, nil
}

// DeleteFunction removes a signature and its parameters.
func (s *SQLiteStore) DeleteFunction(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM functions WHERE name = ?`, name)
	return err
}

// Count reports how many functions are stored.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM functions`).Scan(&count)
	return count, err
}

func (s *SQLiteStore) parameters(ctx context.Context, function string) ([]Parameter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, type, optional, documentation FROM parameters
		WHERE function_name = ? ORDER BY position`, function)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var params []Parameter
	for rows.Next() {
		var p Parameter
		var typ, doc sql.NullString
		var optional sql.NullBool
		if err := rows.Scan(&p.Name, &typ, &optional, &doc); err != nil {
			return nil, err
		}
		p.Type = typ.String
		p.Optional = optional.Bool
		p.Documentation = doc.String
		params = append(params, p)
	}
	return params, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFunction(row scanner) (*FunctionSignature, error) {
	var sig FunctionSignature
	var doc, ret sql.NullString
	if err := row.Scan(&sig.Name, &doc, &ret); err != nil {
		return nil, err
	}
	sig.Documentation = doc.String
	sig.ReturnType = ret.String
	return &sig, nil
}
