// Package store handles SQLite persistence of named coefficient sets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/contribplot/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a model name is not stored.
var ErrNotFound = errors.New("model not found")

// Store wraps SQLite access for saved models.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// ModelInfo summarizes a stored model.
type ModelInfo struct {
	Name      string
	Form      model.CoefficientForm
	Count     int
	UpdatedAt time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS models (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			form TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS model_coefficients (
			model_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			variable TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (model_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_model_coefficients_model ON model_coefficients(model_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveModel stores a model, replacing any model with the same name.
func (s *Store) SaveModel(ctx context.Context, spec model.ModelSpec) (err error) {
	if spec.Name == "" {
		return fmt.Errorf("model name is empty")
	}
	form := spec.Coefficients.Form()
	if form != model.FormPositional && form != model.FormNamed {
		return fmt.Errorf("model %q has no coefficients", spec.Name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM model_coefficients WHERE model_id IN (SELECT id FROM models WHERE name = ?)`, spec.Name); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, spec.Name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO models (name, form, updated_at) VALUES (?, ?, ?)`,
		spec.Name, form.String(), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO model_coefficients (model_id, position, variable, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	if form == model.FormPositional {
		for i, v := range spec.Coefficients.Values() {
			if _, err = stmt.ExecContext(ctx, id, i, "", v); err != nil {
				return err
			}
		}
	} else {
		weights := spec.Coefficients.Weights()
		for i, name := range spec.Coefficients.Names() {
			if _, err = stmt.ExecContext(ctx, id, i, name, weights[name]); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetModel loads a stored model by name.
func (s *Store) GetModel(ctx context.Context, name string) (model.ModelSpec, error) {
	var id int64
	var form string
	err := s.db.QueryRowContext(ctx, `SELECT id, form FROM models WHERE name = ?`, name).Scan(&id, &form)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ModelSpec{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return model.ModelSpec{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT variable, value FROM model_coefficients WHERE model_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return model.ModelSpec{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var values []float64
	weights := map[string]float64{}
	for rows.Next() {
		var variable string
		var value float64
		if err := rows.Scan(&variable, &value); err != nil {
			return model.ModelSpec{}, err
		}
		values = append(values, value)
		weights[variable] = value
	}
	if err := rows.Err(); err != nil {
		return model.ModelSpec{}, err
	}

	spec := model.ModelSpec{Name: name}
	switch form {
	case model.FormPositional.String():
		spec.Coefficients = model.Positional(values...)
	case model.FormNamed.String():
		spec.Coefficients = model.Named(weights)
	default:
		return model.ModelSpec{}, fmt.Errorf("model %q has unknown form %q", name, form)
	}
	return spec, nil
}

// GetModels loads several stored models in the given order.
func (s *Store) GetModels(ctx context.Context, names []string) ([]model.ModelSpec, error) {
	out := make([]model.ModelSpec, 0, len(names))
	for _, name := range names {
		spec, err := s.GetModel(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// ListModels returns all stored models ordered by name.
func (s *Store) ListModels(ctx context.Context) ([]ModelInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT m.name, m.form, m.updated_at, COUNT(c.position)
		FROM models m
		LEFT JOIN model_coefficients c ON c.model_id = m.id
		GROUP BY m.id
		ORDER BY m.name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var form, updatedAt string
		if err := rows.Scan(&info.Name, &form, &updatedAt, &info.Count); err != nil {
			return nil, err
		}
		if form == model.FormNamed.String() {
			info.Form = model.FormNamed
		} else {
			info.Form = model.FormPositional
		}
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, err
		}
		info.UpdatedAt = parsed
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteModel removes a stored model.
func (s *Store) DeleteModel(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM model_coefficients WHERE model_id IN (SELECT id FROM models WHERE name = ?)`, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("%w: %q", ErrNotFound, name)
		return err
	}
	return tx.Commit()
}
