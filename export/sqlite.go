// SPDX-License-Identifier: MIT
// Package export writes a built input package to disk: a SQLite database
// holding every set and parameter, and a YAML manifest describing them.
package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/katalvlaran/mcinput/assemble"
	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/tensor"
)

// ErrNilPackage is returned when there is nothing to write.
var ErrNilPackage = errors.New("export: nil package")

const schema = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE sets (
	label TEXT NOT NULL,
	position INTEGER NOT NULL,
	member TEXT NOT NULL,
	PRIMARY KEY(label, position)
);

CREATE TABLE parameters (
	name TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	signature TEXT NOT NULL,
	shape TEXT NOT NULL,
	boolean INTEGER NOT NULL
);

CREATE TABLE parameter_values (
	name TEXT NOT NULL,
	cell INTEGER NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY(name, cell),
	FOREIGN KEY(name) REFERENCES parameters(name)
);

CREATE TABLE units (
	position INTEGER NOT NULL,
	attribute TEXT NOT NULL,
	text TEXT,
	number REAL,
	PRIMARY KEY(position, attribute)
);

CREATE TABLE demands (
	position INTEGER NOT NULL,
	attribute TEXT NOT NULL,
	text TEXT,
	number REAL,
	PRIMARY KEY(position, attribute)
);
`

// WriteSQLite writes pkg to a fresh SQLite database at path, replacing any
// existing file. Parameter values are stored flat in row-major order; only
// non-zero cells are written, the shape restores the rest.
func WriteSQLite(ctx context.Context, path string, pkg *assemble.Package) error {
	if pkg == nil {
		return ErrNilPackage
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("export.WriteSQLite(%s): %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("export.WriteSQLite(%s): %w", path, err)
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("export.WriteSQLite(%s): %w", path, err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export.WriteSQLite(%s): %w", path, err)
	}
	if err = writeAll(ctx, tx, pkg); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("export.WriteSQLite(%s): %w", path, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("export.WriteSQLite(%s): %w", path, err)
	}

	return nil
}

func writeAll(ctx context.Context, tx *sql.Tx, pkg *assemble.Package) error {
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if err := writeMeta(ctx, tx, pkg); err != nil {
		return err
	}
	if err := writeSets(ctx, tx, pkg.Sets); err != nil {
		return err
	}
	if err := writeParameters(ctx, tx, pkg.Parameters); err != nil {
		return err
	}
	if err := writeEntities(ctx, tx, "units", pkg.Units); err != nil {
		return err
	}

	return writeEntities(ctx, tx, "demands", pkg.Demands)
}

func writeMeta(ctx context.Context, tx *sql.Tx, pkg *assemble.Package) error {
	meta := [][2]string{
		{"version", pkg.Version},
		{"build_id", pkg.BuildID.String()},
	}
	if len(pkg.Horizon.Standard) > 0 {
		meta = append(meta,
			[2]string{"first_step", pkg.Horizon.First().Format("2006-01-02 15:04:05")},
			[2]string{"last_step", pkg.Horizon.Last().Format("2006-01-02 15:04:05")},
			[2]string{"time_step", pkg.Horizon.Step.String()},
		)
	}
	if pkg.Config != nil {
		meta = append(meta,
			[2]string{"zones", strings.Join(pkg.Config.Zones, ",")},
			[2]string{"horizon_length", strconv.Itoa(pkg.Config.HorizonLength)},
			[2]string{"look_ahead", strconv.Itoa(pkg.Config.LookAhead)},
			[2]string{"storage_set", pkg.Config.Variants.StorageSet},
		)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("meta: %w", err)
	}
	defer stmt.Close()
	for _, kv := range meta {
		if _, err = stmt.ExecContext(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("meta %s: %w", kv[0], err)
		}
	}

	return nil
}

func writeSets(ctx context.Context, tx *sql.Tx, sets *tensor.Sets) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO sets (label, position, member) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sets: %w", err)
	}
	defer stmt.Close()
	for _, label := range sets.Labels() {
		members, err := sets.Members(label)
		if err != nil {
			return fmt.Errorf("sets: %w", err)
		}
		for i, m := range members {
			if _, err = stmt.ExecContext(ctx, label, i, m); err != nil {
				return fmt.Errorf("sets %s: %w", label, err)
			}
		}
	}

	return nil
}

func writeParameters(ctx context.Context, tx *sql.Tx, params []*tensor.Parameter) error {
	head, err := tx.PrepareContext(ctx,
		"INSERT INTO parameters (name, position, signature, shape, boolean) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	defer head.Close()
	cell, err := tx.PrepareContext(ctx, "INSERT INTO parameter_values (name, cell, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	defer cell.Close()

	for i, p := range params {
		if _, err = head.ExecContext(ctx, p.Name, i,
			strings.Join(p.Signature, ","), joinInts(p.Value.Shape()), p.Value.Bool()); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		for off, v := range p.Value.Data() {
			if v == 0 {
				continue
			}
			if _, err = cell.ExecContext(ctx, p.Name, off, v); err != nil {
				return fmt.Errorf("parameter %s: %w", p.Name, err)
			}
		}
	}

	return nil
}

func writeEntities(ctx context.Context, tx *sql.Tx, name string, t *entity.Table) error {
	if t == nil {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+name+" (position, attribute, text, number) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		for _, c := range t.Columns() {
			var text, number any
			switch cell := t.Cell(i, c); cell.Kind() {
			case entity.Number:
				number = cell.Float()
			case entity.Text:
				text = cell.String()
			default:
				continue
			}
			if _, err = stmt.ExecContext(ctx, i, c, text, number); err != nil {
				return fmt.Errorf("%s row %d: %w", name, i, err)
			}
		}
	}

	return nil
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = strconv.Itoa(x)
	}

	return strings.Join(s, ",")
}
