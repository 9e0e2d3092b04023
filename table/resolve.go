// SPDX-License-Identifier: MIT

package table

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Placeholder marks the position of the key in a templated path.
const Placeholder = "##"

// Request describes one zone- or line-keyed table to resolve.
type Request struct {
	Name    string      // table name used in diagnostics
	Path    string      // single file, template containing Placeholder, or empty
	Index   []time.Time // target index
	Keys    []string    // zones or lines, in output order
	Default *float64    // broadcast value when data is missing; nil leaves columns absent
}

// Templated reports whether path contains the key placeholder.
func Templated(path string) bool { return strings.Contains(path, Placeholder) }

// Expand substitutes key into a templated path.
func Expand(path, key string) string { return strings.ReplaceAll(path, Placeholder, key) }

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)

	return err == nil && st.Mode().IsRegular()
}

// ResolveZoneTable loads a table with one column per key, aligned to req.Index.
//
// Resolution order:
//  1. req.Path is an existing file: a single data column is broadcast to
//     every key; otherwise each key takes its homonymous column and a key
//     without a column is warned about and receives the default.
//  2. req.Path is a template: one file per key, loaded concurrently; the
//     first data column of each file is used. A missing file is fatal.
//  3. otherwise: every key receives the default (info log).
//
// Behavior highlights:
//   - Keys that end up without data and without a default are absent from
//     the result.
//   - Timestamps of req.Index that a file does not cover are NaN.
//   - Output columns follow req.Keys, whatever the file column order.
//
// Inputs:
//   - ctx: cancels the concurrent template loads.
//   - req: name, path, target index, keys and optional default.
//
// Returns:
//   - *Table: one column per resolved key.
//   - error: ErrMissingFile for a missing templated file, or a CSV read
//     failure.
//
// Complexity: O(K × T) for K keys and T timestamps, plus file reads.
func ResolveZoneTable(ctx context.Context, req Request, log *zap.Logger) (*Table, error) {
	log = log.With(zap.String("table", req.Name))
	out := New(req.Index)

	switch {
	case IsFile(req.Path):
		raw, err := ReadCSV(req.Path)
		if err != nil {
			return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
		}
		aligned := raw.Align(req.Index)
		cols := aligned.Columns()
		if len(cols) == 1 {
			log.Info("single-column file broadcast to every key", zap.String("path", req.Path))
			values, _ := aligned.Column(cols[0])
			for _, k := range req.Keys {
				if err = out.Add(k, values); err != nil {
					return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
				}
			}
			return out, nil
		}
		for _, k := range req.Keys {
			if values, ok := aligned.Column(k); ok {
				if err = out.Add(k, values); err != nil {
					return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
				}
				continue
			}
			if req.Default == nil {
				log.Warn("key not found in file, no default available", zap.String("key", k), zap.String("path", req.Path))
				continue
			}
			log.Warn("key not found in file, using default",
				zap.String("key", k), zap.String("path", req.Path), zap.Float64("default", *req.Default))
			if err = out.Constant(k, *req.Default); err != nil {
				return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
			}
		}
		return out, nil

	case Templated(req.Path):
		cols, err := loadTemplated(ctx, req.Path, req.Keys)
		if err != nil {
			return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
		}
		for i, k := range req.Keys {
			if err = out.Add(k, cols[i].Align(req.Index).firstColumn()); err != nil {
				return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
			}
		}
		return out, nil
	}

	if req.Path != "" {
		log.Warn("file not found", zap.String("path", req.Path))
	}
	if req.Default == nil {
		log.Info("no data file, table left empty")
		return out, nil
	}
	log.Info("no data file, using default", zap.Float64("default", *req.Default))
	for _, k := range req.Keys {
		if err := out.Constant(k, *req.Default); err != nil {
			return nil, fmt.Errorf("ResolveZoneTable(%s): %w", req.Name, err)
		}
	}

	return out, nil
}

// loadTemplated reads one file per key in parallel. Results keep key order.
func loadTemplated(ctx context.Context, path string, keys []string) ([]*Table, error) {
	out := make([]*Table, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := Expand(path, k)
			t, err := ReadCSV(p)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("key %q (%s): %w", k, p, ErrMissingFile)
			}
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// firstColumn returns the first data column or an all-NaN column.
func (t *Table) firstColumn() []float64 {
	if len(t.columns) > 0 {
		return t.data[0]
	}
	values := make([]float64, len(t.index))
	for i := range values {
		values[i] = math.NaN()
	}

	return values
}
