// SPDX-License-Identifier: MIT

package entity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/mcinput/table"
)

// ErrNoData is returned when neither a file nor a template resolves.
var ErrNoData = errors.New("entity: no data")

// ReadCSV reads an entity table. A leading column with an empty header is a
// row label written by spreadsheet exports and is dropped.
func ReadCSV(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("entity.ReadCSV(%s): %w", path, err)
	}
	defer f.Close()

	t, err := readCSV(f, name)
	if err != nil {
		return nil, fmt.Errorf("entity.ReadCSV(%s): %w", path, err)
	}

	return t, nil
}

func readCSV(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return New(name, nil)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	skip := 0
	if strings.TrimSpace(header[0]) == "" {
		skip = 1
	}
	cols := make([]string, 0, len(header)-skip)
	for _, h := range header[skip:] {
		cols = append(cols, strings.TrimSpace(h))
	}
	t, err := New(name, cols)
	if err != nil {
		return nil, err
	}
	for _, rec := range records[1:] {
		cells := make([]Cell, len(cols))
		for j := range cols {
			if j+skip < len(rec) {
				cells[j] = ParseCell(rec[j+skip])
			}
		}
		if err = t.Append(cells); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Load reads an entity table from a single file, or from one file per zone
// when path is templated. Per-zone files are read concurrently and stacked
// in zone order; a zone without a file is logged and skipped.
func Load(ctx context.Context, path string, zones []string, name string, log *zap.Logger) (*Table, error) {
	log = log.With(zap.String("table", name))
	if table.IsFile(path) {
		return ReadCSV(path, name)
	}
	if !table.Templated(path) {
		return nil, fmt.Errorf("entity.Load(%s) %q: %w", name, path, ErrNoData)
	}

	parts := make([]*Table, len(zones))
	g, ctx := errgroup.WithContext(ctx)
	for i, z := range zones {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := table.Expand(path, z)
			t, err := ReadCSV(p, name)
			if errors.Is(err, fs.ErrNotExist) {
				log.Error("per-zone file not found", zap.String("zone", z), zap.String("path", p))
				return nil
			}
			if err != nil {
				return err
			}
			parts[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := parts[:0]
	for _, p := range parts {
		if p != nil {
			found = append(found, p)
		}
	}

	return Concat(name, found...), nil
}
