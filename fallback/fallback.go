// SPDX-License-Identifier: MIT
// Package fallback resolves per-entity time series through an ordered list of
// lookup keys: the entity's own identifier first, then progressively more
// generic attributes (technology, zone, ...). The first key whose value names
// a column of the source wins; its series is copied unscaled.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/table"
)

// ErrDuplicateEntity is returned when two entities resolve to the same output column.
var ErrDuplicateEntity = errors.New("fallback: duplicate entity")

// Source is a set of time-indexed tables searched by header. A single
// source is keyed by header alone; a per-zone source by (zone, header).
type Source struct {
	single *table.Table
	zones  map[string]*table.Table
}

// Empty reports whether the source holds no table at all.
func (s *Source) Empty() bool {
	return s == nil || (s.single == nil && len(s.zones) == 0)
}

// NewSource wraps a single table.
func NewSource(t *table.Table) *Source { return &Source{single: t} }

// NewZoneSource wraps one table per zone.
func NewZoneSource(byZone map[string]*table.Table) *Source {
	return &Source{zones: byZone}
}

// LoadSource reads a source from path. An existing file yields a single
// source; a template yields one table per zone, loaded concurrently, where a
// missing file is logged as an error and the zone contributes nothing. An
// empty or unresolved path yields an empty source.
func LoadSource(ctx context.Context, path string, zones []string, name string, log *zap.Logger) (*Source, error) {
	log = log.With(zap.String("table", name))
	switch {
	case table.IsFile(path):
		t, err := table.ReadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("LoadSource(%s): %w", name, err)
		}
		return NewSource(t), nil

	case table.Templated(path):
		tables := make([]*table.Table, len(zones))
		g, ctx := errgroup.WithContext(ctx)
		for i, z := range zones {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				p := table.Expand(path, z)
				t, err := table.ReadCSV(p)
				if errors.Is(err, fs.ErrNotExist) {
					log.Error("per-zone file not found", zap.String("zone", z), zap.String("path", p))
					return nil
				}
				if err != nil {
					return err
				}
				tables[i] = t
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("LoadSource(%s): %w", name, err)
		}
		byZone := make(map[string]*table.Table, len(zones))
		for i, z := range zones {
			if tables[i] != nil {
				byZone[z] = tables[i]
			}
		}
		return NewZoneSource(byZone), nil
	}

	if path != "" {
		log.Warn("file not found", zap.String("path", path))
	}

	return &Source{}, nil
}

// aligned returns a copy of the source with every table aligned to idx.
func (s *Source) aligned(idx []time.Time) *Source {
	out := &Source{}
	if s.single != nil {
		out.single = s.single.Align(idx)
	}
	if len(s.zones) > 0 {
		out.zones = make(map[string]*table.Table, len(s.zones))
		for z, t := range s.zones {
			out.zones[z] = t.Align(idx)
		}
	}

	return out
}

// lookup returns the series stored under header for an entity in zone.
func (s *Source) lookup(zone, header string) ([]float64, bool) {
	if s.single != nil {
		return s.single.Column(header)
	}
	t, ok := s.zones[zone]
	if !ok {
		return nil, false
	}

	return t.Column(header)
}

// Options control a resolution.
type Options struct {
	Table           string   // table name used in diagnostics
	Keys            []string // entity columns tried in order; defaults to [Unit]
	Default         *float64 // value for unresolved entities; nil leaves them absent
	RestrictWarning []string // non-nil: fallback warnings only for these technologies; empty silences them
}

// Resolve builds a table with one column per entity row, named after the
// entity identifier and aligned to idx.
//
// Implementation:
//   - Stage 1: no source → every entity receives the default.
//   - Stage 2: per entity, try opts.Keys in order; the first key whose value
//     is a header of the source (per-zone sources use the entity zone) wins.
//   - Stage 3: a match at a key other than the first is warned about, unless
//     RestrictWarning excludes the entity technology. No match → info log and
//     the default.
//
// Behavior highlights:
//   - Series are copied unscaled; timestamps absent from the source are NaN.
//   - An entity with an empty value at a key skips that key.
//   - A nil RestrictWarning warns for every entity, an empty one for none.
//
// Inputs:
//   - entities: the rows to resolve, in output column order.
//   - src: the searched tables; nil or empty means no data.
//   - idx: the output index.
//   - opts: keys, default and diagnostics; see Options.
//
// Returns:
//   - *table.Table: one column per resolved entity.
//   - error: ErrDuplicateEntity when two rows share an identifier.
//
// Complexity: O(entities × keys + entities × len(idx)).
func Resolve(entities *entity.Table, src *Source, idx []time.Time, opts Options, log *zap.Logger) (*table.Table, error) {
	keys := opts.Keys
	if len(keys) == 0 {
		keys = []string{entity.ColUnit}
	}
	log = log.With(zap.String("table", opts.Table))
	out := table.New(idx)
	ids := entities.IDs()

	if src.Empty() {
		if opts.Default == nil {
			log.Info("no data source, table left empty")
			return out, nil
		}
		log.Info("no data source, using default", zap.Float64("default", *opts.Default))
		for _, id := range ids {
			if err := out.Constant(id, *opts.Default); err != nil {
				return nil, fmt.Errorf("Resolve(%s): %w: %w", opts.Table, ErrDuplicateEntity, err)
			}
		}
		return out, nil
	}

	src = src.aligned(idx)
	for i, id := range ids {
		warn := opts.RestrictWarning == nil ||
			slices.Contains(opts.RestrictWarning, entities.Text(i, entity.ColTechnology))
		zone := entities.Text(i, entity.ColZone)

		var (
			series []float64
			found  bool
			k      int
			header string
		)
		for k = range keys {
			header = entities.Text(i, keys[k])
			if header == "" {
				continue
			}
			if series, found = src.lookup(zone, header); found {
				break
			}
		}

		switch {
		case found:
			if k > 0 && warn {
				log.Warn("no specific data for entity, using generic data",
					zap.String("entity", id), zap.String("fallback", keys[k]+"="+header))
			}
			if err := out.Add(id, series); err != nil {
				return nil, fmt.Errorf("Resolve(%s): %w: %w", opts.Table, ErrDuplicateEntity, err)
			}
		case opts.Default != nil:
			if warn {
				log.Info("entity not found, using default",
					zap.String("entity", id), zap.Float64("default", *opts.Default))
			}
			if err := out.Constant(id, *opts.Default); err != nil {
				return nil, fmt.Errorf("Resolve(%s): %w: %w", opts.Table, ErrDuplicateEntity, err)
			}
		default:
			if warn {
				log.Info("entity not found, left absent", zap.String("entity", id))
			}
		}
	}

	return out, nil
}

// Missing lists the entities of ids absent from t or whose series holds NaN.
func Missing(t *table.Table, ids []string) []string {
	var out []string
	for _, id := range ids {
		col, ok := t.Column(id)
		if !ok || slices.ContainsFunc(col, math.IsNaN) {
			out = append(out, id)
		}
	}

	return out
}
