// SPDX-License-Identifier: MIT

package export

import (
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/mcinput/assemble"
)

// positional sets are listed by size only; their members are 1..n.
var positional = map[string]bool{"h": true, "z": true}

// Manifest is the YAML summary of a package.
type Manifest struct {
	Version    string       `yaml:"version"`
	BuildID    string       `yaml:"build_id"`
	Built      time.Time    `yaml:"built"`
	FirstStep  time.Time    `yaml:"first_step"`
	LastStep   time.Time    `yaml:"last_step"`
	TimeStep   string       `yaml:"time_step"`
	Zones      []string     `yaml:"zones,flow"`
	Sets       []SetEntry   `yaml:"sets"`
	Parameters []ParamEntry `yaml:"parameters"`
}

// SetEntry describes one set.
type SetEntry struct {
	Label   string   `yaml:"label"`
	Size    int      `yaml:"size"`
	Members []string `yaml:"members,omitempty,flow"`
}

// ParamEntry describes one parameter.
type ParamEntry struct {
	Name      string   `yaml:"name"`
	Signature []string `yaml:"signature,flow"`
	Shape     []int    `yaml:"shape,flow"`
	Boolean   bool     `yaml:"boolean,omitempty"`
	NonZero   int      `yaml:"non_zero"`
}

// NewManifest summarizes pkg.
func NewManifest(pkg *assemble.Package) (*Manifest, error) {
	if pkg == nil {
		return nil, ErrNilPackage
	}
	m := &Manifest{
		Version:  pkg.Version,
		BuildID:  pkg.BuildID.String(),
		Built:    ulid.Time(pkg.BuildID.Time()).UTC(),
		TimeStep: pkg.Horizon.Step.String(),
	}
	if len(pkg.Horizon.Standard) > 0 {
		m.FirstStep, m.LastStep = pkg.Horizon.First(), pkg.Horizon.Last()
	}
	if pkg.Config != nil {
		m.Zones = append([]string(nil), pkg.Config.Zones...)
	}

	for _, label := range pkg.Sets.Labels() {
		members, err := pkg.Sets.Members(label)
		if err != nil {
			return nil, fmt.Errorf("NewManifest: %w", err)
		}
		e := SetEntry{Label: label, Size: len(members)}
		if !positional[label] {
			e.Members = members
		}
		m.Sets = append(m.Sets, e)
	}
	for _, p := range pkg.Parameters {
		nz := 0
		for _, v := range p.Value.Data() {
			if v != 0 {
				nz++
			}
		}
		m.Parameters = append(m.Parameters, ParamEntry{
			Name:      p.Name,
			Signature: append([]string(nil), p.Signature...),
			Shape:     p.Value.Shape(),
			Boolean:   p.Value.Bool(),
			NonZero:   nz,
		})
	}

	return m, nil
}

// WriteManifest writes the YAML manifest of pkg to path.
func WriteManifest(path string, pkg *assemble.Package) error {
	m, err := NewManifest(pkg)
	if err != nil {
		return fmt.Errorf("export.WriteManifest(%s): %w", path, err)
	}
	out, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("export.WriteManifest(%s): %w", path, err)
	}
	if err = os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("export.WriteManifest(%s): %w", path, err)
	}

	return nil
}
