// SPDX-License-Identifier: MIT

package assemble

import (
	"github.com/oklog/ulid/v2"

	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/tensor"
)

// Version tags every produced package.
const Version = "1.0.0"

// Package is the complete solver input produced by Build.
type Package struct {
	Sets       *tensor.Sets
	Parameters []*tensor.Parameter
	Units      *entity.Table
	Demands    *entity.Table
	Config     *config.Config
	Horizon    Horizon
	Version    string
	BuildID    ulid.ULID
}

// Parameter returns the parameter called name.
func (p *Package) Parameter(name string) (*tensor.Parameter, bool) {
	for _, prm := range p.Parameters {
		if prm.Name == name {
			return prm, true
		}
	}

	return nil, false
}
