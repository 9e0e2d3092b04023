// Package mcinput prepares the input data of a day-ahead market-clearing
// optimizer: it reads the market participants, their order quantities and
// prices, the transmission network and the storage reservoirs, checks them,
// and assembles the index sets and parameter tensors the solver consumes.
//
// What a build produces:
//
//	• Sets: demands, units, order types, zones, lines, technologies,
//	  renewables, fuels, storage, time steps, sectors, config axes
//	• Parameters: dense tensors over those sets, numeric or boolean
//	• Artifacts: a SQLite database, a YAML manifest, a metrics textfile
//
// Everything is organized under these packages:
//
//	table/     time-indexed tables, CSV reading, per-zone file templates
//	entity/    unit and demand tables, selection of simulated entities
//	fallback/  per-entity series lookup: unit, then technology, then zone
//	topology/  line classification, rest-of-world flows, incidence matrix
//	validate/  structural and range checks with typed errors
//	tensor/    sets registry, dense tensors and the parameter builder
//	assemble/  the build pipeline and the resulting Package
//	export/    SQLite and manifest writers
//	config/    YAML configuration with environment overrides
//	diag/      zap logger and Prometheus counters
//	cmd/mcinput command-line entry point
//
// Quick flow:
//
//	config ─► entity ─► fallback ─► topology ─► validate ─► tensor ─► export
//
//	go run ./cmd/mcinput --config simulation.yaml
package mcinput
