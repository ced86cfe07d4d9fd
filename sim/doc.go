// Package sim provides the dry-run simulation engine for selex-sim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - well.go: per-well volume bookkeeping and the clamp-and-report rules
//   - command.go: the Command types that make up a protocol program
//   - simulator.go: the strictly ordered execution loop and journal emission
//
// # Architecture
//
// A protocol is a Program: a virtual deck (labware in slots, pipettes,
// thermocycler, magnetic module) plus a flat list of Commands. The
// Simulator executes the commands in order against the deck, advancing a
// virtual clock, and appends one or more journal records per command.
// Volume violations never corrupt state: wells clamp at empty and at
// capacity, and the violation amount is surfaced as a warning record.
//
// Sub-packages:
//   - sim/journal/: pure-data action records and summaries (no sim deps)
//   - sim/assay/: the directed-evolution assay spec, deck layout, and
//     program builder
//
// The sim package models only what volume bookkeeping needs. There is no
// motion planning and no module physics: durations come from commanded
// hold and delay times, flow-rate arithmetic, and a small set of fixed
// handling costs (see timing.go).
package sim
