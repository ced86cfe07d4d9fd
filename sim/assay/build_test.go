package assay

import (
	"context"
	"strings"
	"testing"
	"time"

	sim "github.com/selex-sim/selex-sim/sim"
)

func TestBuild_DefaultSpec_ProgramStructure(t *testing.T) {
	// GIVEN the bench protocol defaults
	spec := DefaultSpec()

	// WHEN the program is built
	program, err := Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// THEN the deck, instruments, and command stream are all in place
	if program.Name != spec.Name {
		t.Errorf("program name: got %q", program.Name)
	}
	if program.Pipettes["p20"] == nil || program.Pipettes["p300"] == nil {
		t.Fatal("both pipettes should be mounted")
	}
	if program.Cycler == nil || program.Magnet == nil {
		t.Fatal("thermocycler and magnetic module should be present")
	}
	if len(program.Commands) == 0 {
		t.Fatal("command stream is empty")
	}
}

func TestBuild_RejectsInvalidSpec(t *testing.T) {
	spec := DefaultSpec()
	spec.PCRRuns = 0
	if _, err := Build(spec); err == nil || !strings.Contains(err.Error(), "pcr_runs") {
		t.Errorf("expected pcr_runs error, got %v", err)
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	// GIVEN two programs built from the same spec
	first, err := Build(DefaultSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := Build(DefaultSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// THEN the command streams are identical step for step
	if len(first.Commands) != len(second.Commands) {
		t.Fatalf("command counts differ: %d vs %d", len(first.Commands), len(second.Commands))
	}
	for i := range first.Commands {
		if first.Commands[i].String() != second.Commands[i].String() {
			t.Fatalf("step %d differs: %q vs %q", i+1, first.Commands[i], second.Commands[i])
		}
	}
}

// simulate builds and dry-runs a spec, returning the simulator.
func simulate(t *testing.T, spec *Spec) *sim.Simulator {
	t.Helper()
	program, err := Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := sim.NewSimulator(program, sim.Config{})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	return s
}

func hasWarningContaining(s *sim.Simulator, substr string) bool {
	for _, w := range s.Journal.Warnings() {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

func TestDryRun_DefaultSpec_SurfacesBenchQuirks(t *testing.T) {
	// GIVEN the full two-run protocol
	s := simulate(t, DefaultSpec())

	// THEN the known handling quirks show up as warnings:
	// the 240 µL library draw from a 160 µL pool,
	if !hasWarningContaining(s, "only 160 µL was available") {
		t.Error("missing pool shortfall warning")
	}
	// run two seeding from an archive well the first run never filled,
	if !hasWarningContaining(s, "only 0 µL was available") {
		t.Error("missing empty-seed warning")
	}
	// and cycler wells loaded above the commanded block max.
	if !hasWarningContaining(s, "block max") {
		t.Error("missing block-max warning")
	}
	if s.Metrics.Warnings != len(s.Journal.Warnings()) {
		t.Errorf("metrics warnings %d != journal warnings %d",
			s.Metrics.Warnings, len(s.Journal.Warnings()))
	}
}

func TestDryRun_SingleRunSingleRound_TipUsage(t *testing.T) {
	// GIVEN one PCR run and one competitor-free selection round
	spec := DefaultSpec()
	spec.PCRRuns = 1
	spec.CompetitorUL = []float64{0}

	// WHEN the dry run completes
	s := simulate(t, spec)

	// THEN tip usage is fixed by the protocol shape: three p20 tips
	// (seeding, manganese, water) and twenty p300 tips (eight master
	// mixes, pooling, the library move, and the round's ten handles).
	if got := s.Metrics.TipsUsed["p20"]; got != 3 {
		t.Errorf("p20 tips: got %d, want 3", got)
	}
	if got := s.Metrics.TipsUsed["p300"]; got != 20 {
		t.Errorf("p300 tips: got %d, want 20", got)
	}
	if s.Metrics.CommandsExecuted == 0 || s.Metrics.TotalAspiratedUL == 0 {
		t.Error("metrics not populated")
	}
}

func TestDryRun_ClockAdvancesThroughIncubations(t *testing.T) {
	// GIVEN a single round protocol
	spec := DefaultSpec()
	spec.PCRRuns = 1
	spec.CompetitorUL = []float64{0}

	s := simulate(t, spec)

	// THEN the virtual clock covers at least the commanded holds: the
	// 35-cycle PCR alone is 35 × 70 s of hold time.
	minHold := time.Duration(spec.Cycler.Repetitions) * 70 * time.Second
	if s.Clock < minHold {
		t.Errorf("clock %s shorter than the cycling holds %s", s.Clock, minHold)
	}
}

func TestLayout_SeedWellProgression(t *testing.T) {
	lay, err := NewLayout()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if lay.seedWell(1) != lay.Library {
		t.Error("run one should seed from the naive library")
	}
	if lay.seedWell(2) != lay.Archives[0] {
		t.Error("run two should seed from the first archive row")
	}
}

func TestLayout_ReagentPlacement(t *testing.T) {
	lay, err := NewLayout()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if lay.Water.Reagent != "water" || lay.Waste.VolumeUL != 0 {
		t.Errorf("reservoir setup: water=%q waste=%v", lay.Water.Reagent, lay.Waste.VolumeUL)
	}
	if len(lay.MasterMix) != 4 || lay.MasterMix[0].VolumeUL != 360 {
		t.Errorf("master mix bank: %d wells", len(lay.MasterMix))
	}
	if len(lay.Pools) != 8 || len(lay.Archives) != 8 {
		t.Errorf("pool/archive banks: %d/%d wells", len(lay.Pools), len(lay.Archives))
	}
	if len(lay.TipRacks300) != 3 {
		t.Errorf("p300 racks: got %d, want 3", len(lay.TipRacks300))
	}
	if len(lay.P300.TipRacks) != 1 || lay.P300.TipRacks[0] != lay.TipRacks300[2] {
		t.Error("p300 should bind only the slot-9 rack")
	}
}
