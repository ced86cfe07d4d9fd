// Package assay defines the directed-evolution protocol this repository
// automates: epPCR library preparation followed by iterative SELEX
// selection rounds of increasing stringency. The Spec holds the
// protocol's tunable constants, Layout the fixed deck plan, and Build
// turns both into a sim.Program for dry-run execution.
package assay

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the tunable parameter set of the assay, loadable from YAML.
// Defaults reproduce the bench protocol exactly; see DefaultSpec.
type Spec struct {
	Name    string `yaml:"name"`
	PCRRuns int    `yaml:"pcr_runs"`

	// epPCR volumes, all µL
	SeedUL       float64 `yaml:"seed_ul"`        // aptamers seeded into each cycler well
	ManganeseUL  float64 `yaml:"manganese_ul"`   // manganese spike for the error-prone half
	WaterTopUpUL float64 `yaml:"water_topup_ul"` // water balance for the plain half
	MasterMixUL  float64 `yaml:"master_mix_ul"`  // biased master mix per well
	PoolUL       float64 `yaml:"pool_ul"`        // per-well pooling draw after cycling

	// SELEX volumes, all µL
	LibraryUL     float64   `yaml:"library_ul"`     // pooled library moved into selection
	CompetitorUL  []float64 `yaml:"competitor_ul"`  // per-round competitor gradient (stringency)
	BeadUL        float64   `yaml:"bead_ul"`        // magnetic bead suspension per round
	EthanolWashUL float64   `yaml:"ethanol_wash_ul"`
	AirGapUL      float64   `yaml:"air_gap_ul"` // gap drawn above ethanol and merges
	ElutionUL     float64   `yaml:"elution_ul"`
	RecoveryUL    float64   `yaml:"recovery_ul"` // supernatant recovered after elution

	// Incubations, minutes
	BindMinutes    float64 `yaml:"bind_minutes"`
	CaptureMinutes float64 `yaml:"capture_minutes"`
	AirDryMinutes  float64 `yaml:"air_dry_minutes"`
	EluteMinutes   float64 `yaml:"elute_minutes"`

	MagnetHeightMM float64 `yaml:"magnet_height_mm"`

	// Bead denature between rounds
	DenatureTempC      float64 `yaml:"denature_temp_c"`
	DenatureMinutes    float64 `yaml:"denature_minutes"`
	DenatureBlockMaxUL float64 `yaml:"denature_block_max_ul"`

	Rates  RateSpec   `yaml:"flow_rates"`
	Cycler CyclerSpec `yaml:"cycler"`
}

// RateSpec holds the flow-rate multipliers applied over the pipettes'
// base rates. Fast rates are for water-like reagents, slow rates for
// viscous ones and for gentle bead handling.
type RateSpec struct {
	P300AspirateFast float64 `yaml:"p300_aspirate_fast"`
	P300AspirateSlow float64 `yaml:"p300_aspirate_slow"`
	P300DispenseFast float64 `yaml:"p300_dispense_fast"` // also used for mixing
	P300DispenseSlow float64 `yaml:"p300_dispense_slow"`
	P20AspirateFast  float64 `yaml:"p20_aspirate_fast"`
	P20AspirateSlow  float64 `yaml:"p20_aspirate_slow"`
	P20DispenseFast  float64 `yaml:"p20_dispense_fast"` // also used for mixing
	P20DispenseSlow  float64 `yaml:"p20_dispense_slow"`
}

// CyclerSpec holds the PCR temperature program.
type CyclerSpec struct {
	LidTempC               float64           `yaml:"lid_temp_c"`
	InitialDenatureTempC   float64           `yaml:"initial_denature_temp_c"`
	InitialDenatureSeconds float64           `yaml:"initial_denature_seconds"`
	Profile                []ProfileStepSpec `yaml:"profile"`
	Repetitions            int               `yaml:"repetitions"`
	FinalExtensionTempC    float64           `yaml:"final_extension_temp_c"`
	FinalExtensionMinutes  float64           `yaml:"final_extension_minutes"`
	HoldTempC              float64           `yaml:"hold_temp_c"`
	BlockMaxUL             float64           `yaml:"block_max_ul"`
}

// ProfileStepSpec is one temperature step of the cycling profile.
type ProfileStepSpec struct {
	TempC   float64 `yaml:"temp_c"`
	Seconds float64 `yaml:"seconds"`
}

// DefaultSpec returns the bench protocol's parameters: two epPCR runs of
// eight libraries each, four selection rounds with a 0/5/10/20 µL
// competitor gradient, and the 35-cycle 98/66/72 °C program.
func DefaultSpec() *Spec {
	return &Spec{
		Name:    "aptamer directed evolution pt 1",
		PCRRuns: 2,

		SeedUL:       5,
		ManganeseUL:  5,
		WaterTopUpUL: 5,
		MasterMixUL:  15,
		PoolUL:       20,

		LibraryUL:     240,
		CompetitorUL:  []float64{0, 5, 10, 20},
		BeadUL:        40,
		EthanolWashUL: 50,
		AirGapUL:      20,
		ElutionUL:     47,
		RecoveryUL:    45,

		BindMinutes:    5,
		CaptureMinutes: 3,
		AirDryMinutes:  10,
		EluteMinutes:   5,

		MagnetHeightMM: 2,

		DenatureTempC:      95,
		DenatureMinutes:    1,
		DenatureBlockMaxUL: 100,

		Rates: RateSpec{
			P300AspirateFast: 1.1,
			P300AspirateSlow: 0.43,
			P300DispenseFast: 1.6,
			P300DispenseSlow: 0.81,
			P20AspirateFast:  2.7,
			P20AspirateSlow:  1.32,
			P20DispenseFast:  4.0,
			P20DispenseSlow:  2.0,
		},
		Cycler: CyclerSpec{
			LidTempC:               98,
			InitialDenatureTempC:   98,
			InitialDenatureSeconds: 3,
			Profile: []ProfileStepSpec{
				{TempC: 98, Seconds: 10},
				{TempC: 66, Seconds: 30},
				{TempC: 72, Seconds: 30},
			},
			Repetitions:           35,
			FinalExtensionTempC:   72,
			FinalExtensionMinutes: 2,
			HoldTempC:             4,
			BlockMaxUL:            20,
		},
	}
}

// LoadSpec reads and parses a YAML assay specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assay spec: %w", err)
	}
	spec := DefaultSpec()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(spec); err != nil {
		return nil, fmt.Errorf("parsing assay spec: %w", err)
	}
	return spec, nil
}

// Validate checks that all fields of the spec are usable. Limits on run
// and round counts come from the fixed deck plan: the pooling and
// archive well banks hold six runs, and the capture plate rows hold
// four selection rounds per run.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if s.PCRRuns < 1 || s.PCRRuns > maxPCRRuns {
		return fmt.Errorf("pcr_runs must be in [1, %d], got %d", maxPCRRuns, s.PCRRuns)
	}
	if n := len(s.CompetitorUL); n < 1 || n > maxSelectionRounds {
		return fmt.Errorf("competitor_ul must list 1 to %d rounds, got %d", maxSelectionRounds, n)
	}
	for i, v := range s.CompetitorUL {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("competitor_ul[%d] must be a finite non-negative volume, got %f", i, v)
		}
	}
	volumes := []struct {
		name string
		val  float64
	}{
		{"seed_ul", s.SeedUL},
		{"manganese_ul", s.ManganeseUL},
		{"water_topup_ul", s.WaterTopUpUL},
		{"master_mix_ul", s.MasterMixUL},
		{"pool_ul", s.PoolUL},
		{"library_ul", s.LibraryUL},
		{"bead_ul", s.BeadUL},
		{"ethanol_wash_ul", s.EthanolWashUL},
		{"elution_ul", s.ElutionUL},
		{"recovery_ul", s.RecoveryUL},
	}
	for _, v := range volumes {
		if err := validateFinitePositive(v.name, v.val); err != nil {
			return err
		}
	}
	if s.AirGapUL < 0 || math.IsNaN(s.AirGapUL) || math.IsInf(s.AirGapUL, 0) {
		return fmt.Errorf("air_gap_ul must be a finite non-negative volume, got %f", s.AirGapUL)
	}
	minutes := []struct {
		name string
		val  float64
	}{
		{"bind_minutes", s.BindMinutes},
		{"capture_minutes", s.CaptureMinutes},
		{"air_dry_minutes", s.AirDryMinutes},
		{"elute_minutes", s.EluteMinutes},
	}
	for _, m := range minutes {
		if m.val < 0 || math.IsNaN(m.val) || math.IsInf(m.val, 0) {
			return fmt.Errorf("%s must be finite and non-negative, got %f", m.name, m.val)
		}
	}
	if err := validateFinitePositive("magnet_height_mm", s.MagnetHeightMM); err != nil {
		return err
	}
	if err := validateFinitePositive("denature_temp_c", s.DenatureTempC); err != nil {
		return err
	}
	if err := validateFinitePositive("denature_block_max_ul", s.DenatureBlockMaxUL); err != nil {
		return err
	}
	if err := s.Rates.validate(); err != nil {
		return err
	}
	return s.Cycler.validate()
}

func (r *RateSpec) validate() error {
	rates := []struct {
		name string
		val  float64
	}{
		{"p300_aspirate_fast", r.P300AspirateFast},
		{"p300_aspirate_slow", r.P300AspirateSlow},
		{"p300_dispense_fast", r.P300DispenseFast},
		{"p300_dispense_slow", r.P300DispenseSlow},
		{"p20_aspirate_fast", r.P20AspirateFast},
		{"p20_aspirate_slow", r.P20AspirateSlow},
		{"p20_dispense_fast", r.P20DispenseFast},
		{"p20_dispense_slow", r.P20DispenseSlow},
	}
	for _, rate := range rates {
		if err := validateFinitePositive("flow_rates."+rate.name, rate.val); err != nil {
			return err
		}
	}
	return nil
}

func (c *CyclerSpec) validate() error {
	if c.Repetitions < 1 {
		return fmt.Errorf("cycler.repetitions must be at least 1, got %d", c.Repetitions)
	}
	if len(c.Profile) == 0 {
		return fmt.Errorf("cycler.profile must list at least one step")
	}
	for i, step := range c.Profile {
		if step.Seconds < 0 || math.IsNaN(step.Seconds) || math.IsInf(step.Seconds, 0) {
			return fmt.Errorf("cycler.profile[%d]: seconds must be finite and non-negative, got %f", i, step.Seconds)
		}
	}
	if c.InitialDenatureSeconds < 0 {
		return fmt.Errorf("cycler.initial_denature_seconds must be non-negative, got %f", c.InitialDenatureSeconds)
	}
	if c.FinalExtensionMinutes < 0 {
		return fmt.Errorf("cycler.final_extension_minutes must be non-negative, got %f", c.FinalExtensionMinutes)
	}
	if err := validateFinitePositive("cycler.lid_temp_c", c.LidTempC); err != nil {
		return err
	}
	return validateFinitePositive("cycler.block_max_ul", c.BlockMaxUL)
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
