package assay

import (
	"fmt"
	"time"

	sim "github.com/selex-sim/selex-sim/sim"
)

// Handling constants the bench script hard-codes around the Spec's
// tunables. Bottom offsets only shape journal lines; the merge volumes
// are the wash volume plus the bead pellet carried to the cycler.
const (
	tcBottomMM      = 10 // dispense height above a PCR plate well bottom
	washBottomMM    = 12
	mergeBottomMM   = 16
	elutionBottomMM = 12
	waterBottomMM   = 7
	recoverBottomMM = 2

	masterMixReps  = 10
	masterMixVolUL = 30
	beadMixReps    = 5
	beadMixVolUL   = 150
	washMixReps    = 5
	washMixPairUL  = 50 // round one washes the split sample pair
	washMixUL      = 30
	mergeCarryUL   = 70 // wash plus pellet moved into the cycler well
	eluteMixReps   = 5
	eluteMixVolUL  = 30
)

// Build lays out the deck and emits the assay's full command sequence
// for the given spec. The stream follows the bench script step for
// step, including the handling quirks the dry run exists to surface:
// the water top-up that skips the fifth cycler well, the doubled merge
// from the row-A capture well in round one, and the library draw that
// exceeds the pooled volume.
func Build(spec *Spec) (*sim.Program, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("building assay: %w", err)
	}
	lay, err := NewLayout()
	if err != nil {
		return nil, fmt.Errorf("building assay: %w", err)
	}
	b := &builder{spec: spec, lay: lay}
	for run := 1; run <= spec.PCRRuns; run++ {
		if err := b.eppcrRun(run); err != nil {
			return nil, fmt.Errorf("building assay run %d: %w", run, err)
		}
		b.selexRounds(run)
	}
	return &sim.Program{
		Name: spec.Name,
		Deck: lay.Deck,
		Pipettes: map[string]*sim.Pipette{
			lay.P20.Name:  lay.P20,
			lay.P300.Name: lay.P300,
		},
		Cycler:   lay.Cycler,
		Magnet:   lay.Magnet,
		Commands: b.cmds,
	}, nil
}

type builder struct {
	spec *Spec
	lay  *Layout
	cmds []sim.Command
}

func (b *builder) add(cmds ...sim.Command) {
	b.cmds = append(b.cmds, cmds...)
}

func (b *builder) comment(format string, args ...any) {
	b.add(&sim.Comment{Text: fmt.Sprintf(format, args...)})
}

func (b *builder) pickUp(p *sim.Pipette)  { b.add(&sim.PickUpTip{Pipette: p.Name}) }
func (b *builder) drop(p *sim.Pipette)    { b.add(&sim.DropTip{Pipette: p.Name}) }
func (b *builder) delayMin(m float64, msg string) {
	b.add(&sim.Delay{D: minutes(m), Msg: msg})
}

func (b *builder) aspirate(p *sim.Pipette, w *sim.Well, vol, rate, bottomMM float64) {
	b.add(&sim.Aspirate{Pipette: p.Name, Well: w, VolumeUL: vol, Rate: rate, BottomMM: bottomMM})
}

func (b *builder) dispense(p *sim.Pipette, w *sim.Well, vol, rate, bottomMM float64) {
	b.add(&sim.Dispense{Pipette: p.Name, Well: w, VolumeUL: vol, Rate: rate, BottomMM: bottomMM})
}

func (b *builder) mix(p *sim.Pipette, w *sim.Well, reps int, vol, rate, bottomMM float64) {
	b.add(&sim.Mix{Pipette: p.Name, Well: w, Repetitions: reps, VolumeUL: vol, Rate: rate, BottomMM: bottomMM})
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// eppcrRun prepares one column of eight libraries on the cycler plate
// (manganese-spiked in rows A-D, water-balanced in E-H), runs the PCR
// program, and pools the products into the run's pooling well.
func (b *builder) eppcrRun(run int) error {
	spec, lay, r := b.spec, b.lay, &b.spec.Rates
	tcWells, err := lay.TCPlate.Column(run)
	if err != nil {
		return err
	}
	seed := lay.seedWell(run)

	b.add(&sim.OpenLid{})
	b.comment("Adding aptamers to the thermocycler plate")
	b.pickUp(lay.P20)
	for _, w := range tcWells {
		b.aspirate(lay.P20, seed, spec.SeedUL, r.P20AspirateFast, 0)
		b.dispense(lay.P20, w, spec.SeedUL, r.P20DispenseFast, tcBottomMM)
	}
	b.drop(lay.P20)

	b.comment("Adding additional manganese to the first four wells")
	b.pickUp(lay.P20)
	for _, w := range tcWells[:4] {
		b.aspirate(lay.P20, lay.Manganese, spec.ManganeseUL, r.P20AspirateSlow, 0)
		b.dispense(lay.P20, w, spec.ManganeseUL, r.P20DispenseSlow, tcBottomMM)
	}
	b.drop(lay.P20)

	// As on the bench: the top-up covers rows F-H only, leaving row E
	// short a balance volume. The volume ledger flags it downstream.
	b.comment("Adding water to the last four wells")
	b.pickUp(lay.P20)
	for _, w := range tcWells[5:8] {
		b.aspirate(lay.P20, lay.Water, spec.WaterTopUpUL, r.P20AspirateFast, 0)
		b.dispense(lay.P20, w, spec.WaterTopUpUL, r.P20DispenseFast, tcBottomMM)
	}
	b.drop(lay.P20)

	for i, w := range tcWells {
		b.comment("Adding appropriate master mix to each well")
		b.pickUp(lay.P300)
		b.aspirate(lay.P300, lay.MasterMix[i%len(lay.MasterMix)], spec.MasterMixUL, r.P300AspirateSlow, 0)
		b.dispense(lay.P300, w, spec.MasterMixUL, r.P300DispenseSlow, tcBottomMM)
		b.mix(lay.P300, w, masterMixReps, masterMixVolUL, r.P300DispenseFast, tcBottomMM)
		b.drop(lay.P300)
	}

	cy := &spec.Cycler
	b.comment("Running the thermocycler for PCR")
	b.add(&sim.CloseLid{})
	b.add(&sim.SetLidTemp{TempC: cy.LidTempC})
	b.add(&sim.SetBlockTemp{TempC: cy.InitialDenatureTempC, Hold: secs(cy.InitialDenatureSeconds), BlockMaxUL: cy.BlockMaxUL})
	steps := make([]sim.ProfileStep, 0, len(cy.Profile))
	for _, st := range cy.Profile {
		steps = append(steps, sim.ProfileStep{TempC: st.TempC, Hold: secs(st.Seconds)})
	}
	b.add(&sim.RunProfile{Steps: steps, Repetitions: cy.Repetitions, BlockMaxUL: cy.BlockMaxUL})
	b.add(&sim.SetBlockTemp{TempC: cy.FinalExtensionTempC, Hold: minutes(cy.FinalExtensionMinutes), BlockMaxUL: cy.BlockMaxUL})
	b.add(&sim.SetBlockTemp{TempC: cy.HoldTempC})
	b.add(&sim.OpenLid{})
	b.add(&sim.DeactivateLid{})

	b.comment("Pooling the resulting aptamers in the 96 wellplate")
	b.pickUp(lay.P300)
	for _, w := range tcWells {
		b.aspirate(lay.P300, w, spec.PoolUL, r.P300AspirateSlow, tcBottomMM)
		b.dispense(lay.P300, lay.Pools[run-1], spec.PoolUL, r.P300DispenseSlow, 0)
	}
	b.drop(lay.P300)
	return nil
}

// selexRounds runs the selection rounds for one PCR run's pooled
// library: competitor, beads, magnetic capture, ethanol wash, thermal
// denature, elution, and recovery, with the final round archived.
func (b *builder) selexRounds(run int) {
	spec, lay, r := b.spec, b.lay, &b.spec.Rates
	selCol := run + 6     // selection wells on the working and PCR plates
	captureCol := run*2 - 1
	elutionCol := run * 2
	libVol := spec.LibraryUL

	b.comment("Moving the aptamer library after PCR run %d", run)
	b.pickUp(lay.P300)
	b.aspirate(lay.P300, lay.Pools[run-1], libVol, 0, 0)
	b.dispense(lay.P300, lay.Plate.WellAt(0, selCol), libVol, 0, 0)
	b.drop(lay.P300)

	for k, competitorUL := range spec.CompetitorUL {
		work := lay.Plate.WellAt(k, selCol)
		if competitorUL == 0 {
			b.comment("No competitor added for the first selection round")
		} else {
			b.pickUp(lay.P20)
			b.comment("Adding %s µL of competitor", sim.FormatUL(competitorUL))
			b.aspirate(lay.P20, lay.Competitor, competitorUL, r.P20AspirateFast, 0)
			b.dispense(lay.P20, work, competitorUL, r.P20DispenseFast, 0)
			b.drop(lay.P20)
		}

		b.comment("Adding magnetic beads")
		b.pickUp(lay.P300)
		b.aspirate(lay.P300, lay.Beads, spec.BeadUL, 0, 0)
		b.dispense(lay.P300, work, spec.BeadUL, 0, 0)
		b.mix(lay.P300, work, beadMixReps, beadMixVolUL, r.P300DispenseFast, 0)
		b.drop(lay.P300)

		b.delayMin(spec.BindMinutes, "binding incubation")
		b.add(&sim.OpenLid{})

		carryUL := libVol + competitorUL + spec.BeadUL
		captureA := lay.MagPlate.WellAt(k*2, captureCol)
		tcWell := lay.TCPlate.WellAt(k, selCol)

		b.pickUp(lay.P300)
		b.aspirate(lay.P300, work, carryUL, r.P300AspirateSlow, 0)
		if k == 0 {
			// Round one carries the undiluted library; split the sample
			// across two capture wells so neither overflows.
			captureB := lay.MagPlate.WellAt(1, captureCol)
			b.dispense(lay.P300, captureA, carryUL/2, r.P300DispenseSlow, 0)
			b.dispense(lay.P300, captureB, carryUL/2, r.P300DispenseSlow, 0)
			b.drop(lay.P300)
			b.capture(captureA, captureB, (libVol+competitorUL)/2)
			b.comment("Performing ethanol wash")
			for wash := 0; wash < 2; wash++ {
				washWell := lay.MagPlate.WellAt(k+wash, captureCol)
				b.washWell(washWell, washMixPairUL)
				// The bench script merges inside the wash loop and
				// draws from the row-A capture well both times; the
				// second pass empties an already-empty well and the
				// ledger flags it.
				b.mergeToCycler(captureA, tcWell)
			}
			b.comment("Samples merged in thermocycler well")
		} else {
			b.dispense(lay.P300, captureA, carryUL, r.P300DispenseSlow, 0)
			b.drop(lay.P300)
			b.capture(captureA, nil, libVol+competitorUL)
			b.comment("Performing ethanol wash")
			b.washWell(captureA, washMixUL)
			b.mergeToCycler(captureA, tcWell)
			b.comment("Sample moved into the thermocycler well")
		}

		b.comment("Heat to %s °C", sim.FormatUL(spec.DenatureTempC))
		b.add(&sim.CloseLid{})
		b.add(&sim.SetBlockTemp{TempC: spec.DenatureTempC, Hold: minutes(spec.DenatureMinutes), BlockMaxUL: spec.DenatureBlockMaxUL})
		b.add(&sim.SetBlockTemp{TempC: spec.Cycler.HoldTempC})
		b.add(&sim.OpenLid{})
		b.add(&sim.DeactivateLid{})
		b.delayMin(spec.AirDryMinutes, "air dry the pellet at room temperature")

		elutionWell := lay.MagPlate.WellAt(k*2, elutionCol)
		b.comment("Adding elution buffer")
		b.pickUp(lay.P300)
		b.aspirate(lay.P300, lay.Water, spec.ElutionUL, r.P300AspirateFast, waterBottomMM)
		b.dispense(lay.P300, tcWell, spec.ElutionUL, r.P300DispenseFast, elutionBottomMM)
		b.mix(lay.P300, tcWell, eluteMixReps, eluteMixVolUL, r.P300DispenseFast, elutionBottomMM)
		b.aspirate(lay.P300, tcWell, spec.ElutionUL, r.P300AspirateFast, elutionBottomMM)
		b.dispense(lay.P300, elutionWell, spec.ElutionUL, r.P300DispenseFast, 0)
		b.drop(lay.P300)

		b.add(&sim.Engage{HeightMM: spec.MagnetHeightMM})
		b.delayMin(spec.EluteMinutes, "incubate to allow beads to move to the magnet")

		recovery := lay.Plate.WellAt(k+1, selCol)
		b.pickUp(lay.P300)
		b.aspirate(lay.P300, elutionWell, spec.RecoveryUL, r.P300AspirateSlow, recoverBottomMM)
		b.dispense(lay.P300, recovery, spec.RecoveryUL, 0, 0)
		b.drop(lay.P300)

		libVol = spec.RecoveryUL
		b.comment("End of selection round %d", k+1)

		if k == len(spec.CompetitorUL)-1 {
			b.pickUp(lay.P300)
			b.aspirate(lay.P300, recovery, spec.RecoveryUL, 0, 0)
			b.dispense(lay.P300, lay.Archives[run], spec.RecoveryUL, 0, 0)
			b.drop(lay.P300)
		}
	}
}

// capture engages the magnet, waits, and pulls the supernatant of one
// or two capture wells to waste, leaving the bead pellet behind.
func (b *builder) capture(wellA, wellB *sim.Well, supernatantUL float64) {
	spec, lay, r := b.spec, b.lay, &b.spec.Rates
	b.comment("Magnet activation")
	b.add(&sim.Engage{HeightMM: spec.MagnetHeightMM})
	b.delayMin(spec.CaptureMinutes, "incubation to allow beads to move to the magnet")
	b.pickUp(lay.P300)
	b.aspirate(lay.P300, wellA, supernatantUL, r.P300AspirateSlow, 0)
	b.dispense(lay.P300, lay.Waste, supernatantUL, r.P300DispenseFast, 0)
	if wellB != nil {
		b.aspirate(lay.P300, wellB, supernatantUL, r.P300AspirateSlow, 0)
		b.dispense(lay.P300, lay.Waste, supernatantUL, r.P300DispenseFast, 0)
	}
	b.drop(lay.P300)
	b.comment("Magnet deactivation")
	b.add(&sim.Disengage{})
}

// washWell floods a capture well with ethanol under an air gap and
// resuspends the pellet.
func (b *builder) washWell(well *sim.Well, mixVolUL float64) {
	spec, lay, r := b.spec, b.lay, &b.spec.Rates
	b.pickUp(lay.P300)
	b.aspirate(lay.P300, lay.Ethanol, spec.EthanolWashUL, r.P300AspirateSlow, 0)
	b.add(&sim.AirGap{Pipette: lay.P300.Name, VolumeUL: spec.AirGapUL})
	b.dispense(lay.P300, well, spec.AirGapUL, 0, washBottomMM)
	b.dispense(lay.P300, well, spec.EthanolWashUL, 0, 0)
	b.mix(lay.P300, well, washMixReps, mixVolUL, r.P300DispenseFast, 0)
	b.drop(lay.P300)
}

// mergeToCycler moves a washed sample from a capture well into its
// thermocycler well, gap first.
func (b *builder) mergeToCycler(from, to *sim.Well) {
	spec, lay := b.spec, b.lay
	b.pickUp(lay.P300)
	b.aspirate(lay.P300, from, mergeCarryUL, 0, 0)
	b.add(&sim.AirGap{Pipette: lay.P300.Name, VolumeUL: spec.AirGapUL})
	b.dispense(lay.P300, to, spec.AirGapUL, 0, mergeBottomMM)
	b.dispense(lay.P300, to, mergeCarryUL, 0, tcBottomMM)
	b.drop(lay.P300)
}
