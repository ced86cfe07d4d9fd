package assay

import (
	"fmt"

	sim "github.com/selex-sim/selex-sim/sim"
)

// Deck geometry the assay is laid out against. The pooling bank (column
// 2 of the working plate) and the archive bank (column 3) each hold six
// wells, bounding the run count; the capture plate pairs rows per
// selection round, bounding the rounds at four.
const (
	maxPCRRuns         = 6
	maxSelectionRounds = 4
)

// Layout is the fixed deck plan of the assay: labware placement,
// reagent wells, starting volumes, instruments, and modules. The plan
// never varies between runs; only the Spec's constants do.
type Layout struct {
	Deck *sim.Deck

	TipRack20   *sim.Labware
	TipRacks300 []*sim.Labware
	Reservoir   *sim.Labware // 12-well reagent reservoir, slot 5
	Plate       *sim.Labware // working plate, slot 2
	TCPlate     *sim.Labware // PCR plate on the thermocycler, slot 7
	MagPlate    *sim.Labware // capture plate on the magnetic module, slot 1

	P20    *sim.Pipette
	P300   *sim.Pipette
	Cycler *sim.Thermocycler
	Magnet *sim.MagDeck

	// Reservoir reagents
	Water      *sim.Well
	Competitor *sim.Well // milk powder
	Beads      *sim.Well
	Ethanol    *sim.Well
	Waste      *sim.Well

	// Working plate banks
	MasterMix []*sim.Well // biased A/T/C/G master mixes, column 1 rows A-D
	Manganese *sim.Well   // E1
	Library   *sim.Well   // naive aptamer library, H1
	Pools     []*sim.Well // post-PCR pooling wells, column 2 rows A-F
	Archives  []*sim.Well // selected-round archive wells, column 3 rows A-F
}

const reservoirFillUL = 15000

// NewLayout builds the assay deck with its starting volumes: a full
// reagent reservoir (waste empty), 360 µL in each master-mix well, the
// manganese well, and the library well.
func NewLayout() (*Layout, error) {
	lay := &Layout{Deck: sim.NewDeck()}

	var err error
	if lay.TipRack20, err = lay.Deck.Load("opentrons_96_tiprack_20ul", 3, "tip rack 20 µL"); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	for _, slot := range []int{4, 6, 9} {
		rack, err := lay.Deck.Load("opentrons_96_tiprack_300ul", slot, "tip rack 300 µL")
		if err != nil {
			return nil, fmt.Errorf("deck layout: %w", err)
		}
		lay.TipRacks300 = append(lay.TipRacks300, rack)
	}
	if lay.Reservoir, err = lay.Deck.Load("nest_12_reservoir_15ml", 5, "reagent reservoir"); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	if lay.Plate, err = lay.Deck.Load("corning_96_wellplate_360ul_flat", 2, "working plate"); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	if lay.TCPlate, err = lay.Deck.LoadOnModule("4ti0960rig_96_wellplate_200ul", 7, "PCR plate", "thermocycler"); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	if lay.MagPlate, err = lay.Deck.LoadOnModule("4ti0960rig_96_wellplate_200ul", 1, "capture plate", "magnetic module"); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	lay.Cycler = sim.NewThermocycler(lay.TCPlate)
	lay.Magnet = sim.NewMagDeck(lay.MagPlate)

	// The bench setup loads three 300 µL racks but binds only the
	// slot-9 rack to the p300; the others are spares swapped in by hand.
	if lay.P20, err = sim.NewPipette("p20_single_gen2", "right", lay.TipRack20); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	if lay.P300, err = sim.NewPipette("p300_single_gen2", "left", lay.TipRacks300[2]); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}

	if err := lay.placeReagents(); err != nil {
		return nil, fmt.Errorf("deck layout: %w", err)
	}
	return lay, nil
}

func (lay *Layout) placeReagents() error {
	lay.Reservoir.FillAll(reservoirFillUL)
	reagents := []struct {
		well  string
		label string
		dst   **sim.Well
	}{
		{"A1", "water", &lay.Water},
		{"A2", "milk powder", &lay.Competitor},
		{"A3", "magnetic beads", &lay.Beads},
		{"A4", "ethanol", &lay.Ethanol},
		{"A12", "waste", &lay.Waste},
	}
	for _, r := range reagents {
		w, err := lay.Reservoir.Well(r.well)
		if err != nil {
			return err
		}
		w.Reagent = r.label
		*r.dst = w
	}
	lay.Waste.VolumeUL = 0

	for i, label := range []string{"master mix A", "master mix T", "master mix C", "master mix G"} {
		w := lay.Plate.WellAt(i, 1)
		w.Reagent = label
		w.VolumeUL = 360
		lay.MasterMix = append(lay.MasterMix, w)
	}
	lay.Manganese = lay.Plate.WellAt(4, 1)
	lay.Manganese.Reagent = "manganese"
	lay.Manganese.VolumeUL = 360
	lay.Library = lay.Plate.WellAt(7, 1)
	lay.Library.Reagent = "aptamer library"
	lay.Library.VolumeUL = 360

	for row := 0; row < lay.Plate.Rows; row++ {
		lay.Pools = append(lay.Pools, lay.Plate.WellAt(row, 2))
		lay.Archives = append(lay.Archives, lay.Plate.WellAt(row, 3))
	}
	return nil
}

// seedWell returns the well a PCR run draws its template from: the
// naive library for run one, then the archive of the round before.
// The bench protocol archives run N's output one row below where run
// N+1 reads, so consecutive runs surface an empty-seed warning.
func (lay *Layout) seedWell(run int) *sim.Well {
	if run == 1 {
		return lay.Library
	}
	return lay.Archives[run-2]
}
