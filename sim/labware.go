package sim

import (
	"fmt"
)

// labwareDef describes one catalog entry: the well grid and per-well
// capacity for a load name. Tip racks carry tip inventory instead of
// liquid wells.
type labwareDef struct {
	rows          int
	cols          int
	wellCapacity  float64 // µL per well (liquid labware)
	tipRack       bool
	tipCapacityUL float64 // µL per tip (tip racks)
}

// catalog covers exactly the load names the assay deck uses.
var catalog = map[string]labwareDef{
	"opentrons_96_tiprack_20ul":       {rows: 8, cols: 12, tipRack: true, tipCapacityUL: 20},
	"opentrons_96_tiprack_300ul":      {rows: 8, cols: 12, tipRack: true, tipCapacityUL: 300},
	"nest_12_reservoir_15ml":          {rows: 1, cols: 12, wellCapacity: 15000},
	"corning_96_wellplate_360ul_flat": {rows: 8, cols: 12, wellCapacity: 360},
	"4ti0960rig_96_wellplate_200ul":   {rows: 8, cols: 12, wellCapacity: 200},
}

const rowLetters = "ABCDEFGH"

// Labware is one catalog-defined item placed on the deck: a well grid
// with per-well capacity, or a tip rack with an inventory count.
type Labware struct {
	LoadName string
	Label    string // display name used in journal lines ("reagent reservoir")
	Slot     int
	OnModule string // "thermocycler" or "magnetic module" when module-mounted, else ""

	Rows, Cols     int
	WellCapacityUL float64

	IsTipRack     bool
	TipCapacityUL float64
	TipsLeft      int

	wells   map[string]*Well
	ordered []*Well // column-major: A1..H1, A2..H2, ...
}

// newLabware builds a Labware from its catalog definition. Liquid
// labware starts with every well empty; tip racks start full.
func newLabware(loadName string, slot int, label string) (*Labware, error) {
	def, ok := catalog[loadName]
	if !ok {
		return nil, fmt.Errorf("load name %q is not in the labware catalog", loadName)
	}
	lw := &Labware{
		LoadName:       loadName,
		Label:          label,
		Slot:           slot,
		Rows:           def.rows,
		Cols:           def.cols,
		WellCapacityUL: def.wellCapacity,
		IsTipRack:      def.tipRack,
		TipCapacityUL:  def.tipCapacityUL,
	}
	if def.tipRack {
		lw.TipsLeft = def.rows * def.cols
		return lw, nil
	}
	lw.wells = make(map[string]*Well, def.rows*def.cols)
	lw.ordered = make([]*Well, 0, def.rows*def.cols)
	for col := 1; col <= def.cols; col++ {
		for row := 0; row < def.rows; row++ {
			w := &Well{
				Name:       fmt.Sprintf("%c%d", rowLetters[row], col),
				CapacityUL: def.wellCapacity,
				Parent:     lw,
			}
			lw.wells[w.Name] = w
			lw.ordered = append(lw.ordered, w)
		}
	}
	return lw, nil
}

// Place returns the labware's display position: "reagent reservoir
// (slot 5)", or "PCR plate (thermocycler, slot 7)" when module-mounted.
func (l *Labware) Place() string {
	if l.OnModule != "" {
		return fmt.Sprintf("%s (%s, slot %d)", l.Label, l.OnModule, l.Slot)
	}
	return fmt.Sprintf("%s (slot %d)", l.Label, l.Slot)
}

// Well returns the named well, or an error wrapping ErrUnknownWell for
// names outside the grid. Tip racks have no liquid wells.
func (l *Labware) Well(name string) (*Well, error) {
	w, ok := l.wells[name]
	if !ok {
		return nil, fmt.Errorf("%s has no well %q: %w", l.Place(), name, ErrUnknownWell)
	}
	return w, nil
}

// WellAt returns the well at a 0-based row and 1-based column, or nil
// when the coordinates fall outside the grid.
func (l *Labware) WellAt(row, col int) *Well {
	if row < 0 || row >= l.Rows || col < 1 || col > l.Cols {
		return nil
	}
	return l.wells[fmt.Sprintf("%c%d", rowLetters[row], col)]
}

// Column returns the wells of a 1-based column, ordered top row first.
func (l *Labware) Column(col int) ([]*Well, error) {
	if col < 1 || col > l.Cols || l.IsTipRack {
		return nil, fmt.Errorf("%s has no column %d: %w", l.Place(), col, ErrUnknownWell)
	}
	out := make([]*Well, 0, l.Rows)
	for row := 0; row < l.Rows; row++ {
		out = append(out, l.WellAt(row, col))
	}
	return out, nil
}

// Wells returns all wells in column-major order (A1..H1, A2..).
func (l *Labware) Wells() []*Well {
	return l.ordered
}

// FillAll sets every well to the same starting volume and reports the
// labware for chaining during deck setup.
func (l *Labware) FillAll(volUL float64) *Labware {
	for _, w := range l.ordered {
		w.VolumeUL = volUL
	}
	return l
}
