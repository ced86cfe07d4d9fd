package sim

import (
	"fmt"
	"sort"
)

// Deck maps OT-2 slot numbers to loaded labware. Slots are 1..12; the
// simulator does not model the physical footprint of modules beyond the
// slot they are addressed by.
type Deck struct {
	slots map[int]*Labware
}

// NewDeck returns an empty deck.
func NewDeck() *Deck {
	return &Deck{slots: make(map[int]*Labware)}
}

// Load places catalog labware into a slot.
func (d *Deck) Load(loadName string, slot int, label string) (*Labware, error) {
	return d.load(loadName, slot, label, "")
}

// LoadOnModule places catalog labware on a module occupying a slot. The
// module name appears in journal well paths ("thermocycler, slot 7").
func (d *Deck) LoadOnModule(loadName string, slot int, label, module string) (*Labware, error) {
	return d.load(loadName, slot, label, module)
}

func (d *Deck) load(loadName string, slot int, label, module string) (*Labware, error) {
	if slot < 1 || slot > 12 {
		return nil, fmt.Errorf("slot %d is outside the deck (1..12)", slot)
	}
	if prev, ok := d.slots[slot]; ok {
		return nil, fmt.Errorf("slot %d already holds %s: %w", slot, prev.Label, ErrSlotOccupied)
	}
	lw, err := newLabware(loadName, slot, label)
	if err != nil {
		return nil, err
	}
	lw.OnModule = module
	d.slots[slot] = lw
	return lw, nil
}

// Slot returns the labware in a slot, or nil when the slot is empty.
func (d *Deck) Slot(n int) *Labware {
	return d.slots[n]
}

// Labware returns all loaded labware ordered by slot number.
func (d *Deck) Labware() []*Labware {
	out := make([]*Labware, 0, len(d.slots))
	for _, lw := range d.slots {
		out = append(out, lw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
