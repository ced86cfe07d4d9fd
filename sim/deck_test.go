package sim

import (
	"errors"
	"testing"
)

func TestDeck_Load_OccupiedSlot_Errors(t *testing.T) {
	// GIVEN a deck with labware in slot 5
	d := NewDeck()
	if _, err := d.Load("nest_12_reservoir_15ml", 5, "reagent reservoir"); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// WHEN a second item is loaded into the same slot
	_, err := d.Load("corning_96_wellplate_360ul_flat", 5, "working plate")

	// THEN the load fails with ErrSlotOccupied
	if !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("expected ErrSlotOccupied, got %v", err)
	}
}

func TestDeck_Load_SlotOutOfRange_Errors(t *testing.T) {
	d := NewDeck()
	if _, err := d.Load("nest_12_reservoir_15ml", 13, "reagent reservoir"); err == nil {
		t.Error("expected error for slot 13")
	}
	if _, err := d.Load("nest_12_reservoir_15ml", 0, "reagent reservoir"); err == nil {
		t.Error("expected error for slot 0")
	}
}

func TestDeck_LoadOnModule_PlaceNamesModule(t *testing.T) {
	// GIVEN a plate loaded on the thermocycler in slot 7
	d := NewDeck()
	lw, err := d.LoadOnModule("4ti0960rig_96_wellplate_200ul", 7, "PCR plate", "thermocycler")
	if err != nil {
		t.Fatalf("load on module: %v", err)
	}

	// THEN its display place names the module
	want := "PCR plate (thermocycler, slot 7)"
	if got := lw.Place(); got != want {
		t.Errorf("Place: got %q, want %q", got, want)
	}
}

func TestDeck_Labware_OrderedBySlot(t *testing.T) {
	// GIVEN labware loaded out of slot order
	d := NewDeck()
	for _, slot := range []int{9, 2, 5} {
		if _, err := d.Load("corning_96_wellplate_360ul_flat", slot, "plate"); err != nil {
			t.Fatalf("load slot %d: %v", slot, err)
		}
	}

	// WHEN the loaded labware is listed
	all := d.Labware()

	// THEN it comes back in slot order
	if len(all) != 3 {
		t.Fatalf("labware count: got %d, want 3", len(all))
	}
	if all[0].Slot != 2 || all[1].Slot != 5 || all[2].Slot != 9 {
		t.Errorf("slot order: got %d, %d, %d; want 2, 5, 9", all[0].Slot, all[1].Slot, all[2].Slot)
	}
}
