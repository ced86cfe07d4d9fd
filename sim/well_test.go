package sim

import "testing"

func TestWell_Aspirate_Sufficient_TakesAll(t *testing.T) {
	// GIVEN a well holding 100 µL
	w := &Well{Name: "A1", CapacityUL: 360, VolumeUL: 100}

	// WHEN 40 µL is aspirated
	taken, shortfall := w.Aspirate(40)

	// THEN the full volume is taken with no shortfall
	if taken != 40 {
		t.Errorf("taken: got %v, want 40", taken)
	}
	if shortfall != 0 {
		t.Errorf("shortfall: got %v, want 0", shortfall)
	}
	if w.VolumeUL != 60 {
		t.Errorf("remaining volume: got %v, want 60", w.VolumeUL)
	}
}

func TestWell_Aspirate_Insufficient_ClampsAtEmpty(t *testing.T) {
	// GIVEN a well holding 160 µL
	w := &Well{Name: "A2", CapacityUL: 360, VolumeUL: 160}

	// WHEN 240 µL is aspirated
	taken, shortfall := w.Aspirate(240)

	// THEN only the available volume is taken and the well is empty, not negative
	if taken != 160 {
		t.Errorf("taken: got %v, want 160", taken)
	}
	if shortfall != 80 {
		t.Errorf("shortfall: got %v, want 80", shortfall)
	}
	if w.VolumeUL != 0 {
		t.Errorf("remaining volume: got %v, want 0", w.VolumeUL)
	}
}

func TestWell_Dispense_WithinCapacity_AddsAll(t *testing.T) {
	// GIVEN an empty 200 µL well
	w := &Well{Name: "A1", CapacityUL: 200}

	// WHEN 140 µL is dispensed
	added, overflow := w.Dispense(140)

	// THEN the full volume is accepted
	if added != 140 {
		t.Errorf("added: got %v, want 140", added)
	}
	if overflow != 0 {
		t.Errorf("overflow: got %v, want 0", overflow)
	}
	if w.VolumeUL != 140 {
		t.Errorf("volume: got %v, want 140", w.VolumeUL)
	}
}

func TestWell_Dispense_OverCapacity_ClampsAtCapacity(t *testing.T) {
	// GIVEN a 200 µL well holding 180 µL
	w := &Well{Name: "B1", CapacityUL: 200, VolumeUL: 180}

	// WHEN 50 µL is dispensed
	added, overflow := w.Dispense(50)

	// THEN the well clamps at capacity and reports the overflow
	if added != 20 {
		t.Errorf("added: got %v, want 20", added)
	}
	if overflow != 30 {
		t.Errorf("overflow: got %v, want 30", overflow)
	}
	if w.VolumeUL != 200 {
		t.Errorf("volume: got %v, want 200", w.VolumeUL)
	}
}

func TestWell_Path_IncludesReagentAndPlace(t *testing.T) {
	// GIVEN a reagent well on labware in slot 5
	d := NewDeck()
	lw, err := d.Load("nest_12_reservoir_15ml", 5, "reagent reservoir")
	if err != nil {
		t.Fatalf("load labware: %v", err)
	}
	w, err := lw.Well("A4")
	if err != nil {
		t.Fatalf("lookup well: %v", err)
	}
	w.Reagent = "ethanol"

	// WHEN the display path is rendered
	got := w.Path()

	// THEN it names the well, reagent, labware, and slot
	want := "A4 (ethanol) of reagent reservoir (slot 5)"
	if got != want {
		t.Errorf("Path: got %q, want %q", got, want)
	}
}

func TestFormatUL_TrimsTrailingZeros(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{140, "140"},
		{2.5, "2.5"},
		{0, "0"},
		{47.25, "47.25"},
	}
	for _, c := range cases {
		if got := FormatUL(c.in); got != c.want {
			t.Errorf("FormatUL(%v): got %q, want %q", c.in, got, c.want)
		}
	}
}
