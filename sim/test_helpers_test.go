package sim

import "testing"

// testBench is a minimal deck for command tests: a reservoir, a PCR
// plate on the thermocycler, a capture plate on the magnetic module,
// one tip rack per pipette, and both instruments.
type testBench struct {
	sim      *Simulator
	deck     *Deck
	res      *Labware
	tcPlate  *Labware
	magPlate *Labware
	rack300  *Labware
	p20      *Pipette
	p300     *Pipette
}

func newTestBench(t *testing.T, cfg Config) *testBench {
	t.Helper()
	d := NewDeck()
	res, err := d.Load("nest_12_reservoir_15ml", 5, "reagent reservoir")
	if err != nil {
		t.Fatalf("load reservoir: %v", err)
	}
	tcPlate, err := d.LoadOnModule("4ti0960rig_96_wellplate_200ul", 7, "PCR plate", "thermocycler")
	if err != nil {
		t.Fatalf("load PCR plate: %v", err)
	}
	magPlate, err := d.LoadOnModule("4ti0960rig_96_wellplate_200ul", 1, "capture plate", "magnetic module")
	if err != nil {
		t.Fatalf("load capture plate: %v", err)
	}
	rack20, err := d.Load("opentrons_96_tiprack_20ul", 3, "tip rack 20 µL")
	if err != nil {
		t.Fatalf("load rack: %v", err)
	}
	rack300, err := d.Load("opentrons_96_tiprack_300ul", 9, "tip rack 300 µL")
	if err != nil {
		t.Fatalf("load rack: %v", err)
	}
	p20, err := NewPipette("p20_single_gen2", "right", rack20)
	if err != nil {
		t.Fatalf("mount p20: %v", err)
	}
	p300, err := NewPipette("p300_single_gen2", "left", rack300)
	if err != nil {
		t.Fatalf("mount p300: %v", err)
	}
	program := &Program{
		Name:     "test bench",
		Deck:     d,
		Pipettes: map[string]*Pipette{p20.Name: p20, p300.Name: p300},
		Cycler:   NewThermocycler(tcPlate),
		Magnet:   NewMagDeck(magPlate),
	}
	return &testBench{
		sim:      NewSimulator(program, cfg),
		deck:     d,
		res:      res,
		tcPlate:  tcPlate,
		magPlate: magPlate,
		rack300:  rack300,
		p20:      p20,
		p300:     p300,
	}
}

// well fetches a named well from labware, failing the test on a miss.
func (b *testBench) well(t *testing.T, lw *Labware, name string) *Well {
	t.Helper()
	w, err := lw.Well(name)
	if err != nil {
		t.Fatalf("well %s: %v", name, err)
	}
	return w
}

// mustExec executes a command and fails the test on error.
func (b *testBench) mustExec(t *testing.T, cmds ...Command) {
	t.Helper()
	for _, c := range cmds {
		if err := c.Execute(b.sim); err != nil {
			t.Fatalf("execute %s: %v", c, err)
		}
	}
}

// warnings returns the warning messages journaled so far.
func (b *testBench) warnings() []string {
	var out []string
	for _, r := range b.sim.Journal.Warnings() {
		out = append(out, r.Message)
	}
	return out
}
