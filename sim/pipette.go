package sim

import "fmt"

// FlowRates holds a pipette's base flow rates in µL/s. Commands scale
// these with a per-call multiplier, the same convention the robot uses.
type FlowRates struct {
	AspirateULs float64
	DispenseULs float64
	BlowOutULs  float64
}

// pipetteDef describes one supported instrument model.
type pipetteDef struct {
	name  string // short name used in journal lines and tip counters
	minUL float64
	maxUL float64
	flow  FlowRates
}

// pipetteModels covers the two single-channel GEN2 instruments the assay
// mounts. Base flow rates are the vendor defaults for these models.
var pipetteModels = map[string]pipetteDef{
	"p20_single_gen2": {
		name:  "p20",
		minUL: 1,
		maxUL: 20,
		flow:  FlowRates{AspirateULs: 3.78, DispenseULs: 3.78, BlowOutULs: 3.78},
	},
	"p300_single_gen2": {
		name:  "p300",
		minUL: 20,
		maxUL: 300,
		flow:  FlowRates{AspirateULs: 92.86, DispenseULs: 92.86, BlowOutULs: 92.86},
	},
}

// Pipette is one mounted instrument. Tip state is tracked so the
// simulator can flag dispenses that exceed what the tip holds and
// aspirations that exceed the working volume.
type Pipette struct {
	Name     string // "p20", "p300"
	LoadName string // "p20_single_gen2"
	Mount    string // "left" or "right"
	MinUL    float64
	MaxUL    float64

	// FlowRate holds the mutable base rates; protocols may retune them.
	FlowRate FlowRates

	TipRacks []*Labware

	TipAttached   bool
	TipContentsUL float64 // liquid drawn into the current tip
	TipAirGapUL   float64 // air drawn above the liquid
	TipsUsed      int
}

// NewPipette mounts an instrument and binds its tip racks.
func NewPipette(loadName, mount string, racks ...*Labware) (*Pipette, error) {
	def, ok := pipetteModels[loadName]
	if !ok {
		return nil, fmt.Errorf("instrument %q is not a supported model", loadName)
	}
	for _, r := range racks {
		if !r.IsTipRack {
			return nil, fmt.Errorf("%s is not a tip rack", r.Place())
		}
	}
	return &Pipette{
		Name:     def.name,
		LoadName: loadName,
		Mount:    mount,
		MinUL:    def.minUL,
		MaxUL:    def.maxUL,
		FlowRate: def.flow,
		TipRacks: racks,
	}, nil
}

// EffectiveAspirateULs returns the aspirate rate scaled by a multiplier.
// A zero or negative multiplier means the base rate.
func (p *Pipette) EffectiveAspirateULs(mult float64) float64 {
	if mult <= 0 {
		mult = 1
	}
	return p.FlowRate.AspirateULs * mult
}

// EffectiveDispenseULs returns the dispense rate scaled by a multiplier.
func (p *Pipette) EffectiveDispenseULs(mult float64) float64 {
	if mult <= 0 {
		mult = 1
	}
	return p.FlowRate.DispenseULs * mult
}

// takeTip attaches a fresh tip from the first bound rack with inventory.
// When every rack is empty it still attaches (the dry run keeps
// counting) and reports ok=false so the caller can warn.
func (p *Pipette) takeTip() (rack *Labware, ok bool) {
	p.TipAttached = true
	p.TipContentsUL = 0
	p.TipAirGapUL = 0
	p.TipsUsed++
	for _, r := range p.TipRacks {
		if r.TipsLeft > 0 {
			r.TipsLeft--
			return r, true
		}
	}
	return nil, false
}

// releaseTip detaches the current tip and returns the liquid volume it
// still held.
func (p *Pipette) releaseTip() (residualUL float64) {
	residualUL = p.TipContentsUL
	p.TipAttached = false
	p.TipContentsUL = 0
	p.TipAirGapUL = 0
	return residualUL
}
