package sim

import (
	"fmt"
	"time"

	"github.com/selex-sim/selex-sim/sim/journal"
)

// Command is one protocol action. Execute applies it to the simulator
// state, advancing the virtual clock and appending journal records.
// Errors mean the command sequence itself is broken (no tip attached,
// unknown instrument); volume violations are journaled warnings instead.
type Command interface {
	fmt.Stringer
	Execute(s *Simulator) error
}

// Comment annotates the journal without touching state or the clock.
type Comment struct {
	Text string
}

func (c *Comment) String() string { return fmt.Sprintf("comment: %s", c.Text) }

func (c *Comment) Execute(s *Simulator) error {
	s.info(journal.KindComment, "%s", c.Text)
	return nil
}

// Delay advances the clock by a commanded wait.
type Delay struct {
	D   time.Duration
	Msg string
}

func (c *Delay) String() string { return fmt.Sprintf("delay %s", c.D) }

func (c *Delay) Execute(s *Simulator) error {
	s.advance(c.D)
	if c.Msg != "" {
		s.info(journal.KindDelay, "waiting %s: %s", c.D, c.Msg)
	} else {
		s.info(journal.KindDelay, "waiting %s", c.D)
	}
	return nil
}

// PickUpTip attaches a fresh tip from the pipette's bound racks.
// Picking up while a tip is attached is a programming error; running
// the racks dry is a warning (the dry run keeps counting).
type PickUpTip struct {
	Pipette string
}

func (c *PickUpTip) String() string { return fmt.Sprintf("pick up tip (%s)", c.Pipette) }

func (c *PickUpTip) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if p.TipAttached {
		return fmt.Errorf("%s pick up tip: %w", p.Name, ErrTipAttached)
	}
	rack, ok := p.takeTip()
	s.advance(seconds(gantryMoveSec + tipPickupSec))
	s.Metrics.TipsUsed[p.Name]++
	if ok {
		s.action(journal.Record{
			Kind: journal.KindPickUpTip, Pipette: p.Name, Well: rack.Place(),
		}, "picked up a %s tip from %s (%d %s tips used)", p.Name, rack.Place(), p.TipsUsed, p.Name)
	} else {
		s.action(journal.Record{
			Kind: journal.KindPickUpTip, Pipette: p.Name,
		}, "picked up a %s tip (%d %s tips used)", p.Name, p.TipsUsed, p.Name)
		s.warn(journal.Record{
			Kind: journal.KindTipInventory, Pipette: p.Name,
		}, "no %s tips left in any bound rack", p.Name)
	}
	return nil
}

// DropTip ejects the current tip into the fixed trash.
type DropTip struct {
	Pipette string
}

func (c *DropTip) String() string { return fmt.Sprintf("drop tip (%s)", c.Pipette) }

func (c *DropTip) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if !p.TipAttached {
		return fmt.Errorf("%s drop tip: %w", p.Name, ErrNoTip)
	}
	residual := p.releaseTip()
	s.advance(seconds(gantryMoveSec + tipDropSec))
	if residual > 0 {
		s.action(journal.Record{
			Kind: journal.KindDropTip, Pipette: p.Name, VolumeUL: residual,
		}, "dropped a %s tip, %s µL still aboard", p.Name, FormatUL(residual))
	} else {
		s.action(journal.Record{
			Kind: journal.KindDropTip, Pipette: p.Name,
		}, "dropped a %s tip", p.Name)
	}
	return nil
}

// Aspirate draws liquid from a well into the attached tip. The well is
// clamped at empty; the tip gains the commanded volume regardless, the
// way the robot's plunger would move.
type Aspirate struct {
	Pipette  string
	Well     *Well
	VolumeUL float64
	Rate     float64 // multiplier over the pipette base rate; 0 = base
	BottomMM float64 // approach offset above the well bottom (journal texture only)
}

func (c *Aspirate) String() string {
	return fmt.Sprintf("aspirate %s µL from %s with %s", FormatUL(c.VolumeUL), c.Well.Path(), c.Pipette)
}

func (c *Aspirate) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if !p.TipAttached {
		return fmt.Errorf("aspirate from %s: %w", c.Well.Path(), ErrNoTip)
	}
	rate := p.EffectiveAspirateULs(c.Rate)
	s.advance(seconds(gantryMoveSec) + volumeDuration(c.VolumeUL, rate))
	if c.VolumeUL == 0 {
		s.action(journal.Record{
			Kind: journal.KindAspirate, Pipette: p.Name, Well: c.Well.Path(), RateULs: rate,
		}, "%s aspirated 0 µL from %s", p.Name, c.Well.Path())
		return nil
	}
	taken, shortfall := c.Well.Aspirate(c.VolumeUL)
	p.TipContentsUL += c.VolumeUL
	s.Metrics.Aspirates++
	s.Metrics.TotalAspiratedUL += taken
	s.action(journal.Record{
		Kind: journal.KindAspirate, Pipette: p.Name, Well: c.Well.Path(),
		VolumeUL: c.VolumeUL, RateULs: rate,
	}, "%s aspirated %s µL from %s at %.2f µL/s, %s µL left",
		p.Name, FormatUL(taken), c.Well.Path(), rate, FormatUL(c.Well.VolumeUL))
	if shortfall > 0 {
		s.warn(journal.Record{
			Kind: journal.KindAspirate, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: c.VolumeUL,
		}, "tried to aspirate %s µL from %s, but only %s µL was available; took what was left",
			FormatUL(c.VolumeUL), c.Well.Path(), FormatUL(taken))
	}
	if held := p.TipContentsUL + p.TipAirGapUL; held > p.MaxUL {
		s.warn(journal.Record{
			Kind: journal.KindAspirate, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: held,
		}, "%s tip holds %s µL, above its %s µL working maximum",
			p.Name, FormatUL(held), FormatUL(p.MaxUL))
	}
	return nil
}

// Dispense pushes liquid from the attached tip into a well. The well is
// clamped at capacity but gains the commanded volume up to that clamp;
// the tip expels its air gap first, then liquid.
type Dispense struct {
	Pipette  string
	Well     *Well
	VolumeUL float64
	Rate     float64 // multiplier over the pipette base rate; 0 = base
	BottomMM float64 // approach offset above the well bottom (journal texture only)
}

func (c *Dispense) String() string {
	return fmt.Sprintf("dispense %s µL into %s with %s", FormatUL(c.VolumeUL), c.Well.Path(), c.Pipette)
}

func (c *Dispense) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if !p.TipAttached {
		return fmt.Errorf("dispense into %s: %w", c.Well.Path(), ErrNoTip)
	}
	rate := p.EffectiveDispenseULs(c.Rate)
	s.advance(seconds(gantryMoveSec) + volumeDuration(c.VolumeUL, rate))
	if c.VolumeUL == 0 {
		s.action(journal.Record{
			Kind: journal.KindDispense, Pipette: p.Name, Well: c.Well.Path(), RateULs: rate,
		}, "%s dispensed 0 µL into %s", p.Name, c.Well.Path())
		return nil
	}
	// The air gap sits above the liquid, so the plunger expels it
	// first; only the liquid portion reaches the well.
	air := min(c.VolumeUL, p.TipAirGapUL)
	p.TipAirGapUL -= air
	liquid := min(c.VolumeUL-air, p.TipContentsUL)
	p.TipContentsUL -= liquid
	added, overflow := c.Well.Dispense(liquid)
	s.Metrics.Dispenses++
	s.Metrics.TotalDispensedUL += added
	if c.Well.Reagent == "waste" {
		s.Metrics.WasteUL += added
	}
	s.action(journal.Record{
		Kind: journal.KindDispense, Pipette: p.Name, Well: c.Well.Path(),
		VolumeUL: c.VolumeUL, RateULs: rate,
	}, "%s dispensed %s µL into %s at %.2f µL/s, %s µL held",
		p.Name, FormatUL(added), c.Well.Path(), rate, FormatUL(c.Well.VolumeUL))
	if overflow > 0 {
		s.warn(journal.Record{
			Kind: journal.KindDispense, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: c.VolumeUL,
		}, "tried to dispense %s µL into %s, but it exceeds capacity; clamped at %s µL",
			FormatUL(c.VolumeUL), c.Well.Path(), FormatUL(c.Well.CapacityUL))
	}
	if expelled := air + liquid; expelled < c.VolumeUL {
		s.warn(journal.Record{
			Kind: journal.KindDispense, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: c.VolumeUL,
		}, "%s dispensed %s µL but the tip held only %s µL",
			p.Name, FormatUL(c.VolumeUL), FormatUL(expelled))
	}
	return nil
}

// Mix aspirates and dispenses in place; the well's net volume is
// unchanged. Mixing more than the well holds warns.
type Mix struct {
	Pipette     string
	Well        *Well
	Repetitions int
	VolumeUL    float64
	Rate        float64 // multiplier over the pipette base rates; 0 = base
	BottomMM    float64
}

func (c *Mix) String() string {
	return fmt.Sprintf("mix %d×%s µL in %s with %s", c.Repetitions, FormatUL(c.VolumeUL), c.Well.Path(), c.Pipette)
}

func (c *Mix) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if !p.TipAttached {
		return fmt.Errorf("mix in %s: %w", c.Well.Path(), ErrNoTip)
	}
	perCycle := volumeDuration(c.VolumeUL, p.EffectiveAspirateULs(c.Rate)) +
		volumeDuration(c.VolumeUL, p.EffectiveDispenseULs(c.Rate))
	s.advance(seconds(gantryMoveSec) + time.Duration(c.Repetitions)*perCycle)
	s.Metrics.Mixes++
	mult := c.Rate
	if mult <= 0 {
		mult = 1
	}
	s.action(journal.Record{
		Kind: journal.KindMix, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: c.VolumeUL,
	}, "%s mixed %d times with %s µL in %s at %.2fx speed",
		p.Name, c.Repetitions, FormatUL(c.VolumeUL), c.Well.Path(), mult)
	if c.VolumeUL > c.Well.VolumeUL {
		s.warn(journal.Record{
			Kind: journal.KindMix, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: c.VolumeUL,
		}, "mixed %s µL in %s holding only %s µL",
			FormatUL(c.VolumeUL), c.Well.Path(), FormatUL(c.Well.VolumeUL))
	}
	return nil
}

// AirGap draws air into the tip above the liquid. No well is touched.
type AirGap struct {
	Pipette  string
	VolumeUL float64
}

func (c *AirGap) String() string {
	return fmt.Sprintf("air gap %s µL (%s)", FormatUL(c.VolumeUL), c.Pipette)
}

func (c *AirGap) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if !p.TipAttached {
		return fmt.Errorf("air gap: %w", ErrNoTip)
	}
	s.advance(volumeDuration(c.VolumeUL, p.FlowRate.AspirateULs))
	p.TipAirGapUL += c.VolumeUL
	s.Metrics.AirGaps++
	s.action(journal.Record{
		Kind: journal.KindAirGap, Pipette: p.Name, VolumeUL: c.VolumeUL,
	}, "%s drew a %s µL air gap", p.Name, FormatUL(c.VolumeUL))
	if held := p.TipContentsUL + p.TipAirGapUL; held > p.MaxUL {
		s.warn(journal.Record{
			Kind: journal.KindAirGap, Pipette: p.Name, VolumeUL: held,
		}, "%s tip holds %s µL, above its %s µL working maximum",
			p.Name, FormatUL(held), FormatUL(p.MaxUL))
	}
	return nil
}

// BlowOut empties the tip completely into a well, liquid and air gap both.
type BlowOut struct {
	Pipette string
	Well    *Well
}

func (c *BlowOut) String() string {
	return fmt.Sprintf("blow out into %s (%s)", c.Well.Path(), c.Pipette)
}

func (c *BlowOut) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if !p.TipAttached {
		return fmt.Errorf("blow out into %s: %w", c.Well.Path(), ErrNoTip)
	}
	liquid := p.TipContentsUL
	p.TipContentsUL = 0
	p.TipAirGapUL = 0
	s.advance(seconds(gantryMoveSec + blowOutSec))
	added, overflow := c.Well.Dispense(liquid)
	s.Metrics.BlowOuts++
	s.Metrics.TotalDispensedUL += added
	if c.Well.Reagent == "waste" {
		s.Metrics.WasteUL += added
	}
	s.action(journal.Record{
		Kind: journal.KindBlowOut, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: liquid,
	}, "%s blew out %s µL into %s", p.Name, FormatUL(liquid), c.Well.Path())
	if overflow > 0 {
		s.warn(journal.Record{
			Kind: journal.KindBlowOut, Pipette: p.Name, Well: c.Well.Path(), VolumeUL: liquid,
		}, "blow out of %s µL into %s exceeds capacity; clamped at %s µL",
			FormatUL(liquid), c.Well.Path(), FormatUL(c.Well.CapacityUL))
	}
	return nil
}

// SetFlowRate retunes a pipette's base flow rates. Zero fields are left
// unchanged. Changes are journaled at info severity, matching the
// notice the bench log prints when a protocol retunes an instrument.
type SetFlowRate struct {
	Pipette     string
	AspirateULs float64
	DispenseULs float64
	BlowOutULs  float64
}

func (c *SetFlowRate) String() string { return fmt.Sprintf("set %s flow rates", c.Pipette) }

func (c *SetFlowRate) Execute(s *Simulator) error {
	p, err := s.pipette(c.Pipette)
	if err != nil {
		return err
	}
	if c.AspirateULs > 0 {
		p.FlowRate.AspirateULs = c.AspirateULs
		s.info(journal.KindFlowRate, "%s aspirate flow rate set to %s µL/s", p.Name, FormatUL(c.AspirateULs))
	}
	if c.DispenseULs > 0 {
		p.FlowRate.DispenseULs = c.DispenseULs
		s.info(journal.KindFlowRate, "%s dispense flow rate set to %s µL/s", p.Name, FormatUL(c.DispenseULs))
	}
	if c.BlowOutULs > 0 {
		p.FlowRate.BlowOutULs = c.BlowOutULs
		s.info(journal.KindFlowRate, "%s blow_out flow rate set to %s µL/s", p.Name, FormatUL(c.BlowOutULs))
	}
	return nil
}

// OpenLid opens the thermocycler lid.
type OpenLid struct{}

func (c *OpenLid) String() string { return "open thermocycler lid" }

func (c *OpenLid) Execute(s *Simulator) error {
	tc, err := s.cycler()
	if err != nil {
		return err
	}
	tc.LidOpen = true
	s.advance(seconds(lidMotionSec))
	s.action(journal.Record{Kind: journal.KindLid}, "opened thermocycler lid")
	return nil
}

// CloseLid closes the thermocycler lid.
type CloseLid struct{}

func (c *CloseLid) String() string { return "close thermocycler lid" }

func (c *CloseLid) Execute(s *Simulator) error {
	tc, err := s.cycler()
	if err != nil {
		return err
	}
	tc.LidOpen = false
	s.advance(seconds(lidMotionSec))
	s.action(journal.Record{Kind: journal.KindLid}, "closed thermocycler lid")
	return nil
}

// SetLidTemp turns the lid heater on at a target temperature.
type SetLidTemp struct {
	TempC float64
}

func (c *SetLidTemp) String() string { return fmt.Sprintf("set lid temperature to %g °C", c.TempC) }

func (c *SetLidTemp) Execute(s *Simulator) error {
	tc, err := s.cycler()
	if err != nil {
		return err
	}
	tc.LidHeating = true
	tc.LidTempC = c.TempC
	s.action(journal.Record{Kind: journal.KindLidTemp}, "set thermocycler lid temperature to %g °C", c.TempC)
	return nil
}

// DeactivateLid turns the lid heater off.
type DeactivateLid struct{}

func (c *DeactivateLid) String() string { return "deactivate lid heater" }

func (c *DeactivateLid) Execute(s *Simulator) error {
	tc, err := s.cycler()
	if err != nil {
		return err
	}
	tc.LidHeating = false
	s.action(journal.Record{Kind: journal.KindLidTemp}, "deactivated thermocycler lid heater")
	return nil
}

// SetBlockTemp sets the block temperature, optionally holding it for a
// commanded time. A positive BlockMaxUL validates the loaded plate
// against the commanded per-well maximum (a volume check, not physics).
type SetBlockTemp struct {
	TempC      float64
	Hold       time.Duration
	BlockMaxUL float64
}

func (c *SetBlockTemp) String() string {
	if c.Hold > 0 {
		return fmt.Sprintf("hold block at %g °C for %s", c.TempC, c.Hold)
	}
	return fmt.Sprintf("set block temperature to %g °C", c.TempC)
}

func (c *SetBlockTemp) Execute(s *Simulator) error {
	tc, err := s.cycler()
	if err != nil {
		return err
	}
	tc.BlockTempC = c.TempC
	s.advance(c.Hold)
	if c.Hold > 0 {
		s.action(journal.Record{Kind: journal.KindBlockTemp}, "held thermocycler block at %g °C for %s", c.TempC, c.Hold)
	} else {
		s.action(journal.Record{Kind: journal.KindBlockTemp}, "set thermocycler block temperature to %g °C", c.TempC)
	}
	s.checkBlockMax(tc, journal.KindBlockTemp, c.BlockMaxUL)
	return nil
}

// RunProfile cycles the block through a temperature profile. The clock
// advances by the commanded hold times only; ramps are not modeled.
type RunProfile struct {
	Steps       []ProfileStep
	Repetitions int
	BlockMaxUL  float64
}

func (c *RunProfile) String() string {
	return fmt.Sprintf("run %d-step profile ×%d", len(c.Steps), c.Repetitions)
}

func (c *RunProfile) Execute(s *Simulator) error {
	tc, err := s.cycler()
	if err != nil {
		return err
	}
	var cycle time.Duration
	for _, step := range c.Steps {
		cycle += step.Hold
	}
	total := time.Duration(c.Repetitions) * cycle
	s.advance(total)
	if n := len(c.Steps); n > 0 {
		tc.BlockTempC = c.Steps[n-1].TempC
	}
	s.action(journal.Record{Kind: journal.KindProfile},
		"ran %d-step profile ×%d (%s)", len(c.Steps), c.Repetitions, total)
	s.checkBlockMax(tc, journal.KindProfile, c.BlockMaxUL)
	return nil
}

// Engage raises the magnet under the magnetic module's plate.
type Engage struct {
	HeightMM float64
}

func (c *Engage) String() string { return fmt.Sprintf("engage magnet at %g mm", c.HeightMM) }

func (c *Engage) Execute(s *Simulator) error {
	mag, err := s.magnet()
	if err != nil {
		return err
	}
	mag.Engaged = true
	mag.HeightMM = c.HeightMM
	s.advance(seconds(magnetMoveSec))
	s.action(journal.Record{Kind: journal.KindMagnet}, "engaged magnetic module at %g mm from base", c.HeightMM)
	return nil
}

// Disengage lowers the magnet.
type Disengage struct{}

func (c *Disengage) String() string { return "disengage magnet" }

func (c *Disengage) Execute(s *Simulator) error {
	mag, err := s.magnet()
	if err != nil {
		return err
	}
	mag.Engaged = false
	s.advance(seconds(magnetMoveSec))
	s.action(journal.Record{Kind: journal.KindMagnet}, "disengaged magnetic module")
	return nil
}
