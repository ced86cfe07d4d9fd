package sim

import "time"

// Thermocycler tracks lid and block state for the thermocycler module.
// Temperatures are bookkeeping values: holds advance the clock by the
// commanded time, never by modeled ramp physics.
type Thermocycler struct {
	LidOpen    bool
	LidHeating bool
	LidTempC   float64
	BlockTempC float64
	Plate      *Labware
}

// NewThermocycler returns a thermocycler with the lid closed and both
// heaters idle, holding the given plate.
func NewThermocycler(plate *Labware) *Thermocycler {
	return &Thermocycler{Plate: plate}
}

// ProfileStep is one temperature step of a cycling profile.
type ProfileStep struct {
	TempC float64
	Hold  time.Duration
}

// overfilledWells reports how many loaded wells exceed maxUL and the
// worst offender. A commanded block-max-volume above every well volume
// returns (0, nil).
func (t *Thermocycler) overfilledWells(maxUL float64) (count int, worst *Well) {
	if t.Plate == nil {
		return 0, nil
	}
	for _, w := range t.Plate.Wells() {
		if w.VolumeUL > maxUL {
			count++
			if worst == nil || w.VolumeUL > worst.VolumeUL {
				worst = w
			}
		}
	}
	return count, worst
}
