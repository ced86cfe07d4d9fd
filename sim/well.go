package sim

import (
	"fmt"
	"strconv"
)

// Well is a single liquid position on a piece of labware. VolumeUL is
// the running bookkeeping volume; it is never driven below zero by an
// aspiration and never above CapacityUL by a dispense. Violations are
// reported to the caller as the clamped amount so the simulator can
// surface them as warnings.
type Well struct {
	Name       string  // grid name, e.g. "A1"
	Reagent    string  // reagent label ("water", "ethanol"); empty for working wells
	CapacityUL float64 // labware-defined maximum volume
	VolumeUL   float64 // current bookkeeping volume
	Parent     *Labware
}

// Aspirate removes up to volUL from the well. It returns the volume
// actually taken and the shortfall (commanded minus available, 0 when
// the well held enough). The well is clamped at empty.
func (w *Well) Aspirate(volUL float64) (taken, shortfall float64) {
	taken = min(volUL, w.VolumeUL)
	shortfall = volUL - taken
	w.VolumeUL -= taken
	return taken, shortfall
}

// Dispense adds up to volUL to the well. It returns the volume actually
// added and the overflow (commanded minus accepted, 0 when the well had
// room). The well is clamped at capacity.
func (w *Well) Dispense(volUL float64) (added, overflow float64) {
	room := w.CapacityUL - w.VolumeUL
	added = min(volUL, room)
	overflow = volUL - added
	w.VolumeUL += added
	return added, overflow
}

// Path returns the display position of the well, including its reagent
// label when one is assigned: "A4 (ethanol) of reagent reservoir (slot 5)".
func (w *Well) Path() string {
	if w.Parent == nil {
		return w.Name
	}
	name := w.Name
	if w.Reagent != "" {
		name = fmt.Sprintf("%s (%s)", w.Name, w.Reagent)
	}
	return fmt.Sprintf("%s of %s", name, w.Parent.Place())
}

// FormatUL renders a microliter volume without trailing zeros: 140, 2.5.
func FormatUL(volUL float64) string {
	return strconv.FormatFloat(volUL, 'f', -1, 64)
}
