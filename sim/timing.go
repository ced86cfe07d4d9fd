package sim

import "time"

// Fixed handling costs, in seconds. Liquid transfer time itself is
// volume / effective flow rate; these constants cover the motions around
// it. They are deliberately coarse: the estimate exists so a reviewer can
// see whether a protocol edit added minutes or hours, not to schedule
// bench time to the second.
const (
	gantryMoveSec = 2.0  // travel between two deck positions
	tipPickupSec  = 4.0  // press onto a new tip
	tipDropSec    = 3.0  // eject into the fixed trash
	blowOutSec    = 0.5  // plunger push past the stop
	lidMotionSec  = 24.0 // thermocycler lid open or close
	magnetMoveSec = 2.0  // magnet engage or disengage travel
)

// seconds converts a float second count to a time.Duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// volumeDuration returns the plunger time for moving volUL microliters
// at rateULs microliters per second. Zero or negative rates cost nothing
// (they cannot occur for a validated program).
func volumeDuration(volUL, rateULs float64) time.Duration {
	if rateULs <= 0 {
		return 0
	}
	return seconds(volUL / rateULs)
}
