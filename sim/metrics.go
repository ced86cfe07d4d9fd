// Tracks run-wide aggregates for final reporting.

package sim

import (
	"fmt"
	"sort"
	"time"
)

// Metrics aggregates statistics about one dry run for final reporting.
// Useful for spotting protocol edits that quietly add hours of bench
// time or burn through a tip rack.
type Metrics struct {
	CommandsExecuted int `json:"commands_executed"` // commands run to completion
	Aspirates        int `json:"aspirates"`
	Dispenses        int `json:"dispenses"`
	Mixes            int `json:"mixes"`
	AirGaps          int `json:"air_gaps"`
	BlowOuts         int `json:"blow_outs"`

	TotalAspiratedUL float64 `json:"total_aspirated_ul"` // liquid actually drawn from wells
	TotalDispensedUL float64 `json:"total_dispensed_ul"` // liquid actually accepted by wells
	WasteUL          float64 `json:"waste_ul"`           // intake of the waste well

	TipsUsed map[string]int `json:"tips_used"` // pipette name → tips picked up

	Warnings        int           `json:"warnings"`
	VirtualDuration time.Duration `json:"virtual_duration"`
}

// NewMetrics returns zeroed metrics ready for a run.
func NewMetrics() *Metrics {
	return &Metrics{TipsUsed: make(map[string]int)}
}

// Print displays aggregated metrics at the end of the dry run.
func (m *Metrics) Print() {
	fmt.Println("=== Dry Run Metrics ===")
	fmt.Printf("Commands executed    : %d\n", m.CommandsExecuted)
	fmt.Printf("Aspirates            : %d\n", m.Aspirates)
	fmt.Printf("Dispenses            : %d\n", m.Dispenses)
	fmt.Printf("Mixes                : %d\n", m.Mixes)
	if m.AirGaps > 0 {
		fmt.Printf("Air gaps             : %d\n", m.AirGaps)
	}
	if m.BlowOuts > 0 {
		fmt.Printf("Blow outs            : %d\n", m.BlowOuts)
	}
	fmt.Printf("Total aspirated      : %s µL\n", FormatUL(m.TotalAspiratedUL))
	fmt.Printf("Total dispensed      : %s µL\n", FormatUL(m.TotalDispensedUL))
	fmt.Printf("Waste intake         : %s µL\n", FormatUL(m.WasteUL))
	names := make([]string, 0, len(m.TipsUsed))
	for name := range m.TipsUsed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("Tips used (%-4s)     : %d\n", name, m.TipsUsed[name])
	}
	fmt.Printf("Warnings             : %d\n", m.Warnings)
	fmt.Printf("Virtual duration     : %s\n", m.VirtualDuration)
}
