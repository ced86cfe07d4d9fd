// Package journal provides action-record collection for dry-run protocol simulation.
// This package has no dependencies on sim/ — it stores pure data types.
package journal

import "time"

// Severity classifies a journal record. The three levels mirror the
// console channels of the bench-side run log: actions the robot would
// take, informational notices, and bookkeeping violations.
type Severity string

const (
	// SeverityAction records a hardware action (transfer, tip change, module command).
	SeverityAction Severity = "action"
	// SeverityInfo records a non-action notice (comments, waits, configuration).
	SeverityInfo Severity = "info"
	// SeverityWarning records a volume or resource violation. Warnings never
	// stop a dry run unless strict mode promotes them.
	SeverityWarning Severity = "warning"
)

// Kind identifies which protocol operation produced a record.
type Kind string

const (
	KindComment      Kind = "comment"
	KindDelay        Kind = "delay"
	KindPickUpTip    Kind = "pick_up_tip"
	KindDropTip      Kind = "drop_tip"
	KindAspirate     Kind = "aspirate"
	KindDispense     Kind = "dispense"
	KindMix          Kind = "mix"
	KindAirGap       Kind = "air_gap"
	KindBlowOut      Kind = "blow_out"
	KindLid          Kind = "lid"
	KindLidTemp      Kind = "lid_temperature"
	KindBlockTemp    Kind = "block_temperature"
	KindProfile      Kind = "profile"
	KindMagnet       Kind = "magnet"
	KindTipInventory Kind = "tip_inventory"
	KindFlowRate     Kind = "flow_rate"
)

// Record captures a single simulated protocol action or violation.
type Record struct {
	Seq      int           `json:"seq"`                // 1-based position in the run
	At       time.Duration `json:"at"`                 // virtual clock offset when the record was emitted
	Kind     Kind          `json:"kind"`               // operation that produced the record
	Severity Severity      `json:"severity"`           // action, info, or warning
	Pipette  string        `json:"pipette,omitempty"`  // short pipette name ("p20", "p300"), if any
	Well     string        `json:"well,omitempty"`     // well display path, if any
	VolumeUL float64       `json:"volume_ul,omitempty"` // commanded volume in µL, if any
	RateULs  float64       `json:"rate_uls,omitempty"`  // effective flow rate in µL/s, if any
	Message  string        `json:"message"`            // human-readable line
}
