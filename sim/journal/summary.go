package journal

import "time"

// Summary aggregates statistics from a Journal.
type Summary struct {
	TotalRecords   int
	ActionsByKind  map[Kind]int
	WarningsByKind map[Kind]int
	WarningCount   int
	TipsByPipette  map[string]int // pipette name → tips picked up
	EndClock       time.Duration  // clock offset of the last record
}

// Summarize computes aggregate statistics from a Journal.
// Safe for nil or empty journals (returns zero-value fields).
func Summarize(j *Journal) *Summary {
	summary := &Summary{
		ActionsByKind:  make(map[Kind]int),
		WarningsByKind: make(map[Kind]int),
		TipsByPipette:  make(map[string]int),
	}
	if j == nil {
		return summary
	}

	summary.TotalRecords = len(j.records)
	for _, r := range j.records {
		switch r.Severity {
		case SeverityAction:
			summary.ActionsByKind[r.Kind]++
		case SeverityWarning:
			summary.WarningsByKind[r.Kind]++
			summary.WarningCount++
		}
		if r.Kind == KindPickUpTip && r.Severity == SeverityAction && r.Pipette != "" {
			summary.TipsByPipette[r.Pipette]++
		}
		if r.At > summary.EndClock {
			summary.EndClock = r.At
		}
	}

	return summary
}
