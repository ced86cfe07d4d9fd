package journal

import (
	"testing"
	"time"
)

func TestJournal_Append_AssignsSequenceNumbers(t *testing.T) {
	// GIVEN an empty journal
	j := New()

	// WHEN three records are appended
	j.Append(Record{Kind: KindComment, Severity: SeverityInfo, Message: "start"})
	j.Append(Record{Kind: KindAspirate, Severity: SeverityAction, Message: "aspirate"})
	j.Append(Record{Kind: KindAspirate, Severity: SeverityWarning, Message: "short"})

	// THEN sequence numbers count up from 1 in emission order
	recs := j.Records()
	if len(recs) != 3 || j.Len() != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	for i, r := range recs {
		if r.Seq != i+1 {
			t.Errorf("record %d has seq %d", i, r.Seq)
		}
	}
}

func TestJournal_Records_ReturnsCopy(t *testing.T) {
	j := New()
	j.Append(Record{Kind: KindComment, Message: "original"})

	recs := j.Records()
	recs[0].Message = "mutated"

	if j.Records()[0].Message != "original" {
		t.Error("mutating the returned slice changed the journal")
	}
}

func TestJournal_Warnings_FiltersBySeverity(t *testing.T) {
	// GIVEN a journal with mixed severities
	j := New()
	j.Append(Record{Kind: KindAspirate, Severity: SeverityAction})
	j.Append(Record{Kind: KindAspirate, Severity: SeverityWarning, Message: "shortfall"})
	j.Append(Record{Kind: KindDelay, Severity: SeverityInfo})
	j.Append(Record{Kind: KindDispense, Severity: SeverityWarning, Message: "overflow"})

	// WHEN warnings are requested
	warns := j.Warnings()

	// THEN only warning records come back, in emission order
	if len(warns) != 2 {
		t.Fatalf("got %d warnings, want 2", len(warns))
	}
	if warns[0].Message != "shortfall" || warns[1].Message != "overflow" {
		t.Errorf("warnings out of order: %q, %q", warns[0].Message, warns[1].Message)
	}
}

func TestSummarize_CountsByKindAndSeverity(t *testing.T) {
	// GIVEN a journal recording a small transfer with one violation
	j := New()
	j.Append(Record{Kind: KindPickUpTip, Severity: SeverityAction, Pipette: "p300", At: 4 * time.Second})
	j.Append(Record{Kind: KindAspirate, Severity: SeverityAction, Pipette: "p300", At: 6 * time.Second})
	j.Append(Record{Kind: KindAspirate, Severity: SeverityWarning, Pipette: "p300", At: 6 * time.Second})
	j.Append(Record{Kind: KindDispense, Severity: SeverityAction, Pipette: "p300", At: 9 * time.Second})
	j.Append(Record{Kind: KindDropTip, Severity: SeverityAction, Pipette: "p300", At: 12 * time.Second})
	j.Append(Record{Kind: KindComment, Severity: SeverityInfo, At: 12 * time.Second})

	// WHEN the journal is summarized
	s := Summarize(j)

	// THEN counts, tips, and the end clock are aggregated
	if s.TotalRecords != 6 {
		t.Errorf("total records: got %d, want 6", s.TotalRecords)
	}
	if s.ActionsByKind[KindAspirate] != 1 || s.ActionsByKind[KindDispense] != 1 {
		t.Errorf("action counts wrong: %v", s.ActionsByKind)
	}
	if s.WarningCount != 1 || s.WarningsByKind[KindAspirate] != 1 {
		t.Errorf("warning counts wrong: count=%d byKind=%v", s.WarningCount, s.WarningsByKind)
	}
	if s.TipsByPipette["p300"] != 1 {
		t.Errorf("tips: got %d, want 1", s.TipsByPipette["p300"])
	}
	if s.EndClock != 12*time.Second {
		t.Errorf("end clock: got %s, want 12s", s.EndClock)
	}
}

func TestSummarize_NilAndEmptyJournals(t *testing.T) {
	for name, j := range map[string]*Journal{"nil": nil, "empty": New()} {
		s := Summarize(j)
		if s.TotalRecords != 0 || s.WarningCount != 0 || s.EndClock != 0 {
			t.Errorf("%s journal: non-zero summary %+v", name, s)
		}
		if s.ActionsByKind == nil || s.WarningsByKind == nil || s.TipsByPipette == nil {
			t.Errorf("%s journal: maps not initialized", name)
		}
	}
}
