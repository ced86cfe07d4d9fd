package render

import (
	"strings"
	"testing"
	"time"

	"github.com/selex-sim/selex-sim/sim/journal"
)

func TestRenderer_Record_PlainFormat(t *testing.T) {
	// GIVEN a plain renderer and one of each severity
	r := &Renderer{Plain: true}
	cases := []struct {
		severity journal.Severity
		wantTag  string
	}{
		{journal.SeverityAction, "[ACTION]"},
		{journal.SeverityInfo, "[INFO]"},
		{journal.SeverityWarning, "[WARNING]"},
	}
	for _, tc := range cases {
		// WHEN the record is rendered
		line := r.Record(journal.Record{
			At:       90 * time.Second,
			Severity: tc.severity,
			Message:  "p300 aspirated 240 µL",
		})

		// THEN the line carries the clock, the tag, and the message
		if !strings.Contains(line, "[     1m30s]") {
			t.Errorf("%s: missing clock in %q", tc.severity, line)
		}
		if !strings.Contains(line, tc.wantTag) || !strings.Contains(line, "p300 aspirated 240 µL") {
			t.Errorf("%s: got %q", tc.severity, line)
		}
	}
}

func TestRenderer_Plain_EmitsNoEscapes(t *testing.T) {
	r := &Renderer{Plain: true}
	line := r.Record(journal.Record{Severity: journal.SeverityWarning, Message: "overdrawn"})
	if strings.Contains(line, "\x1b[") {
		t.Errorf("plain output contains escape codes: %q", line)
	}
}

func TestNew_HonorsNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if r := New(false); !r.Plain {
		t.Error("NO_COLOR should force plain output")
	}
}

func TestRenderer_Summary_Content(t *testing.T) {
	// GIVEN a summary with actions, tips, and warnings
	r := &Renderer{Plain: true}
	s := &journal.Summary{
		TotalRecords: 42,
		ActionsByKind: map[journal.Kind]int{
			journal.KindAspirate: 10,
			journal.KindDispense: 10,
		},
		WarningsByKind: map[journal.Kind]int{journal.KindAspirate: 3},
		WarningCount:   3,
		TipsByPipette:  map[string]int{"p20": 6, "p300": 20},
		EndClock:       2 * time.Hour,
	}

	// WHEN rendered
	out := r.Summary(s)

	// THEN the block names each aggregate
	for _, want := range []string{
		"Records              : 42",
		"aspirate",
		"Tips used (p20 )     : 6",
		"Tips used (p300)     : 20",
		"Warnings             : 3",
		"Virtual clock end    : 2h0m0s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderer_Summary_NoWarnings(t *testing.T) {
	r := &Renderer{Plain: true}
	out := r.Summary(&journal.Summary{
		ActionsByKind:  map[journal.Kind]int{},
		WarningsByKind: map[journal.Kind]int{},
		TipsByPipette:  map[string]int{},
	})
	if !strings.Contains(out, "Warnings             : 0") {
		t.Errorf("summary missing zero-warning line:\n%s", out)
	}
}
