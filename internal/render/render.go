// Package render formats journal records and summaries for the
// terminal. The palette follows the bench run log: green for actions,
// cyan for notices, red for violations.
package render

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/selex-sim/selex-sim/sim/journal"
)

var (
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	clockStyle   = lipgloss.NewStyle().Faint(true)
)

// Renderer writes journal records and summaries as styled lines.
// Plain disables all styling (set for pipes, NO_COLOR, or --no-color).
type Renderer struct {
	Plain bool
}

// New returns a renderer, honoring the NO_COLOR convention unless the
// caller already decided.
func New(plain bool) *Renderer {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		plain = true
	}
	return &Renderer{Plain: plain}
}

func (r *Renderer) style(st lipgloss.Style, s string) string {
	if r.Plain {
		return s
	}
	return st.Render(s)
}

// Record formats one journal record as a single line:
// "[  1h2m3s] [ACTION] p300 aspirated ...".
func (r *Renderer) Record(rec journal.Record) string {
	clock := r.style(clockStyle, fmt.Sprintf("[%10s]", rec.At))
	var tag string
	switch rec.Severity {
	case journal.SeverityAction:
		tag = r.style(actionStyle, "[ACTION]")
	case journal.SeverityWarning:
		tag = r.style(warningStyle, "[WARNING]")
	default:
		tag = r.style(infoStyle, "[INFO]")
	}
	return fmt.Sprintf("%s %s %s", clock, tag, rec.Message)
}

// Summary formats a journal summary block: warnings by kind, tip usage,
// and the virtual clock at the end of the run.
func (r *Renderer) Summary(s *journal.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Journal Summary ===\n")
	fmt.Fprintf(&b, "Records              : %d\n", s.TotalRecords)
	for _, kind := range sortedKinds(s.ActionsByKind) {
		fmt.Fprintf(&b, "  %-19s: %d\n", kind, s.ActionsByKind[kind])
	}
	names := make([]string, 0, len(s.TipsByPipette))
	for name := range s.TipsByPipette {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "Tips used (%-4s)     : %d\n", name, s.TipsByPipette[name])
	}
	if s.WarningCount == 0 {
		fmt.Fprintf(&b, "Warnings             : 0\n")
	} else {
		line := fmt.Sprintf("Warnings             : %d", s.WarningCount)
		fmt.Fprintf(&b, "%s\n", r.style(warningStyle, line))
		for _, kind := range sortedKinds(s.WarningsByKind) {
			fmt.Fprintf(&b, "  %-19s: %d\n", kind, s.WarningsByKind[kind])
		}
	}
	fmt.Fprintf(&b, "Virtual clock end    : %s\n", s.EndClock)
	return b.String()
}

func sortedKinds(m map[journal.Kind]int) []journal.Kind {
	kinds := make([]journal.Kind, 0, len(m))
	for kind := range m {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
