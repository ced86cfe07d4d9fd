package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/selex-sim/selex-sim/sim/journal"
)

// Program is a fully laid out protocol: the deck with its labware and
// modules, the mounted instruments, and the flat command sequence. A
// program runs strictly in order; there is no scheduler.
type Program struct {
	Name     string
	Deck     *Deck
	Pipettes map[string]*Pipette // keyed by short name ("p20", "p300")
	Cycler   *Thermocycler
	Magnet   *MagDeck
	Commands []Command
}

// Simulator is the core object that holds the virtual clock, the deck
// state, and the journal of one dry run. It executes a Program's
// commands in order; volume violations become warning records and the
// run continues (unless Config.Strict promotes them to errors).
type Simulator struct {
	Clock   time.Duration
	Program *Program
	Journal *journal.Journal
	Metrics *Metrics

	cfg Config
	// first warning of the run; consulted after each command in strict mode
	violation *journal.Record
}

// NewSimulator prepares a dry run of the given program.
func NewSimulator(p *Program, cfg Config) *Simulator {
	return &Simulator{
		Program: p,
		Journal: journal.New(),
		Metrics: NewMetrics(),
		cfg:     cfg,
	}
}

// Run executes every command of the program in order, advancing the
// virtual clock. It returns an error for broken command sequences
// (ErrNoTip and friends), for context cancellation, and — in strict
// mode — for the first volume violation.
func (s *Simulator) Run(ctx context.Context) error {
	for i, cmd := range s.Program.Commands {
		select {
		case <-ctx.Done():
			return fmt.Errorf("dry run interrupted at step %d: %w", i+1, ctx.Err())
		default:
		}
		logrus.Debugf("[%10s] step %d: %s", s.Clock, i+1, cmd)
		if err := cmd.Execute(s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, cmd, err)
		}
		s.Metrics.CommandsExecuted++
		if s.cfg.Strict && s.violation != nil {
			return fmt.Errorf("step %d (%s): strict mode: %s", i+1, cmd, s.violation.Message)
		}
	}
	s.Metrics.Warnings = len(s.Journal.Warnings())
	s.Metrics.VirtualDuration = s.Clock
	return nil
}

// advance moves the virtual clock forward. Negative durations are
// ignored; the clock never goes backwards.
func (s *Simulator) advance(d time.Duration) {
	if d > 0 {
		s.Clock += d
	}
}

func (s *Simulator) pipette(name string) (*Pipette, error) {
	p, ok := s.Program.Pipettes[name]
	if !ok {
		return nil, fmt.Errorf("no pipette %q mounted", name)
	}
	return p, nil
}

func (s *Simulator) cycler() (*Thermocycler, error) {
	if s.Program.Cycler == nil {
		return nil, fmt.Errorf("no thermocycler on the deck")
	}
	return s.Program.Cycler, nil
}

func (s *Simulator) magnet() (*MagDeck, error) {
	if s.Program.Magnet == nil {
		return nil, fmt.Errorf("no magnetic module on the deck")
	}
	return s.Program.Magnet, nil
}

// action journals a hardware action. The proto record carries the
// structured fields (kind, pipette, well, volume, rate); the message is
// the formatted human-readable line.
func (s *Simulator) action(proto journal.Record, format string, args ...any) {
	proto.At = s.Clock
	proto.Severity = journal.SeverityAction
	proto.Message = fmt.Sprintf(format, args...)
	s.Journal.Append(proto)
}

// info journals a non-action notice (comments, waits, retuning).
func (s *Simulator) info(kind journal.Kind, format string, args ...any) {
	s.Journal.Append(journal.Record{
		At:       s.Clock,
		Kind:     kind,
		Severity: journal.SeverityInfo,
		Message:  fmt.Sprintf(format, args...),
	})
}

// warn journals a volume or resource violation. State has already been
// clamped by the caller; the record carries the commanded amounts.
func (s *Simulator) warn(proto journal.Record, format string, args ...any) {
	proto.At = s.Clock
	proto.Severity = journal.SeverityWarning
	proto.Message = fmt.Sprintf(format, args...)
	s.Journal.Append(proto)
	logrus.Warnf("[%10s] %s", s.Clock, proto.Message)
	if s.violation == nil {
		s.violation = &proto
	}
}

// checkBlockMax warns when loaded thermocycler wells exceed a commanded
// block-max-volume. A non-positive maxUL disables the check.
func (s *Simulator) checkBlockMax(tc *Thermocycler, kind journal.Kind, maxUL float64) {
	if maxUL <= 0 {
		return
	}
	count, worst := tc.overfilledWells(maxUL)
	if count == 0 {
		return
	}
	s.warn(journal.Record{Kind: kind, Well: worst.Path(), VolumeUL: worst.VolumeUL},
		"%d well(s) above the commanded %s µL block max, worst %s at %s µL",
		count, FormatUL(maxUL), worst.Path(), FormatUL(worst.VolumeUL))
}
