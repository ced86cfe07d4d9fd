package sim

import "errors"

// Sentinel errors for programming mistakes in a protocol program. These
// halt the dry run: unlike volume violations, they mean the command
// sequence itself is wrong, not merely wasteful.
var (
	ErrNoTip        = errors.New("no tip attached")
	ErrTipAttached  = errors.New("tip already attached")
	ErrUnknownWell  = errors.New("unknown well")
	ErrSlotOccupied = errors.New("deck slot already occupied")
)
