package sim

// Config controls how the simulator treats bookkeeping violations.
type Config struct {
	// Strict promotes warning records to errors: the run halts on the
	// first violation instead of clamping and continuing. Used for
	// dry-run gating, where any violation should fail the whole check.
	Strict bool
}
