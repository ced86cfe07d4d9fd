package sim

// MagDeck tracks the magnetic module's engage state and the plate it
// carries. Bead behavior is not modeled; engaging only matters to the
// journal and to the engage/disengage pairing of the protocol.
type MagDeck struct {
	Engaged  bool
	HeightMM float64
	Plate    *Labware
}

// NewMagDeck returns a disengaged magnetic module holding the given plate.
func NewMagDeck(plate *Labware) *MagDeck {
	return &MagDeck{Plate: plate}
}
