package journal

// Journal collects records during a dry run in emission order.
type Journal struct {
	records []Record
}

// New creates an empty Journal ready for recording.
func New() *Journal {
	return &Journal{records: make([]Record, 0)}
}

// Append adds a record. The record's Seq is assigned here: 1 for the
// first record, counting up in emission order.
func (j *Journal) Append(r Record) {
	r.Seq = len(j.records) + 1
	j.records = append(j.records, r)
}

// Len returns the number of records collected so far.
func (j *Journal) Len() int {
	return len(j.records)
}

// Records returns the collected records in emission order.
// The returned slice is a copy; mutating it does not affect the journal.
func (j *Journal) Records() []Record {
	out := make([]Record, len(j.records))
	copy(out, j.records)
	return out
}

// Warnings returns only the warning-severity records, in emission order.
func (j *Journal) Warnings() []Record {
	var out []Record
	for _, r := range j.records {
		if r.Severity == SeverityWarning {
			out = append(out, r)
		}
	}
	return out
}
