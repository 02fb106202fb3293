// Package jobprep prepares batches of VASP job directories from a
// neutral reference calculation.
//
// Two workflows are supported: creating charged variants of neutral
// baselines and continuing/restarting existing jobs. Preparation is
// strictly sequential in discovery order and never submits anything;
// the prepared batch is handed off to the safety and submission stages
// once it is complete.
package jobprep

import "strings"

// Record is the in-memory result of preparing one job directory.
type Record struct {
	// Name is the job directory name, unique within the batch.
	Name string

	// Electrons is the NELECT value written into the job's
	// configuration; meaningful only when HasElectrons is true.
	Electrons float64

	// HasElectrons reports whether an electron count was resolved for
	// this job. Neutral jobs without a pre-existing NELECT skip the
	// derivation entirely.
	HasElectrons bool
}

// Batch accumulates the preparation results of one run plus the
// per-job unsafe reasons recorded by the safety stage. It is owned by
// the run and passed explicitly between the prepare, check and decide
// phases.
type Batch struct {
	// RunID correlates every log line and report of one batch run.
	RunID string

	records []Record
	reasons map[string]string
}

// NewBatch creates an empty batch for the given run ID.
func NewBatch(runID string) *Batch {
	return &Batch{
		RunID:   runID,
		reasons: make(map[string]string),
	}
}

// Append adds a prepared job record. Records keep discovery order.
func (b *Batch) Append(rec Record) {
	b.records = append(b.records, rec)
}

// Records returns the prepared jobs in preparation order.
func (b *Batch) Records() []Record {
	return b.records
}

// Len returns the number of prepared jobs.
func (b *Batch) Len() int {
	return len(b.records)
}

// Flag records an unsafe reason against a job. Multiple reasons for
// the same job are joined.
func (b *Batch) Flag(name, reason string) {
	if existing, ok := b.reasons[name]; ok {
		b.reasons[name] = existing + "; " + reason
		return
	}
	b.reasons[name] = reason
}

// UnsafeReason returns the recorded unsafe reason for a job, if any.
func (b *Batch) UnsafeReason(name string) (string, bool) {
	r, ok := b.reasons[name]
	return r, ok
}

// AnyUnsafe reports whether any job in the batch has a recorded
// unsafe reason.
func (b *Batch) AnyUnsafe() bool {
	return len(b.reasons) > 0
}

// UnsafeCount returns the number of jobs with recorded reasons.
func (b *Batch) UnsafeCount() int {
	return len(b.reasons)
}

// Summary renders a short human-readable report of the batch.
func (b *Batch) Summary() string {
	var sb strings.Builder
	for _, rec := range b.records {
		sb.WriteString(rec.Name)
		if reason, ok := b.reasons[rec.Name]; ok {
			sb.WriteString("  UNSAFE: ")
			sb.WriteString(reason)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
