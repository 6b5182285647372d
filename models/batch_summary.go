package models

import (
	"fmt"
	"strings"
	"time"
)

// BatchSummary tallies the outcome of one fetch-all run.
type BatchSummary struct {
	// Eligible is the number of packages that passed the selector.
	Eligible int

	// Attempted is the number of eligible packages that were not
	// already in the ledger, and for which we tried to retrieve
	// the METS file.
	Attempted int

	// Succeeded is the number of packages whose METS file was
	// retrieved, verified and recorded in the ledger.
	Succeeded int

	// Skipped is the number of eligible packages already present
	// in the ledger.
	Skipped int

	// FailedVerification is the number of packages whose METS file
	// was missing after the extract call.
	FailedVerification int

	// FailedUUIDs lists the packages that failed verification, in
	// the order they appeared in the listing.
	FailedUUIDs []string

	// Errors describes errors that aborted the run. Verification
	// failures are not recorded here.
	Errors []string

	StartedAt  time.Time
	FinishedAt time.Time
}

func NewBatchSummary() *BatchSummary {
	return &BatchSummary{
		FailedUUIDs: make([]string, 0),
		Errors:      make([]string, 0),
	}
}

func (summary *BatchSummary) Start() {
	summary.StartedAt = time.Now().UTC()
}

func (summary *BatchSummary) Started() bool {
	return !summary.StartedAt.IsZero()
}

func (summary *BatchSummary) Finish() {
	summary.FinishedAt = time.Now().UTC()
}

func (summary *BatchSummary) Finished() bool {
	return !summary.FinishedAt.IsZero()
}

func (summary *BatchSummary) RunTime() time.Duration {
	startTime := summary.StartedAt
	if startTime.IsZero() {
		return time.Duration(0)
	}
	endTime := summary.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(startTime)
}

// AddVerificationFailure counts a package whose METS file could not
// be verified after extraction.
func (summary *BatchSummary) AddVerificationFailure(uuid string) {
	summary.FailedVerification++
	summary.FailedUUIDs = append(summary.FailedUUIDs, uuid)
}

func (summary *BatchSummary) AddError(format string, a ...interface{}) {
	summary.Errors = append(summary.Errors, fmt.Sprintf(format, a...))
}

func (summary *BatchSummary) HasErrors() bool {
	return len(summary.Errors) > 0
}

func (summary *BatchSummary) AllErrorsAsString() string {
	if len(summary.Errors) > 0 {
		return strings.Join(summary.Errors, "\n")
	}
	return ""
}

// Completed returns true if the run finished without an aborting
// error. Individual verification failures do not count against it.
func (summary *BatchSummary) Completed() bool {
	return summary.Finished() && len(summary.Errors) == 0
}

// StatsLine returns the one-line summary written to the log at the
// end of a run.
func (summary *BatchSummary) StatsLine() string {
	return fmt.Sprintf("**STATS** Eligible: %d, Attempted: %d, Succeeded: %d, "+
		"Skipped: %d, Failed verification: %d, Run time: %s",
		summary.Eligible, summary.Attempted, summary.Succeeded,
		summary.Skipped, summary.FailedVerification, summary.RunTime())
}
