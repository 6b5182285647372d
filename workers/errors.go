package workers

import (
	"fmt"
	"github.com/pkg/errors"
)

// VerificationError means the Storage Service said it extracted a
// METS file, but the file isn't where it should be. This is the one
// error a batch run tolerates. The package stays out of the ledger,
// so the next run tries it again.
type VerificationError struct {
	UUID         string
	ExpectedPath string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("METS file for %s not found at %s after extraction",
		e.UUID, e.ExpectedPath)
}

// IsVerificationError returns true if the cause of err is a
// VerificationError.
func IsVerificationError(err error) bool {
	_, ok := errors.Cause(err).(*VerificationError)
	return ok
}
