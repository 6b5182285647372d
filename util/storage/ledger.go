package storage

import (
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/pkg/errors"
)

// Ledger is the durable record of packages whose METS files we have
// already retrieved. An entry exists for a package only after its
// METS file was downloaded and verified.
type Ledger interface {
	// Has returns true if an entry exists for uuid.
	Has(uuid string) (bool, error)
	// Record adds an entry for uuid. The entry is committed to
	// durable storage before Record returns.
	Record(uuid string) error
	Close() error
}

// OpenLedger opens the ledger of the specified backend, creating
// the backing store and its schema if they do not yet exist.
// For bolt and ql, location is a file path. For ql, the location
// "memory" opens an in-memory database. For mysql, location is a DSN.
func OpenLedger(backend, location string) (Ledger, error) {
	if location == "" {
		return nil, fmt.Errorf("Ledger location is missing")
	}
	var ledger Ledger
	var err error
	switch backend {
	case constants.LedgerBolt, "":
		ledger, err = NewBoltLedger(location)
	case constants.LedgerQL:
		ledger, err = NewQLLedger(location)
	case constants.LedgerMySQL:
		ledger, err = NewMySQLLedger(location)
	default:
		return nil, fmt.Errorf("Unknown ledger backend '%s'. Valid backends are %v",
			backend, constants.LedgerBackends)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open %s ledger at %s", backend, location)
	}
	return ledger, nil
}

func checkIdentifier(uuid string) error {
	if uuid == "" {
		return fmt.Errorf("Package identifier is empty")
	}
	if len(uuid) > constants.MaxIdentifierLength {
		return fmt.Errorf("Package identifier '%s' is longer than %d characters",
			uuid, constants.MaxIdentifierLength)
	}
	return nil
}
