package storage

import (
	"encoding/binary"
	"fmt"
	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"time"
)

const AIP_BUCKET = "aips"

// BoltLedger keeps the ledger in a bolt database, which is a
// single-file key-value store. Keys are package identifiers.
// Values are the big-endian sequence number assigned when the
// entry was recorded.
//
// bolt holds an exclusive lock on the file while it is open, so a
// second process opening the same ledger fails after openTimeout.
type BoltLedger struct {
	db       *bolt.DB
	filePath string
}

const openTimeout = 2 * time.Second

// NewBoltLedger opens a bolt ledger, creating the DB file if it
// doesn't already exist.
func NewBoltLedger(filePath string) (*BoltLedger, error) {
	db, err := bolt.Open(filePath, 0644, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	ledger := &BoltLedger{
		db:       db,
		filePath: filePath,
	}
	if err = ledger.initBuckets(); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

func (ledger *BoltLedger) initBuckets() error {
	return ledger.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(AIP_BUCKET))
		if err != nil {
			return fmt.Errorf("Error creating aips bucket: %s", err)
		}
		return nil
	})
}

// FilePath returns the path to the bolt DB file.
func (ledger *BoltLedger) FilePath() string {
	return ledger.filePath
}

// Has returns true if the ledger contains an entry for uuid.
func (ledger *BoltLedger) Has(uuid string) (bool, error) {
	found := false
	err := ledger.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(AIP_BUCKET)).Get([]byte(uuid)) != nil
		return nil
	})
	return found, err
}

// Record adds uuid to the ledger. Recording an identifier that is
// already present leaves the existing entry alone. bolt syncs the
// file before Update returns.
func (ledger *BoltLedger) Record(uuid string) error {
	if err := checkIdentifier(uuid); err != nil {
		return err
	}
	err := ledger.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(AIP_BUCKET))
		if bucket.Get([]byte(uuid)) != nil {
			return nil
		}
		id, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, id)
		return bucket.Put([]byte(uuid), value)
	})
	return errors.Wrapf(err, "Cannot record %s in ledger", uuid)
}

// Close closes the bolt database.
func (ledger *BoltLedger) Close() error {
	return ledger.db.Close()
}
