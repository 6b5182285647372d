package storage

import (
	"database/sql"
	"github.com/BurntSushi/migration"
	_ "github.com/cznic/ql/driver"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
)

// QLLedger keeps the ledger in a QL embedded database. Each entry
// is one row of the aips table. QL assigns every row a sequential
// id, available through id().
type QLLedger struct {
	db *sql.DB
}

var _ Ledger = &QLLedger{}

// List of migrations to perform. Add new ones to the end.
// DO NOT change the order of items already in this list.
var qlMigrations = []migration.Migrator{
	qlschema1,
}

var qlVersioning = dbVersion{
	GetSQL:    `SELECT max(version) FROM migration_version`,
	SetSQL:    `INSERT INTO migration_version VALUES (?1, now())`,
	CreateSQL: `CREATE TABLE migration_version (version int, applied time)`,
	ExistsSQL: `SELECT count(*) FROM __Table WHERE Name == "migration_version"`,
}

// NewQLLedger opens a QL ledger. filename is the name of the file
// to keep the database in. The filename "memory" keeps everything
// in memory, which is useful only for tests.
func NewQLLedger(filename string) (*QLLedger, error) {
	driver := "ql"
	if filename == "memory" {
		// Every in-memory ledger gets its own database.
		driver = "ql-mem"
		filename = "mem-" + uuid.NewV4().String() + ".db"
	}
	db, err := openMigrated(driver, filename, qlMigrations, qlVersioning)
	if err != nil {
		return nil, err
	}
	return &QLLedger{db: db}, nil
}

func (ledger *QLLedger) Has(uuid string) (bool, error) {
	const query = `SELECT count(*) FROM aips WHERE uuid == ?1`
	var count int64
	err := ledger.db.QueryRow(query, uuid).Scan(&count)
	if err != nil {
		return false, errors.Wrapf(err, "Cannot look up %s in ledger", uuid)
	}
	return count > 0, nil
}

// Record inserts a row for uuid and commits it.
func (ledger *QLLedger) Record(uuid string) error {
	if err := checkIdentifier(uuid); err != nil {
		return err
	}
	_, err := performExec(ledger.db, `INSERT INTO aips VALUES (?1)`, uuid)
	return errors.Wrapf(err, "Cannot record %s in ledger", uuid)
}

func (ledger *QLLedger) Close() error {
	return ledger.db.Close()
}

func qlschema1(tx migration.LimitedTx) error {
	var s = []string{
		`CREATE TABLE IF NOT EXISTS aips (uuid string)`,
		`CREATE INDEX IF NOT EXISTS aipsuuid ON aips (uuid)`,
	}
	return execlist(tx, s)
}

// execlist runs each statement in s in order, stopping at the
// first error.
func execlist(tx migration.LimitedTx, s []string) error {
	for _, q := range s {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
