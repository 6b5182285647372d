package storage

import (
	"database/sql"
	"github.com/BurntSushi/migration"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// MySQLLedger keeps the ledger in a MySQL table, for installations
// that want the ledger on a shared database server.
type MySQLLedger struct {
	db *sql.DB
}

var _ Ledger = &MySQLLedger{}

// List of migrations to perform. Add new ones to the end.
// DO NOT change the order of items already in this list.
var mysqlMigrations = []migration.Migrator{
	mysqlschema1,
}

var mysqlVersioning = dbVersion{
	GetSQL:    `SELECT max(version) FROM migration_version`,
	SetSQL:    `INSERT INTO migration_version (version, applied) VALUES (?, now())`,
	CreateSQL: `CREATE TABLE migration_version (version INTEGER, applied datetime)`,
}

// NewMySQLLedger connects to the MySQL database described by dsn,
// e.g. "user:password@tcp(localhost:3306)/mets".
func NewMySQLLedger(dsn string) (*MySQLLedger, error) {
	db, err := openMigrated("mysql", dsn, mysqlMigrations, mysqlVersioning)
	if err != nil {
		return nil, err
	}
	return &MySQLLedger{db: db}, nil
}

func (ledger *MySQLLedger) Has(uuid string) (bool, error) {
	const query = `SELECT count(*) FROM aips WHERE uuid = ?`
	var count int64
	err := ledger.db.QueryRow(query, uuid).Scan(&count)
	if err != nil {
		return false, errors.Wrapf(err, "Cannot look up %s in ledger", uuid)
	}
	return count > 0, nil
}

// Record inserts a row for uuid. Outside an explicit transaction
// MySQL commits each statement before Exec returns.
func (ledger *MySQLLedger) Record(uuid string) error {
	if err := checkIdentifier(uuid); err != nil {
		return err
	}
	_, err := ledger.db.Exec(`INSERT INTO aips (uuid) VALUES (?)`, uuid)
	return errors.Wrapf(err, "Cannot record %s in ledger", uuid)
}

func (ledger *MySQLLedger) Close() error {
	return ledger.db.Close()
}

func mysqlschema1(tx migration.LimitedTx) error {
	var s = []string{
		`CREATE TABLE IF NOT EXISTS aips (
			aip_id INT AUTO_INCREMENT PRIMARY KEY,
			uuid VARCHAR(120)
		)`,
		`CREATE INDEX aips_uuid ON aips (uuid)`,
	}
	return execlist(tx, s)
}
