package storage

import (
	"database/sql"
	"github.com/BurntSushi/migration"
)

// dbVersion adapts migration's version bookkeeping to both QL and
// MySQL, whose SQL dialects differ.
type dbVersion struct {
	// SQL to get the version of this db. Returns one row and one column.
	GetSQL string
	// SQL to insert a new version of this db. Takes the new version
	// as its only parameter.
	SetSQL string
	// SQL to create the version table.
	CreateSQL string
	// Optional SQL that counts version tables. QL rolls back the
	// whole transaction when a statement fails, so for QL we check
	// for the table instead of trying and recovering.
	ExistsSQL string
}

// Get returns the current schema version. Any error is taken to mean
// the version table does not exist yet, so the version is zero.
func (d dbVersion) Get(tx migration.LimitedTx) (int, error) {
	if d.ExistsSQL != "" {
		exists, err := d.tableExists(tx)
		if err != nil || !exists {
			return 0, err
		}
	}
	var version sql.NullInt64
	if err := tx.QueryRow(d.GetSQL).Scan(&version); err != nil {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (d dbVersion) Set(tx migration.LimitedTx, version int) error {
	if d.ExistsSQL != "" {
		exists, err := d.tableExists(tx)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := tx.Exec(d.CreateSQL); err != nil {
				return err
			}
		}
		_, err = tx.Exec(d.SetSQL, version)
		return err
	}
	if _, err := tx.Exec(d.SetSQL, version); err != nil {
		if _, err := tx.Exec(d.CreateSQL); err != nil {
			return err
		}
		_, err = tx.Exec(d.SetSQL, version)
		return err
	}
	return nil
}

func (d dbVersion) tableExists(tx migration.LimitedTx) (bool, error) {
	var count int64
	if err := tx.QueryRow(d.ExistsSQL).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// openMigrated opens a database and brings its schema up to date.
func openMigrated(driver, dsn string, migrations []migration.Migrator, versioning dbVersion) (*sql.DB, error) {
	return migration.OpenWith(driver, dsn, migrations, versioning.Get, versioning.Set)
}

// performExec runs query inside its own transaction. QL requires
// every write to happen in a transaction.
func performExec(db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	result, err := tx.Exec(query, args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	err = tx.Commit()
	return result, err
}
