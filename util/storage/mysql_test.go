//go:build integration
// +build integration

package storage_test

import (
	"flag"
	"github.com/APTrust/mets-retriever/util/storage"
	"github.com/stretchr/testify/require"
	"testing"
)

var dialmysql = flag.String("mysql", "/test", "Dial for mysql")

// The test database must be empty.
func TestMySQLLedger(t *testing.T) {
	ledger, err := storage.NewMySQLLedger(*dialmysql)
	require.Nil(t, err)
	defer ledger.Close()
	testLedger(t, ledger)
}
