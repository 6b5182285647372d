package workers_test

import (
	"bytes"
	"github.com/APTrust/mets-retriever/context"
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/util/logger"
	"github.com/APTrust/mets-retriever/util/storage"
	"github.com/APTrust/mets-retriever/util/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	stdlog "log"
	"testing"
)

const outputDir = "/data/mets_files"

// newTestContext returns a context backed by an in-memory filesystem,
// an in-memory ledger and a fake Storage Service listing packages.
// The JSON log is written to the returned buffer.
func newTestContext(t *testing.T, packages ...*models.StoragePackage) (*context.Context, *testutil.FakeStorageService, *bytes.Buffer) {
	config := models.NewConfig()
	config.OutputDirectory = outputDir
	fs := afero.NewMemMapFs()
	ss := testutil.NewFakeStorageService(fs, packages...)
	ledger, err := storage.NewQLLedger("memory")
	require.Nil(t, err)
	jsonLog := &bytes.Buffer{}
	_context := &context.Context{
		Config:         config,
		MessageLog:     logger.DiscardLogger("workers_test"),
		JsonLog:        stdlog.New(jsonLog, "", 0),
		StorageService: ss,
		Fs:             fs,
		Ledger:         ledger,
	}
	return _context, ss, jsonLog
}

func makePackages(count, replicaCount int) []*models.StoragePackage {
	packages := make([]*models.StoragePackage, count)
	for i := range packages {
		packages[i] = testutil.MakeStoragePackage(replicaCount)
	}
	return packages
}

// ledgerHas returns true if the ledger has an entry for uuid.
func ledgerHas(t *testing.T, ledger storage.Ledger, uuid string) bool {
	found, err := ledger.Has(uuid)
	require.Nil(t, err)
	return found
}
