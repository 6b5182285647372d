package main

import (
	"fmt"
	"github.com/APTrust/mets-retriever/apps/common"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/context"
	"github.com/APTrust/mets-retriever/workers"
	"os"
)

const (
	EXIT_OK          = 0 // All requested METS files were retrieved, or were already in the ledger.
	EXIT_RUNTIME_ERR = 1 // Storage Service, ledger or filesystem error.
	EXIT_USER_ERR    = 2 // Usage error, such as a missing or malformed param.
	EXIT_HELP        = 3 // Printed help or version message. No other operations attempted.
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := common.ParseCommandLine(args)
	if opts.ShowVersion {
		fmt.Println("retrieve_mets version", constants.Version)
		return EXIT_HELP
	}
	if opts.ShowHelp {
		printUsage()
		return EXIT_HELP
	}
	if !opts.HasErrors() {
		opts.SetAndVerifyOptions()
	}
	if opts.HasErrors() {
		fmt.Fprintln(os.Stderr, opts.AllErrorsAsString())
		fmt.Fprintln(os.Stderr, "Run 'retrieve_mets -help' for usage.")
		return EXIT_USER_ERR
	}

	_context, err := context.NewContext(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return EXIT_RUNTIME_ERR
	}
	_context.MessageLog.Debugf("Storage Service URL %s is from %s",
		opts.StorageServiceURL, opts.StorageServiceURLFrom)
	_context.MessageLog.Debugf("Storage Service user %s is from %s",
		opts.StorageServiceUser, opts.StorageServiceUserFrom)
	_context.MessageLog.Debugf("Storage Service API key is from %s",
		opts.StorageServiceAPIKeyFrom)

	retriever := workers.NewMETSRetriever(_context, opts.Sidecar)
	if opts.Command == common.CommandFetchOne {
		return fetchOne(retriever, opts.PackageUUID)
	}
	return fetchAll(_context, retriever, opts.WithReplicasOnly)
}

func fetchOne(retriever *workers.METSRetriever, uuid string) int {
	result, err := retriever.RetrieveOne(uuid)
	if err != nil {
		retriever.Context.MessageLog.Errorf("%v", err)
	}
	fmt.Println(result.ToText())
	if err != nil {
		return EXIT_RUNTIME_ERR
	}
	return EXIT_OK
}

func fetchAll(_context *context.Context, retriever *workers.METSRetriever, replicasRequired bool) int {
	if err := _context.OpenLedger(); err != nil {
		_context.MessageLog.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err.Error())
		return EXIT_RUNTIME_ERR
	}
	summary, err := retriever.RetrieveAll(replicasRequired)
	if closeErr := _context.Close(); closeErr != nil {
		_context.MessageLog.Warningf("Error closing ledger at %s: %v",
			_context.LedgerPath(), closeErr)
	}
	fmt.Println(summary.StatsLine())
	for _, uuid := range summary.FailedUUIDs {
		fmt.Printf("[WARNING] METS file for %s could not be verified\n", uuid)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return EXIT_RUNTIME_ERR
	}
	return EXIT_OK
}

// Tell the user about the program.
func printUsage() {
	message := `
retrieve_mets copies METS files out of AIPs stored in an Archivematica
Storage Service.

Usage:

retrieve_mets fetch-all [-ss-url=<url>] [-ss-user-name=<user>] \
                        [-ss-api-key=<key>] [-output-dir=<dir>] \
                        [-ledger=<path or dsn>] [-config=<file>] \
                        [-env-file=<file>] [-sidecar] [-with-replicas-only]

retrieve_mets fetch-one [-ss-url=<url>] [-ss-user-name=<user>] \
                        [-ss-api-key=<key>] [-output-dir=<dir>] \
                        [-config=<file>] [-env-file=<file>] [-sidecar] \
                        <package uuid>

retrieve_mets -version
retrieve_mets -help

Commands:

fetch-all  retrieves the METS file of every uploaded AIP that is not
           a replica and is not already in the ledger. Each package
           is recorded in the ledger as soon as its METS file is
           written, so if the run stops, the next run picks up where
           this one left off. Packages whose METS file can't be found
           are logged and skipped.

fetch-one  retrieves the METS file of a single package, whether or not
           it has been retrieved before. It never reads or writes the
           ledger.

Params:

-ss-url       is the base URL of the Storage Service. Default is
              http://127.0.0.1:62081. You can also set this in the
              environment as SS_URL.

-ss-user-name is the Storage Service user. Default is 'test'. You can
              also set this in the environment as SS_USER_NAME.

-ss-api-key   is the API key of the Storage Service user. Default is
              'test'. You can also set this in the environment as
              SS_API_KEY.

-output-dir   is the directory into which METS files are written. It
              will be created if it doesn't exist. Default is
              mets_files under the current directory. METS files are
              named METS.<uuid>.xml.

-ledger       is the ledger that records which packages have been
              retrieved. For the bolt and ql backends, this is a file
              path, and the default is mets.db next to the
              retrieve_mets executable. For mysql, this is a DSN.

-config       is the optional path to a JSON config file. See
              config/dev.json for an example.

-env-file     is a file of KEY=value lines to load into the environment.
              If omitted, retrieve_mets loads .env from the current
              directory, if there is one.

-sidecar      writes METS.<uuid>.txt next to each METS file, listing the
              package's storage location and replicas.

-with-replicas-only  skips packages that have no replicas.

Settings on the command line override settings in the environment,
which override settings in the config file.

Examples:

1. Retrieve all METS files from a local Storage Service:

   retrieve_mets fetch-all -output-dir=/data/mets

2. Retrieve one METS file, with a sidecar file:

   retrieve_mets fetch-one -sidecar 0d4e4a27-33c5-4c1c-9cd4-1a4f4a4b0c11

3. Retrieve from a remote Storage Service, with credentials in the
   environment:

   SS_API_KEY=secret retrieve_mets fetch-all -ss-url=https://ss.example.com \
        -ss-user-name=archivist

Exit codes:

0 - All requested METS files were retrieved, or were already in the ledger.
1 - Storage Service, ledger or filesystem error.
2 - Usage error, such as a missing or malformed param.
3 - Printed help or version message. No other operations attempted.
`
	fmt.Println(message)
}
