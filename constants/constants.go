// Common vars and constants, shared by many parts of the mets retriever.
package constants

import (
	"regexp"
)

// Version is printed by retrieve_mets -version.
const Version = "0.1.0"

// Defaults for connecting to the Storage Service. These match the
// defaults of a local Archivematica development environment.
const (
	DefaultStorageServiceURL    = "http://127.0.0.1:62081"
	DefaultStorageServiceUser   = "test"
	DefaultStorageServiceAPIKey = "test"
	DefaultOutputDirectory      = "mets_files"
	DefaultLedgerFileName       = "mets.db"
	DefaultNsqTopic             = "mets_retrieved"
)

// Storage Service API paths. All package references in Storage
// Service JSON responses (replicas, replicated_package) begin with
// APIFilePrefix and end with a slash.
const (
	APIFilePrefix        = "/api/v2/file/"
	APIExtractFileSuffix = "extract_file/"
	PackageTypeAIP       = "AIP"
)

// Package status values reported by the Storage Service. We only
// retrieve METS for packages that have been fully uploaded.
const (
	StatusUploaded = "UPLOADED"
)

// Ledger backends understood by storage.OpenLedger.
const (
	LedgerBolt  = "bolt"
	LedgerQL    = "ql"
	LedgerMySQL = "mysql"
)

var LedgerBackends []string = []string{
	LedgerBolt,
	LedgerQL,
	LedgerMySQL,
}

// MaxIdentifierLength is the longest package identifier the ledger
// will accept.
const MaxIdentifierLength = 120

// METSFilePattern matches the name of a retrieved METS file and
// captures the package UUID.
var METSFilePattern = regexp.MustCompile(`^METS\.([A-Fa-f\d]{8}(-[A-Fa-f\d]{4}){3}-[A-Fa-f\d]{12})\.xml$`)

// CompressedPackageExtensions are stripped from a package's
// current_path to find the name of the AIP's top-level directory.
// Longer extensions must come before their suffixes.
var CompressedPackageExtensions []string = []string{
	".tar.bz2",
	".tar.gz",
	".7z",
	".tar",
	".zip",
	".gz",
	".bz2",
}

// AWSVirginia is the default region of the mirror bucket.
const AWSVirginia = "us-east-1"
