package models

import (
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/util"
)

// StoragePackage describes a package stored in the Archivematica
// Storage Service. The same struct holds the summary records that
// come back from the package list and the detail record for a
// single package.
type StoragePackage struct {
	// UUID is the package identifier assigned by Archivematica.
	UUID string `json:"uuid"`

	// Status is the Storage Service status, such as UPLOADED,
	// STAGING, DELETED or FAIL.
	Status string `json:"status"`

	// PackageType is AIP, AIC, DIP, transfer, etc.
	PackageType string `json:"package_type"`

	// ReplicatedPackage is the resource URI of the package this
	// package is a replica of. It's empty for original packages.
	ReplicatedPackage string `json:"replicated_package"`

	// Replicas is the list of resource URIs of this package's
	// replicas, like "/api/v2/file/<uuid>/". It may be empty.
	Replicas []string `json:"replicas"`

	// CurrentLocation is the resource URI of the storage location
	// that holds this package, like "/api/v2/location/<uuid>/".
	CurrentLocation string `json:"current_location"`

	// CurrentPath is the path of the package within its location.
	CurrentPath string `json:"current_path"`

	// Size is the package size in bytes.
	Size int64 `json:"size"`
}

// IsReplica returns true if this package is a replica of some
// other package.
func (pkg *StoragePackage) IsReplica() bool {
	return pkg.ReplicatedPackage != ""
}

// IsUploaded returns true if the package is fully stored.
func (pkg *StoragePackage) IsUploaded() bool {
	return pkg.Status == constants.StatusUploaded
}

// HasReplicas returns true if at least one replica of this
// package has been stored.
func (pkg *StoragePackage) HasReplicas() bool {
	return len(pkg.Replicas) > 0
}

// ReplicaUUIDs returns the UUIDs of this package's replicas, in
// the same order as Replicas.
func (pkg *StoragePackage) ReplicaUUIDs() []string {
	uuids := make([]string, len(pkg.Replicas))
	for i, uri := range pkg.Replicas {
		uuids[i] = util.PackageUUIDFromURI(uri)
	}
	return uuids
}

// METSFileName returns the name of this package's METS file.
func (pkg *StoragePackage) METSFileName() string {
	return util.METSFileName(pkg.UUID)
}

// METSRelativePath returns the path of the METS file inside the
// AIP, which is what the Storage Service's extract_file endpoint
// wants.
func (pkg *StoragePackage) METSRelativePath() string {
	return util.PackageDirName(pkg.CurrentPath) + "/data/" + pkg.METSFileName()
}
