package testutil

import (
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/models"
	"github.com/icrowley/fake"
	"github.com/satori/go.uuid"
	"math/rand"
	"strings"
)

// PackageURI returns the Storage Service resource URI for the
// package with the specified UUID.
func PackageURI(packageUUID string) string {
	return constants.APIFilePrefix + packageUUID + "/"
}

// LocationURI returns the Storage Service resource URI for the
// location with the specified UUID.
func LocationURI(locationUUID string) string {
	return "/api/v2/location/" + locationUUID + "/"
}

// MakeStoragePackage returns an uploaded, original AIP with a random
// UUID and replicaCount replica references. The replicas themselves
// are not created. See MakeReplica.
func MakeStoragePackage(replicaCount int) *models.StoragePackage {
	packageUUID := uuid.NewV4().String()
	replicas := make([]string, replicaCount)
	for i := range replicas {
		replicas[i] = PackageURI(uuid.NewV4().String())
	}
	name := strings.ToLower(fake.Word())
	return &models.StoragePackage{
		UUID:            packageUUID,
		Status:          constants.StatusUploaded,
		PackageType:     constants.PackageTypeAIP,
		Replicas:        replicas,
		CurrentLocation: LocationURI(uuid.NewV4().String()),
		CurrentPath:     fmt.Sprintf("%s/%s-%s.7z", quadPath(packageUUID), name, packageUUID),
		Size:            int64(rand.Intn(5000000) + 1),
	}
}

// MakeReplica returns the replica package that replicaURI refers to.
// replicaURI should be one of original.Replicas.
func MakeReplica(original *models.StoragePackage, replicaURI string) *models.StoragePackage {
	replicaUUID := strings.Trim(strings.TrimPrefix(replicaURI, constants.APIFilePrefix), "/")
	return &models.StoragePackage{
		UUID:              replicaUUID,
		Status:            constants.StatusUploaded,
		PackageType:       constants.PackageTypeAIP,
		ReplicatedPackage: PackageURI(original.UUID),
		Replicas:          make([]string, 0),
		CurrentLocation:   LocationURI(uuid.NewV4().String()),
		CurrentPath:       fmt.Sprintf("%s/%s", quadPath(replicaUUID), original.CurrentPath[strings.LastIndex(original.CurrentPath, "/")+1:]),
		Size:              original.Size,
	}
}

// MakeMETS returns a small, fake METS document.
func MakeMETS(packageUUID string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<mets:mets xmlns:mets="http://www.loc.gov/METS/" OBJID="%s">
  <mets:metsHdr CREATEDATE="2019-11-05T14:21:47"/>
  <mets:dmdSec ID="dmdSec_1"><mets:mdWrap MDTYPE="DC"><mets:xmlData>%s</mets:xmlData></mets:mdWrap></mets:dmdSec>
</mets:mets>
`, packageUUID, fake.Sentence()))
}

// quadPath converts a UUID to the nested directory path under which
// the Storage Service keeps the package, e.g. 8c09/cd9f/0da3/...
func quadPath(packageUUID string) string {
	hex := strings.Replace(packageUUID, "-", "", -1)
	parts := make([]string, 0, 8)
	for i := 0; i+4 <= len(hex); i += 4 {
		parts = append(parts, hex[i:i+4])
	}
	return strings.Join(parts, "/")
}
