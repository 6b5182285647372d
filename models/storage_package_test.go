package models_test

import (
	"encoding/json"
	"github.com/APTrust/mets-retriever/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const packageJson = `{
    "current_full_path": "/var/archivematica/sharedDirectory/www/AIPsStore/8c09/cd9f/0da3/4bdb/be2a/2295/ed79/9f4c/images-8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.7z",
    "current_location": "/api/v2/location/3a6b6c1a-4a3e-4a4b-9a7f-0a8b3c0d0e1f/",
    "current_path": "8c09/cd9f/0da3/4bdb/be2a/2295/ed79/9f4c/images-8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.7z",
    "encrypted": false,
    "misc_attributes": {},
    "origin_pipeline": "/api/v2/pipeline/5f0e4e4a-63c3-4b5b-8b0e-9f1f6c4a2b3d/",
    "package_type": "AIP",
    "related_packages": [],
    "replicas": ["/api/v2/file/1d2c3b4a-0000-4000-8000-000000000001/", "/api/v2/file/1d2c3b4a-0000-4000-8000-000000000002/"],
    "replicated_package": null,
    "resource_uri": "/api/v2/file/8c09cd9f-0da3-4bdb-be2a-2295ed799f4c/",
    "size": 4872,
    "status": "UPLOADED",
    "uuid": "8c09cd9f-0da3-4bdb-be2a-2295ed799f4c"
}`

func TestStoragePackageFromJson(t *testing.T) {
	pkg := &models.StoragePackage{}
	require.Nil(t, json.Unmarshal([]byte(packageJson), pkg))
	assert.Equal(t, "8c09cd9f-0da3-4bdb-be2a-2295ed799f4c", pkg.UUID)
	assert.Equal(t, "UPLOADED", pkg.Status)
	assert.Equal(t, "AIP", pkg.PackageType)
	assert.Equal(t, "", pkg.ReplicatedPackage)
	assert.Equal(t, 2, len(pkg.Replicas))
	assert.EqualValues(t, 4872, pkg.Size)
	assert.True(t, pkg.IsUploaded())
	assert.False(t, pkg.IsReplica())
	assert.True(t, pkg.HasReplicas())
}

func TestStoragePackagePredicates(t *testing.T) {
	pkg := &models.StoragePackage{Status: "DELETED", ReplicatedPackage: "/api/v2/file/x/"}
	assert.False(t, pkg.IsUploaded())
	assert.True(t, pkg.IsReplica())
	assert.False(t, pkg.HasReplicas())
}

func TestReplicaUUIDs(t *testing.T) {
	pkg := &models.StoragePackage{
		Replicas: []string{"/api/v2/file/A/", "/api/v2/file/B/"},
	}
	assert.Equal(t, []string{"A", "B"}, pkg.ReplicaUUIDs())
	assert.Empty(t, (&models.StoragePackage{}).ReplicaUUIDs())
}

func TestMETSRelativePath(t *testing.T) {
	pkg := &models.StoragePackage{}
	require.Nil(t, json.Unmarshal([]byte(packageJson), pkg))
	assert.Equal(t, "METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml", pkg.METSFileName())
	assert.Equal(t,
		"images-8c09cd9f-0da3-4bdb-be2a-2295ed799f4c/data/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml",
		pkg.METSRelativePath())

	// Uncompressed AIPs are stored as directories.
	pkg.CurrentPath = "8c09/cd9f/images-8c09cd9f-0da3-4bdb-be2a-2295ed799f4c/"
	assert.Equal(t,
		"images-8c09cd9f-0da3-4bdb-be2a-2295ed799f4c/data/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml",
		pkg.METSRelativePath())
}
