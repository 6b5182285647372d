package network_test

import (
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/network"
	"github.com/APTrust/mets-retriever/util/logger"
	"github.com/APTrust/mets-retriever/util/testutil"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const outputDir = "/mets_files"

func getClient(t *testing.T, serverUrl, user, key string) (*network.StorageServiceClient, afero.Fs) {
	fs := afero.NewMemMapFs()
	client, err := network.NewStorageServiceClient(serverUrl, user, key,
		10*time.Second, fs, logger.DiscardLogger("network_test"))
	require.Nil(t, err)
	return client, fs
}

func makePackages(count int) []*models.StoragePackage {
	packages := make([]*models.StoragePackage, count)
	for i := range packages {
		packages[i] = testutil.MakeStoragePackage(i % 3)
	}
	return packages
}

func TestNewStorageServiceClient(t *testing.T) {
	log := logger.DiscardLogger("network_test")
	_, err := network.NewStorageServiceClient("127.0.0.1:62081", "test", "test",
		time.Second, afero.NewMemMapFs(), log)
	assert.NotNil(t, err)
	_, err = network.NewStorageServiceClient("http://127.0.0.1:62081/", "test", "test",
		time.Second, afero.NewMemMapFs(), log)
	assert.Nil(t, err)
}

func TestBuildURL(t *testing.T) {
	client, _ := getClient(t, "http://127.0.0.1:62081/", "test", "test")
	assert.Equal(t, "http://127.0.0.1:62081/api/v2/file/", client.BuildURL("/api/v2/file/"))
	assert.Equal(t, "http://127.0.0.1:62081/api/v2/file/?limit=20&offset=20",
		client.BuildURL("/api/v2/file/?limit=20&offset=20"))
	assert.Equal(t, "https://example.com/api/v2/file/",
		client.BuildURL("https://example.com/api/v2/file/"))
}

func TestListPackages(t *testing.T) {
	packages := makePackages(7)
	packages[2].ReplicatedPackage = testutil.PackageURI(packages[1].UUID)
	packages[4].Status = "DELETED"
	ss := testutil.NewStorageServiceServer("archivist", "secret", packages...)
	ss.PageSize = 3
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, _ := getClient(t, testServer.URL, "archivist", "secret")
	listed, err := client.ListPackages()
	require.Nil(t, err)

	// Three pages, in listing order, with no filtering.
	assert.Equal(t, 3, ss.RequestCount())
	assert.Equal(t, "/api/v2/file/?package_type=AIP", ss.Requests[0])
	require.Equal(t, 7, len(listed))
	for i, pkg := range listed {
		assert.Equal(t, packages[i].UUID, pkg.UUID)
		assert.Equal(t, packages[i].Status, pkg.Status)
		assert.Equal(t, packages[i].ReplicatedPackage, pkg.ReplicatedPackage)
		assert.Equal(t, packages[i].Replicas, pkg.Replicas)
		assert.Equal(t, packages[i].CurrentPath, pkg.CurrentPath)
		assert.Equal(t, packages[i].Size, pkg.Size)
		assert.NotNil(t, pkg.Replicas)
	}
}

func TestListPackagesEmpty(t *testing.T) {
	ss := testutil.NewStorageServiceServer("test", "test")
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, _ := getClient(t, testServer.URL, "test", "test")
	listed, err := client.ListPackages()
	require.Nil(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestListPackagesNotAuthorized(t *testing.T) {
	ss := testutil.NewStorageServiceServer("archivist", "secret", makePackages(2)...)
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, _ := getClient(t, testServer.URL, "archivist", "wrong")
	listed, err := client.ListPackages()
	require.NotNil(t, err)
	assert.Nil(t, listed)
	assert.Equal(t, network.ErrNotAuthorized, errors.Cause(err))
	assert.Contains(t, err.Error(), "returned 401 for user 'archivist'")
}

func TestGetPackageDetail(t *testing.T) {
	original := testutil.MakeStoragePackage(2)
	replica := testutil.MakeReplica(original, original.Replicas[0])
	ss := testutil.NewStorageServiceServer("test", "test", original)
	ss.Unlisted = append(ss.Unlisted, replica)
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, _ := getClient(t, testServer.URL, "test", "test")
	pkg, err := client.GetPackageDetail(original.UUID)
	require.Nil(t, err)
	assert.Equal(t, original.CurrentLocation, pkg.CurrentLocation)
	assert.Equal(t, original.Replicas, pkg.Replicas)
	assert.Equal(t, "", pkg.ReplicatedPackage)

	pkg, err = client.GetPackageDetail(replica.UUID)
	require.Nil(t, err)
	assert.Equal(t, testutil.PackageURI(original.UUID), pkg.ReplicatedPackage)
	assert.True(t, pkg.IsReplica())

	pkg, err = client.GetPackageDetail("00000000-0000-4000-8000-000000000000")
	require.NotNil(t, err)
	assert.Nil(t, pkg)
	assert.Equal(t, network.ErrNotFound, errors.Cause(err))
}

func TestGetPackageDetailNullLocation(t *testing.T) {
	pkg := testutil.MakeStoragePackage(0)
	pkg.CurrentLocation = ""
	ss := testutil.NewStorageServiceServer("test", "test", pkg)
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, _ := getClient(t, testServer.URL, "test", "test")
	detail, err := client.GetPackageDetail(pkg.UUID)
	require.Nil(t, err)
	assert.Equal(t, "", detail.CurrentLocation)
	assert.NotNil(t, detail.Replicas)
}

func TestExtractMETS(t *testing.T) {
	pkg := testutil.MakeStoragePackage(1)
	mets := testutil.MakeMETS(pkg.UUID)
	ss := testutil.NewStorageServiceServer("test", "test", pkg)
	ss.METS[pkg.UUID] = mets
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, fs := getClient(t, testServer.URL, "test", "test")
	require.Nil(t, fs.MkdirAll(outputDir, 0755))
	require.Nil(t, client.ExtractMETS(pkg.UUID, outputDir))

	data, err := afero.ReadFile(fs, outputDir+"/METS."+pkg.UUID+".xml")
	require.Nil(t, err)
	assert.Equal(t, mets, data)

	// Detail first, then the file itself, from inside the
	// AIP's top-level directory.
	require.Equal(t, 2, ss.RequestCount())
	extractUrl, err := url.Parse(ss.Requests[1])
	require.Nil(t, err)
	assert.Equal(t, "/api/v2/file/"+pkg.UUID+"/extract_file/", extractUrl.Path)
	relPath := extractUrl.Query().Get("relative_path_to_file")
	assert.True(t, strings.HasSuffix(relPath, "-"+pkg.UUID+"/data/METS."+pkg.UUID+".xml"))
	assert.False(t, strings.Contains(relPath, ".7z"))

	// No temp files left behind.
	entries, err := afero.ReadDir(fs, outputDir)
	require.Nil(t, err)
	assert.Equal(t, 1, len(entries))
}

func TestExtractMETSMissingFile(t *testing.T) {
	pkg := testutil.MakeStoragePackage(0)
	ss := testutil.NewStorageServiceServer("test", "test", pkg)
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, fs := getClient(t, testServer.URL, "test", "test")
	require.Nil(t, fs.MkdirAll(outputDir, 0755))

	// The Storage Service has no METS for this package. That's
	// not an error here, but nothing gets written.
	assert.Nil(t, client.ExtractMETS(pkg.UUID, outputDir))
	exists, err := afero.Exists(fs, outputDir+"/METS."+pkg.UUID+".xml")
	require.Nil(t, err)
	assert.False(t, exists)
}

func TestExtractMETSUnknownPackage(t *testing.T) {
	ss := testutil.NewStorageServiceServer("test", "test")
	testServer := httptest.NewServer(ss)
	defer testServer.Close()

	client, _ := getClient(t, testServer.URL, "test", "test")
	err := client.ExtractMETS("00000000-0000-4000-8000-000000000000", outputDir)
	require.NotNil(t, err)
	assert.Equal(t, network.ErrNotFound, errors.Cause(err))
}

func TestExtractMETSServerError(t *testing.T) {
	pkg := testutil.MakeStoragePackage(0)
	ss := testutil.NewStorageServiceServer("test", "test", pkg)
	ss.METS[pkg.UUID] = testutil.MakeMETS(pkg.UUID)
	testServer := httptest.NewServer(ss)
	client, _ := getClient(t, testServer.URL, "test", "test")
	testServer.Close()

	err := client.ExtractMETS(pkg.UUID, outputDir)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Error contacting Storage Service")
}
