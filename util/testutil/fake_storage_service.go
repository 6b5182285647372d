package testutil

import (
	"bytes"
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/network"
	"github.com/APTrust/mets-retriever/util/fileutil"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"path/filepath"
)

// FakeStorageService is an in-memory network.StorageService. Listed
// packages are returned by ListPackages. Detail lookups also see
// the unlisted packages, which is where replicas usually go.
type FakeStorageService struct {
	Fs       afero.Fs
	Listed   []*models.StoragePackage
	Unlisted []*models.StoragePackage

	// SkipWrite holds UUIDs for which ExtractMETS reports success
	// but writes nothing.
	SkipWrite map[string]bool

	// ListError, if set, is returned by ListPackages.
	ListError error

	// ExtractErrors maps UUIDs to errors returned by ExtractMETS.
	ExtractErrors map[string]error

	// ExtractCalls records the UUID of each ExtractMETS call.
	ExtractCalls []string
}

var _ network.StorageService = &FakeStorageService{}

func NewFakeStorageService(fs afero.Fs, listed ...*models.StoragePackage) *FakeStorageService {
	return &FakeStorageService{
		Fs:            fs,
		Listed:        listed,
		Unlisted:      make([]*models.StoragePackage, 0),
		SkipWrite:     make(map[string]bool),
		ExtractErrors: make(map[string]error),
		ExtractCalls:  make([]string, 0),
	}
}

func (ss *FakeStorageService) ListPackages() ([]*models.StoragePackage, error) {
	if ss.ListError != nil {
		return nil, ss.ListError
	}
	packages := make([]*models.StoragePackage, len(ss.Listed))
	copy(packages, ss.Listed)
	return packages, nil
}

func (ss *FakeStorageService) GetPackageDetail(uuid string) (*models.StoragePackage, error) {
	for _, list := range [][]*models.StoragePackage{ss.Listed, ss.Unlisted} {
		for _, pkg := range list {
			if pkg.UUID == uuid {
				return pkg, nil
			}
		}
	}
	return nil, errors.Wrapf(network.ErrNotFound, "Package %s", uuid)
}

func (ss *FakeStorageService) ExtractMETS(uuid, targetDir string) error {
	ss.ExtractCalls = append(ss.ExtractCalls, uuid)
	if err := ss.ExtractErrors[uuid]; err != nil {
		return err
	}
	pkg, err := ss.GetPackageDetail(uuid)
	if err != nil {
		return err
	}
	if ss.SkipWrite[uuid] {
		return nil
	}
	metsPath := filepath.Join(targetDir, pkg.METSFileName())
	_, err = fileutil.WriteFileAtomic(ss.Fs, metsPath, bytes.NewReader(MakeMETS(uuid)))
	return err
}
