package workers

import (
	"fmt"
	"github.com/APTrust/mets-retriever/network"
	"github.com/APTrust/mets-retriever/util"
	"github.com/APTrust/mets-retriever/util/fileutil"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"path/filepath"
	"strings"
)

// SidecarComposer writes the optional METS.<uuid>.txt file that
// sits next to each METS file. The sidecar records where the AIP
// and its replicas are stored, which the METS file doesn't say.
type SidecarComposer struct {
	StorageService network.StorageService
	Fs             afero.Fs
}

func NewSidecarComposer(storageService network.StorageService, fs afero.Fs) *SidecarComposer {
	return &SidecarComposer{
		StorageService: storageService,
		Fs:             fs,
	}
}

// Compose returns the text of the sidecar for the specified package.
// Each replica's storage location is looked up in the Storage Service.
// Replicas that have no current location are left out of the
// locations line.
func (composer *SidecarComposer) Compose(uuid string) (string, error) {
	pkg, err := composer.StorageService.GetPackageDetail(uuid)
	if err != nil {
		return "", err
	}
	replicaLocations := make([]string, 0, len(pkg.Replicas))
	for _, replicaURI := range pkg.Replicas {
		replicaUUID := util.PackageUUIDFromURI(replicaURI)
		replica, err := composer.StorageService.GetPackageDetail(replicaUUID)
		if err != nil {
			return "", errors.Wrapf(err, "Cannot get location of replica %s of %s",
				replicaUUID, uuid)
		}
		if replica.CurrentLocation != "" {
			replicaLocations = append(replicaLocations, replica.CurrentLocation)
		}
	}
	return Render(pkg.CurrentLocation, pkg.Replicas, replicaLocations), nil
}

// Write composes the sidecar for the specified package and writes
// it to dir, replacing any sidecar already there. Returns the path
// of the sidecar file.
func (composer *SidecarComposer) Write(uuid, dir string) (string, error) {
	text, err := composer.Compose(uuid)
	if err != nil {
		return "", err
	}
	sidecarPath := filepath.Join(dir, util.SidecarFileName(uuid))
	_, err = fileutil.WriteFileAtomic(composer.Fs, sidecarPath, strings.NewReader(text))
	if err != nil {
		return "", err
	}
	return sidecarPath, nil
}

// Render returns the sidecar text for a package stored at location,
// with the specified replica references and resolved replica
// locations.
func Render(location string, replicas, replicaLocations []string) string {
	return RenderWithoutReplicaLocations(location, replicas) +
		fmt.Sprintf("AIP replica storage locations: %s\n", strings.Join(replicaLocations, ", "))
}

// RenderWithoutReplicaLocations returns the short form of the
// sidecar, which does not list replica locations.
func RenderWithoutReplicaLocations(location string, replicas []string) string {
	return fmt.Sprintf("Storage location: %s\nAIP replicas: %s\n",
		location, strings.Join(replicas, ", "))
}
