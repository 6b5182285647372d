package workers

import (
	"github.com/APTrust/mets-retriever/models"
)

// SelectEligible returns the packages whose METS files we should
// retrieve: uploaded packages that are not themselves replicas of
// another package. If replicasRequired is true, packages with no
// replicas are dropped as well. Packages come back in the order
// they were passed in. The result is never nil.
func SelectEligible(packages []*models.StoragePackage, replicasRequired bool) []*models.StoragePackage {
	eligible := make([]*models.StoragePackage, 0, len(packages))
	for _, pkg := range packages {
		if pkg == nil || !pkg.IsUploaded() || pkg.IsReplica() {
			continue
		}
		if replicasRequired && !pkg.HasReplicas() {
			continue
		}
		eligible = append(eligible, pkg)
	}
	return eligible
}
