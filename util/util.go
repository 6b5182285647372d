package util

import (
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/satori/go.uuid"
	"path"
	"regexp"
	"strings"
)

var reUUID *regexp.Regexp = regexp.MustCompile(`(?i)^([a-f\d]{8}(-[a-f\d]{4}){3}-[a-f\d]{12}?)$`)

// Returns true if url looks like a URL.
func LooksLikeURL(url string) bool {
	reUrl := regexp.MustCompile(`^(https?:\/\/)?([\da-z\.-]+)(:\d+)?([\/\w \.-]*)*\/?$`)
	return reUrl.Match([]byte(url))
}

// LooksLikeUUID returns true if uuid is in canonical hyphenated
// form. uuid.FromString also accepts braced and urn-prefixed forms,
// which the Storage Service never produces, so we check the shape first.
func LooksLikeUUID(id string) bool {
	if !reUUID.MatchString(id) {
		return false
	}
	_, err := uuid.FromString(id)
	return err == nil
}

// PackageUUIDFromURI returns the package UUID from a Storage Service
// resource URI like "/api/v2/file/<uuid>/". Anything that is not such
// a URI is returned with only surrounding slashes removed.
func PackageUUIDFromURI(uri string) string {
	return strings.Trim(strings.Replace(uri, constants.APIFilePrefix, "", 1), "/")
}

// PackageDirName returns the name of an AIP's top-level directory,
// given the package's current_path. Compressed AIPs are stored as
// e.g. "transfer-8c09cd9f-....7z", but unpack to a directory without
// the extension.
func PackageDirName(currentPath string) string {
	name := path.Base(strings.TrimRight(currentPath, "/"))
	for _, ext := range constants.CompressedPackageExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// METSFileName returns the name of the METS file for the AIP
// with the specified UUID.
func METSFileName(packageUUID string) string {
	return fmt.Sprintf("METS.%s.xml", packageUUID)
}

// SidecarFileName returns the name of the sidecar file we write
// next to the METS file for the AIP with the specified UUID.
func SidecarFileName(packageUUID string) string {
	return fmt.Sprintf("METS.%s.txt", packageUUID)
}

// Returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}
