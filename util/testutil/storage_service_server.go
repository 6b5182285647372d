package testutil

import (
	"encoding/json"
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/models"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// StorageServiceServer is an http.Handler that answers the subset
// of the Storage Service API that the retriever uses. Serve it with
// httptest.NewServer.
type StorageServiceServer struct {
	APIUser  string
	APIKey   string
	PageSize int

	// Listed packages appear in the package list. Unlisted packages
	// can only be fetched by UUID.
	Listed   []*models.StoragePackage
	Unlisted []*models.StoragePackage

	// METS maps package UUIDs to METS content. extract_file returns
	// 404 for packages not in this map.
	METS map[string][]byte

	// Requests records the URI of every request received.
	Requests []string
	mutex    sync.Mutex
}

func NewStorageServiceServer(apiUser, apiKey string, listed ...*models.StoragePackage) *StorageServiceServer {
	return &StorageServiceServer{
		APIUser:  apiUser,
		APIKey:   apiKey,
		PageSize: 20,
		Listed:   listed,
		Unlisted: make([]*models.StoragePackage, 0),
		METS:     make(map[string][]byte),
		Requests: make([]string, 0),
	}
}

// RequestCount returns the number of requests received so far.
func (server *StorageServiceServer) RequestCount() int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return len(server.Requests)
}

func (server *StorageServiceServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	server.mutex.Lock()
	server.Requests = append(server.Requests, r.URL.RequestURI())
	server.mutex.Unlock()

	expectedAuth := fmt.Sprintf("ApiKey %s:%s", server.APIUser, server.APIKey)
	if r.Header.Get("Authorization") != expectedAuth {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}
	if !strings.HasPrefix(r.URL.Path, constants.APIFilePrefix) {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, constants.APIFilePrefix), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "":
		server.servePackageList(w, r)
	case len(parts) == 1:
		server.servePackageDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1]+"/" == constants.APIExtractFileSuffix:
		server.serveExtractFile(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (server *StorageServiceServer) servePackageList(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = server.PageSize
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	end := offset + limit
	if end > len(server.Listed) {
		end = len(server.Listed)
	}
	objects := make([]map[string]interface{}, 0)
	if offset < end {
		for _, pkg := range server.Listed[offset:end] {
			objects = append(objects, PackageJsonMap(pkg))
		}
	}
	var next interface{}
	if end < len(server.Listed) {
		next = fmt.Sprintf("%s?limit=%d&offset=%d&package_type=%s",
			constants.APIFilePrefix, limit, end, constants.PackageTypeAIP)
	}
	data := map[string]interface{}{
		"meta": map[string]interface{}{
			"limit":       limit,
			"next":        next,
			"offset":      offset,
			"previous":    nil,
			"total_count": len(server.Listed),
		},
		"objects": objects,
	}
	writeJson(w, data)
}

func (server *StorageServiceServer) servePackageDetail(w http.ResponseWriter, r *http.Request, uuid string) {
	pkg := server.find(uuid)
	if pkg == nil {
		http.NotFound(w, r)
		return
	}
	writeJson(w, PackageJsonMap(pkg))
}

func (server *StorageServiceServer) serveExtractFile(w http.ResponseWriter, r *http.Request, uuid string) {
	pkg := server.find(uuid)
	mets, hasMets := server.METS[uuid]
	if pkg == nil || !hasMets ||
		r.URL.Query().Get("relative_path_to_file") != pkg.METSRelativePath() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write(mets)
}

func (server *StorageServiceServer) find(uuid string) *models.StoragePackage {
	for _, list := range [][]*models.StoragePackage{server.Listed, server.Unlisted} {
		for _, pkg := range list {
			if pkg.UUID == uuid {
				return pkg
			}
		}
	}
	return nil
}

// PackageJsonMap returns pkg the way the Storage Service serializes
// it, with null for empty references.
func PackageJsonMap(pkg *models.StoragePackage) map[string]interface{} {
	data := map[string]interface{}{
		"uuid":               pkg.UUID,
		"status":             pkg.Status,
		"package_type":       pkg.PackageType,
		"current_path":       pkg.CurrentPath,
		"current_location":   nil,
		"replicated_package": nil,
		"replicas":           pkg.Replicas,
		"resource_uri":       PackageURI(pkg.UUID),
		"size":               pkg.Size,
		"encrypted":          false,
		"misc_attributes":    map[string]interface{}{},
		"related_packages":   []string{},
	}
	if pkg.Replicas == nil {
		data["replicas"] = []string{}
	}
	if pkg.CurrentLocation != "" {
		data["current_location"] = pkg.CurrentLocation
	}
	if pkg.ReplicatedPackage != "" {
		data["replicated_package"] = pkg.ReplicatedPackage
	}
	return data
}

func writeJson(w http.ResponseWriter, data interface{}) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonBytes)
}
