package network

import (
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/util/fileutil"
	"github.com/antonholmquist/jason"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("Storage Service resource not found")
	ErrNotAuthorized      = errors.New("Storage Service rejected our credentials")
	ErrUnexpectedResponse = errors.New("Unexpected response from Storage Service")
)

// StorageService is what the retriever needs from the Archivematica
// Storage Service. StorageServiceClient talks to the real thing.
// Tests substitute their own implementation.
type StorageService interface {
	// ListPackages returns a summary of every AIP the Storage
	// Service knows about, in the order the service lists them.
	ListPackages() ([]*models.StoragePackage, error)

	// GetPackageDetail returns the detail record for one package.
	GetPackageDetail(uuid string) (*models.StoragePackage, error)

	// ExtractMETS copies the package's METS file into targetDir
	// as METS.<uuid>.xml.
	ExtractMETS(uuid, targetDir string) error
}

// StorageServiceClient is an HTTP client for version 2 of the
// Storage Service REST API.
type StorageServiceClient struct {
	baseURL    *url.URL
	apiUser    string
	apiKey     string
	httpClient *http.Client
	fs         afero.Fs
	logger     *logging.Logger
}

var _ StorageService = &StorageServiceClient{}

// NewStorageServiceClient returns a new client. Param hostUrl is the
// base URL of the Storage Service, like http://127.0.0.1:62081.
// METS files are written to fs.
func NewStorageServiceClient(hostUrl, apiUser, apiKey string, timeout time.Duration, fs afero.Fs, logger *logging.Logger) (*StorageServiceClient, error) {
	baseURL, err := url.Parse(strings.TrimRight(hostUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("Invalid Storage Service URL '%s': %v", hostUrl, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("Invalid Storage Service URL '%s': scheme and host are required", hostUrl)
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 8,
		DisableKeepAlives:   false,
	}
	httpClient := &http.Client{Transport: transport, Timeout: timeout}
	return &StorageServiceClient{
		baseURL:    baseURL,
		apiUser:    apiUser,
		apiKey:     apiKey,
		httpClient: httpClient,
		fs:         fs,
		logger:     logger,
	}, nil
}

// BuildURL returns the absolute URL for relativeUrl. Absolute URLs
// are returned unchanged.
func (client *StorageServiceClient) BuildURL(relativeUrl string) string {
	ref, err := url.Parse(relativeUrl)
	if err != nil {
		return client.baseURL.String() + relativeUrl
	}
	return client.baseURL.ResolveReference(ref).String()
}

// ListPackages returns all AIPs, following the Storage Service's
// pagination until there are no more pages.
func (client *StorageServiceClient) ListPackages() ([]*models.StoragePackage, error) {
	packages := make([]*models.StoragePackage, 0)
	params := url.Values{}
	params.Set("package_type", constants.PackageTypeAIP)
	nextUrl := client.BuildURL(constants.APIFilePrefix + "?" + params.Encode())
	for nextUrl != "" {
		obj, err := client.getJson(nextUrl)
		if err != nil {
			return nil, err
		}
		objects, err := obj.GetObjectArray("objects")
		if err != nil {
			return nil, errors.Wrapf(ErrUnexpectedResponse,
				"Package list from %s has no objects array", nextUrl)
		}
		for _, pkgObj := range objects {
			pkg, err := packageFromJson(pkgObj)
			if err != nil {
				return nil, errors.Wrapf(err, "In package list from %s", nextUrl)
			}
			packages = append(packages, pkg)
		}
		nextUrl = ""
		if obj.GetNull("meta", "next") != nil {
			if next, err := obj.GetString("meta", "next"); err == nil && next != "" {
				nextUrl = client.BuildURL(next)
			}
		}
	}
	client.logger.Debugf("Storage Service listed %d AIPs", len(packages))
	return packages, nil
}

// GetPackageDetail returns the package with the specified UUID.
// Returns an error with cause ErrNotFound if there is no such package.
func (client *StorageServiceClient) GetPackageDetail(uuid string) (*models.StoragePackage, error) {
	obj, err := client.getJson(client.packageURL(uuid))
	if err != nil {
		return nil, err
	}
	return packageFromJson(obj)
}

// ExtractMETS asks the Storage Service to pull the METS file out of
// the stored AIP and writes it to targetDir. If the Storage Service
// says the file does not exist, ExtractMETS logs a warning and writes
// nothing. Callers should check for the file afterward.
func (client *StorageServiceClient) ExtractMETS(uuid, targetDir string) error {
	pkg, err := client.GetPackageDetail(uuid)
	if err != nil {
		return err
	}
	params := url.Values{}
	params.Set("relative_path_to_file", pkg.METSRelativePath())
	extractUrl := client.packageURL(uuid) + constants.APIExtractFileSuffix + "?" + params.Encode()
	resp, err := client.doGet(extractUrl)
	if errors.Cause(err) == ErrNotFound {
		client.logger.Warningf("Storage Service has no %s in AIP %s",
			pkg.METSRelativePath(), uuid)
		return nil
	} else if err != nil {
		return err
	}
	defer resp.Body.Close()
	metsPath := filepath.Join(targetDir, pkg.METSFileName())
	bytesWritten, err := fileutil.WriteFileAtomic(client.fs, metsPath, resp.Body)
	if err != nil {
		return err
	}
	client.logger.Debugf("Wrote %d bytes to %s", bytesWritten, metsPath)
	return nil
}

func (client *StorageServiceClient) packageURL(uuid string) string {
	return client.BuildURL(constants.APIFilePrefix + url.PathEscape(uuid) + "/")
}

func (client *StorageServiceClient) getJson(absUrl string) (*jason.Object, error) {
	resp, err := client.doGet(absUrl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	obj, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrUnexpectedResponse,
			"Cannot parse JSON from %s: %v", absUrl, err)
	}
	return obj, nil
}

// doGet sends an authenticated GET request. On success, the caller
// must close the response body. Error responses are closed here and
// mapped to ErrNotFound, ErrNotAuthorized or ErrUnexpectedResponse.
func (client *StorageServiceClient) doGet(absUrl string) (*http.Response, error) {
	request, err := http.NewRequest("GET", absUrl, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization",
		fmt.Sprintf("ApiKey %s:%s", client.apiUser, client.apiKey))
	client.logger.Debugf("GET %s", absUrl)
	resp, err := client.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "Error contacting Storage Service at %s", absUrl)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	// Read the body so the connection can be reused.
	body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1024))
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, errors.Wrapf(ErrNotFound, "GET %s", absUrl)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Wrapf(ErrNotAuthorized,
			"GET %s returned %d for user '%s'", absUrl, resp.StatusCode, client.apiUser)
	}
	return nil, errors.Wrapf(ErrUnexpectedResponse,
		"GET %s returned %d: %s", absUrl, resp.StatusCode, strings.TrimSpace(string(body)))
}

// packageFromJson converts one Storage Service package record.
// null values become empty strings and lists.
func packageFromJson(obj *jason.Object) (*models.StoragePackage, error) {
	uuid, err := obj.GetString("uuid")
	if err != nil || uuid == "" {
		return nil, errors.Wrap(ErrUnexpectedResponse, "Package record has no uuid")
	}
	pkg := &models.StoragePackage{UUID: uuid}
	pkg.Status, _ = obj.GetString("status")
	pkg.PackageType, _ = obj.GetString("package_type")
	pkg.ReplicatedPackage, _ = obj.GetString("replicated_package")
	pkg.CurrentLocation, _ = obj.GetString("current_location")
	pkg.CurrentPath, _ = obj.GetString("current_path")
	pkg.Size, _ = obj.GetInt64("size")
	pkg.Replicas, _ = obj.GetStringArray("replicas")
	if pkg.Replicas == nil {
		pkg.Replicas = make([]string, 0)
	}
	return pkg, nil
}
