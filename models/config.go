package models

import (
	"encoding/json"
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/util"
	"github.com/APTrust/mets-retriever/util/fileutil"
	"github.com/op/go-logging"
	"io/ioutil"
	"path/filepath"
	"time"
)

type Config struct {
	// ActiveConfig is the path to the config file currently
	// in use. This is empty if we're running on defaults.
	ActiveConfig string

	// StorageServiceURL is the base URL of the Archivematica
	// Storage Service, without the /api/v2 part. E.g.
	// http://127.0.0.1:62081
	StorageServiceURL string

	// StorageServiceUser is the Storage Service user whose
	// API key we're sending.
	StorageServiceUser string

	// StorageServiceAPIKey is the API key for StorageServiceUser.
	// You probably want to set this in the environment as
	// SS_API_KEY rather than in the config file.
	StorageServiceAPIKey string

	// StorageServiceTimeout is how long we'll wait on any single
	// request to the Storage Service. Format is the same as
	// time.ParseDuration: "90s", "10m", etc. METS files for very
	// large AIPs can take a while to extract from compressed
	// packages, so don't set this too low.
	StorageServiceTimeout string

	// OutputDirectory is where we write METS files and sidecar
	// files. It will be created if it does not exist.
	OutputDirectory string

	// LedgerBackend is one of "bolt", "ql" or "mysql". Defaults
	// to bolt.
	LedgerBackend string

	// LedgerLocation is the path to the ledger file for the bolt
	// and ql backends, or the DSN for the mysql backend. For the
	// file backends, this defaults to mets.db in the directory
	// that contains the retrieve_mets executable.
	LedgerLocation string

	// LogDirectory is where we'll write our log files. If empty,
	// we log to STDOUT and discard the JSON log.
	LogDirectory string

	// LogLevel is defined in github.com/op/go-logging
	// and should be one of the following:
	// 0 - CRITICAL
	// 1 - ERROR
	// 2 - WARNING
	// 3 - NOTICE
	// 4 - INFO
	// 5 - DEBUG
	LogLevel logging.Level

	// If true, processes will log to STDERR in addition
	// to their standard log files. Ignored when LogDirectory
	// is empty.
	LogToStderr bool

	// MirrorBucket is an optional S3 bucket. If set, every METS
	// file (and sidecar file) we retrieve is also copied to this
	// bucket. AWS credentials come from the environment.
	MirrorBucket string

	// MirrorRegion is the AWS region of MirrorBucket.
	MirrorRegion string

	// MirrorPrefix is prepended to the S3 key of each mirrored
	// file. E.g. "mets/" gives keys like mets/METS.<uuid>.xml
	MirrorPrefix string

	// MirrorEndpoint is optional. Set it to the URL of an
	// S3-compatible service, such as a local minio server, to
	// mirror there instead of to AWS.
	MirrorEndpoint string

	// NsqdHttpAddress is the optional address of an nsqd HTTP
	// endpoint, usually ending in :4151. If set, we publish a JSON
	// RetrievalResult to NsqTopic after each retrieval, so other
	// services can pick up new METS files.
	NsqdHttpAddress string

	// NsqTopic is the topic for retrieval notices.
	NsqTopic string
}

// NewConfig returns a Config with all default settings.
func NewConfig() *Config {
	return &Config{
		StorageServiceURL:     constants.DefaultStorageServiceURL,
		StorageServiceUser:    constants.DefaultStorageServiceUser,
		StorageServiceAPIKey:  constants.DefaultStorageServiceAPIKey,
		StorageServiceTimeout: "10m",
		OutputDirectory:       constants.DefaultOutputDirectory,
		LedgerBackend:         constants.LedgerBolt,
		LogLevel:              logging.INFO,
		MirrorRegion:          constants.AWSVirginia,
		NsqTopic:              constants.DefaultNsqTopic,
	}
}

// This returns the configuration that the user requested,
// which is specified in the -config flag when we run a
// program from the command line. Settings missing from the
// file keep their default values.
func LoadConfigFile(pathToConfigFile string) (*Config, error) {
	file, err := ioutil.ReadFile(pathToConfigFile)
	if err != nil {
		detailedError := fmt.Errorf("Error reading config file '%s': %v\n",
			pathToConfigFile, err)
		return nil, detailedError
	}
	config := NewConfig()
	err = json.Unmarshal(file, config)
	if err != nil {
		detailedError := fmt.Errorf("Error parsing JSON from config file '%s': %v",
			pathToConfigFile, err)
		return nil, detailedError
	}
	config.ActiveConfig = pathToConfigFile
	return config, nil
}

func (config *Config) AbsLogDirectory() string {
	absLogDir, err := filepath.Abs(config.LogDirectory)
	if err != nil {
		msg := fmt.Sprintf("Cannot get absolute path to log directory. "+
			"config.LogDirectory is set to '%s'", config.LogDirectory)
		panic(msg)
	}
	return absLogDir
}

// AbsOutputDirectory returns the absolute path to the directory
// into which we write METS files.
func (config *Config) AbsOutputDirectory() (string, error) {
	return filepath.Abs(config.OutputDirectory)
}

// HTTPTimeout returns StorageServiceTimeout as a duration. Call
// Validate first if you want to know whether the setting is bad.
func (config *Config) HTTPTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.StorageServiceTimeout)
	if err != nil || timeout <= 0 {
		return 10 * time.Minute
	}
	return timeout
}

// LedgerIsFile returns true if the ledger backend keeps its data
// in a local file, as opposed to a database server.
func (config *Config) LedgerIsFile() bool {
	return config.LedgerBackend == "" ||
		config.LedgerBackend == constants.LedgerBolt ||
		config.LedgerBackend == constants.LedgerQL
}

// LedgerPath returns the location of the ledger. For file-based
// backends with no LedgerLocation setting, this is mets.db next to
// the running executable.
func (config *Config) LedgerPath() (string, error) {
	if config.LedgerLocation != "" || !config.LedgerIsFile() {
		return config.LedgerLocation, nil
	}
	dir, err := fileutil.ExecutableDir()
	if err != nil {
		return "", fmt.Errorf("Cannot find default ledger location: %v", err)
	}
	return filepath.Join(dir, constants.DefaultLedgerFileName), nil
}

// Expands ~ in file paths to the user's home directory.
func (config *Config) ExpandFilePaths() {
	expanded, err := fileutil.ExpandTilde(config.OutputDirectory)
	if err == nil {
		config.OutputDirectory = expanded
	}
	expanded, err = fileutil.ExpandTilde(config.LogDirectory)
	if err == nil {
		config.LogDirectory = expanded
	}
	if config.LedgerIsFile() {
		expanded, err = fileutil.ExpandTilde(config.LedgerLocation)
		if err == nil {
			config.LedgerLocation = expanded
		}
	}
}

// Validate returns an error describing the first invalid
// setting it finds, or nil if the config is usable.
func (config *Config) Validate() error {
	if config.StorageServiceURL == "" {
		return fmt.Errorf("StorageServiceURL is missing")
	}
	if !util.LooksLikeURL(config.StorageServiceURL) {
		return fmt.Errorf("StorageServiceURL '%s' is not a valid URL", config.StorageServiceURL)
	}
	if config.OutputDirectory == "" {
		return fmt.Errorf("OutputDirectory is missing")
	}
	if config.LedgerBackend != "" && !util.StringListContains(constants.LedgerBackends, config.LedgerBackend) {
		return fmt.Errorf("LedgerBackend '%s' is not valid. Use one of %v",
			config.LedgerBackend, constants.LedgerBackends)
	}
	if !config.LedgerIsFile() && config.LedgerLocation == "" {
		return fmt.Errorf("LedgerLocation must be set to a DSN for the %s ledger",
			config.LedgerBackend)
	}
	if config.StorageServiceTimeout != "" {
		if _, err := time.ParseDuration(config.StorageServiceTimeout); err != nil {
			return fmt.Errorf("StorageServiceTimeout '%s' is not valid: %v",
				config.StorageServiceTimeout, err)
		}
	}
	if config.MirrorBucket != "" && config.MirrorRegion == "" {
		return fmt.Errorf("MirrorRegion is required when MirrorBucket is set")
	}
	if config.NsqdHttpAddress != "" && config.NsqTopic == "" {
		return fmt.Errorf("NsqTopic is required when NsqdHttpAddress is set")
	}
	return nil
}
