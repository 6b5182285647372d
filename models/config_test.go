package models_test

import (
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/models"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	config := models.NewConfig()
	assert.Equal(t, "http://127.0.0.1:62081", config.StorageServiceURL)
	assert.Equal(t, "test", config.StorageServiceUser)
	assert.Equal(t, "test", config.StorageServiceAPIKey)
	assert.Equal(t, "mets_files", config.OutputDirectory)
	assert.Equal(t, constants.LedgerBolt, config.LedgerBackend)
	assert.Equal(t, logging.INFO, config.LogLevel)
	assert.Nil(t, config.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	configFile := filepath.Join("..", "config", "test.json")
	config, err := models.LoadConfigFile(configFile)
	require.Nil(t, err)

	// Spot check a few settings.
	assert.Equal(t, "http://localhost:62081", config.StorageServiceURL)
	assert.Equal(t, constants.LedgerQL, config.LedgerBackend)
	assert.Equal(t, "memory", config.LedgerLocation)
	assert.Equal(t, logging.WARNING, config.LogLevel)
	assert.Equal(t, "mets_retrieved_test", config.NsqTopic)
	assert.Equal(t, configFile, config.ActiveConfig)
	assert.Equal(t, 90*time.Second, config.HTTPTimeout())

	// Not in the file, so should keep default
	assert.Equal(t, "test", config.StorageServiceAPIKey)
	assert.Nil(t, config.Validate())
}

func TestSampleConfigLogLevels(t *testing.T) {
	expected := map[string]logging.Level{
		"dev.json":        logging.DEBUG,
		"production.json": logging.INFO,
		"test.json":       logging.WARNING,
	}
	for name, level := range expected {
		config, err := models.LoadConfigFile(filepath.Join("..", "config", name))
		require.Nil(t, err, name)
		assert.Equal(t, level, config.LogLevel, name)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := models.LoadConfigFile(filepath.Join("..", "config", "does_not_exist.json"))
	require.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Error reading config file"))

	// This one exists, but isn't JSON.
	_, err = models.LoadConfigFile("config.go")
	require.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Error parsing JSON"))
}

func TestAbsOutputDirectory(t *testing.T) {
	config := models.NewConfig()
	dir, err := config.AbsOutputDirectory()
	require.Nil(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "mets_files", filepath.Base(dir))
}

func TestHTTPTimeout(t *testing.T) {
	config := models.NewConfig()
	assert.Equal(t, 10*time.Minute, config.HTTPTimeout())
	config.StorageServiceTimeout = "45s"
	assert.Equal(t, 45*time.Second, config.HTTPTimeout())
	config.StorageServiceTimeout = "whenever"
	assert.Equal(t, 10*time.Minute, config.HTTPTimeout())
}

func TestLedgerPath(t *testing.T) {
	config := models.NewConfig()
	path, err := config.LedgerPath()
	require.Nil(t, err)
	assert.Equal(t, "mets.db", filepath.Base(path))
	assert.True(t, filepath.IsAbs(path))

	config.LedgerLocation = "/var/lib/mets/ledger.db"
	path, err = config.LedgerPath()
	require.Nil(t, err)
	assert.Equal(t, "/var/lib/mets/ledger.db", path)

	config.LedgerBackend = constants.LedgerMySQL
	config.LedgerLocation = "user:pwd@tcp(localhost:3306)/mets"
	assert.False(t, config.LedgerIsFile())
	path, err = config.LedgerPath()
	require.Nil(t, err)
	assert.Equal(t, "user:pwd@tcp(localhost:3306)/mets", path)
}

func TestExpandFilePaths(t *testing.T) {
	config := models.NewConfig()
	config.OutputDirectory = "~/tmp/mets"
	config.LogDirectory = "~/tmp/log"
	config.LedgerLocation = "~/tmp/mets.db"
	config.ExpandFilePaths()
	assert.False(t, strings.HasPrefix(config.OutputDirectory, "~"))
	assert.False(t, strings.HasPrefix(config.LogDirectory, "~"))
	assert.False(t, strings.HasPrefix(config.LedgerLocation, "~"))
}

func TestValidate(t *testing.T) {
	config := models.NewConfig()
	config.StorageServiceURL = ""
	assert.EqualError(t, config.Validate(), "StorageServiceURL is missing")

	config = models.NewConfig()
	config.StorageServiceURL = "not a url!"
	assert.NotNil(t, config.Validate())

	config = models.NewConfig()
	config.OutputDirectory = ""
	assert.EqualError(t, config.Validate(), "OutputDirectory is missing")

	config = models.NewConfig()
	config.LedgerBackend = "sqlite"
	assert.NotNil(t, config.Validate())

	config = models.NewConfig()
	config.LedgerBackend = constants.LedgerMySQL
	assert.EqualError(t, config.Validate(), "LedgerLocation must be set to a DSN for the mysql ledger")

	config = models.NewConfig()
	config.StorageServiceTimeout = "soon"
	assert.NotNil(t, config.Validate())

	config = models.NewConfig()
	config.MirrorBucket = "mets.mirror"
	config.MirrorRegion = ""
	assert.EqualError(t, config.Validate(), "MirrorRegion is required when MirrorBucket is set")

	config = models.NewConfig()
	config.NsqdHttpAddress = "http://localhost:4151"
	config.NsqTopic = ""
	assert.EqualError(t, config.Validate(), "NsqTopic is required when NsqdHttpAddress is set")
}
