package context

import (
	"fmt"
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/network"
	"github.com/APTrust/mets-retriever/util/logger"
	"github.com/APTrust/mets-retriever/util/storage"
	"github.com/op/go-logging"
	"github.com/spf13/afero"
	stdlog "log"
)

/*
Context holds the items the METS retriever needs for one run:
config, loggers, the Storage Service client, the filesystem we
write METS files to and, for batch runs, the ledger.

Context is meant to be used as a singleton within the
retrieve_mets process.
*/
type Context struct {
	Config         *models.Config
	MessageLog     *logging.Logger
	JsonLog        *stdlog.Logger
	StorageService network.StorageService
	Fs             afero.Fs

	// Ledger is nil until OpenLedger is called. Single-package
	// retrieval never opens it.
	Ledger storage.Ledger

	// NSQClient is nil unless config.NsqdHttpAddress is set.
	NSQClient *network.NSQClient

	pathToLogFile string
	pathToJsonLog string
	ledgerPath    string
}

/*
Creates and returns a new Context object. Returns an error if
the Storage Service client can't be created from the config.
*/
func NewContext(config *models.Config) (*Context, error) {
	context := &Context{
		Config: config,
		Fs:     afero.NewOsFs(),
	}
	context.MessageLog, context.pathToLogFile = logger.InitLogger(config)
	context.JsonLog, context.pathToJsonLog = logger.InitJsonLogger(config)
	if config.NsqdHttpAddress != "" {
		context.NSQClient = network.NewNSQClient(config.NsqdHttpAddress)
	}
	client, err := network.NewStorageServiceClient(
		config.StorageServiceURL,
		config.StorageServiceUser,
		config.StorageServiceAPIKey,
		config.HTTPTimeout(),
		context.Fs,
		context.MessageLog)
	if err != nil {
		return nil, fmt.Errorf("Cannot initialize Storage Service client: %v", err)
	}
	context.StorageService = client
	return context, nil
}

// OpenLedger opens the ledger described by the config. Calling it
// again after it succeeds does nothing.
func (context *Context) OpenLedger() error {
	if context.Ledger != nil {
		return nil
	}
	ledgerPath, err := context.Config.LedgerPath()
	if err != nil {
		return err
	}
	ledger, err := storage.OpenLedger(context.Config.LedgerBackend, ledgerPath)
	if err != nil {
		return err
	}
	context.Ledger = ledger
	context.ledgerPath = ledgerPath
	context.MessageLog.Debugf("Opened %s ledger at %s", context.Config.LedgerBackend, ledgerPath)
	return nil
}

// Close releases the ledger, if it's open.
func (context *Context) Close() error {
	if context.Ledger == nil {
		return nil
	}
	err := context.Ledger.Close()
	context.Ledger = nil
	return err
}

// NewMirrorUpload returns an S3 upload to the configured mirror
// bucket, or nil if no mirror bucket is configured.
func (context *Context) NewMirrorUpload(fileName, contentType string) *network.S3Upload {
	if context.Config.MirrorBucket == "" {
		return nil
	}
	upload := network.NewS3Upload(
		context.Config.MirrorRegion,
		context.Config.MirrorBucket,
		context.Config.MirrorPrefix+fileName,
		contentType)
	upload.Endpoint = context.Config.MirrorEndpoint
	return upload
}

// Returns the path to this process' log file
func (context *Context) PathToLogFile() string {
	return context.pathToLogFile
}

// Returns the path to this process' JSON log file
func (context *Context) PathToJsonLog() string {
	return context.pathToJsonLog
}

// Returns the location of the ledger, once it's open.
func (context *Context) LedgerPath() string {
	return context.ledgerPath
}
