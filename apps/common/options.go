package common

import (
	"flag"
	"fmt"
	"github.com/APTrust/mets-retriever/constants"
	"github.com/APTrust/mets-retriever/models"
	"github.com/APTrust/mets-retriever/util"
	"github.com/APTrust/mets-retriever/util/fileutil"
	"github.com/joho/godotenv"
	"io/ioutil"
	"os"
	"strings"
)

const (
	CommandFetchAll = "fetch-all"
	CommandFetchOne = "fetch-one"
	DefaultEnvFile  = ".env"
	FromCommandLine = "command line"
	FromDefault     = "default"
)

// Options holds what the user asked retrieve_mets to do. Settings
// come from the command line, the environment, a .env file and an
// optional JSON config file, in that order of preference.
type Options struct {
	// Command is fetch-all or fetch-one.
	Command string
	// PackageUUID is the package to fetch. fetch-one only.
	PackageUUID string
	// PathToConfigFile is the optional path to a JSON config file.
	// See config/dev.json for an example.
	PathToConfigFile string
	// PathToEnvFile is a file of KEY=value lines to load into the
	// environment. If empty, we load .env from the current directory,
	// if there is one. Variables already set in the environment win.
	PathToEnvFile string
	// StorageServiceURL is the base URL of the Storage Service.
	StorageServiceURL string
	// StorageServiceURLFrom says where StorageServiceURL came from.
	// This is used only for testing and debugging.
	StorageServiceURLFrom string
	// StorageServiceUser is the Storage Service user name.
	StorageServiceUser string
	// StorageServiceUserFrom says where StorageServiceUser came from.
	StorageServiceUserFrom string
	// StorageServiceAPIKey is the API key for StorageServiceUser.
	StorageServiceAPIKey string
	// StorageServiceAPIKeyFrom says where StorageServiceAPIKey came from.
	StorageServiceAPIKeyFrom string
	// OutputDirectory is where METS files go.
	OutputDirectory string
	// LedgerLocation overrides the ledger location in the config.
	LedgerLocation string
	// Sidecar says whether to write a sidecar file next to each
	// METS file.
	Sidecar bool
	// WithReplicasOnly limits fetch-all to packages that have at
	// least one replica.
	WithReplicasOnly bool
	// ShowHelp and ShowVersion mean we should print something
	// and exit without doing any work.
	ShowHelp    bool
	ShowVersion bool
	// Config is the merged configuration, which is available after
	// calling SetAndVerifyOptions.
	Config *models.Config
	// errors contains a list of errors describing why these options
	// are not valid.
	errors []string
}

// ParseCommandLine parses the command-line args, not including the
// program name. Parse errors are recorded in the returned Options.
// Check opts.HasErrors().
func ParseCommandLine(args []string) *Options {
	opts := &Options{}
	opts.ClearErrors()
	if len(args) == 0 {
		opts.addError("Please specify a command: fetch-all or fetch-one")
		return opts
	}
	switch args[0] {
	case "-help", "--help", "-h", "help":
		opts.ShowHelp = true
		return opts
	case "-version", "--version":
		opts.ShowVersion = true
		return opts
	case CommandFetchAll, CommandFetchOne:
		opts.Command = args[0]
	default:
		opts.addError(fmt.Sprintf("Unknown command '%s'. Use fetch-all or fetch-one.", args[0]))
		return opts
	}

	flags := flag.NewFlagSet(opts.Command, flag.ContinueOnError)
	flags.SetOutput(ioutil.Discard)
	flags.StringVar(&opts.StorageServiceURL, "ss-url", "", "Storage Service URL")
	flags.StringVar(&opts.StorageServiceAPIKey, "ss-api-key", "", "Storage Service API key")
	flags.StringVar(&opts.StorageServiceUser, "ss-user-name", "", "Storage Service user name")
	flags.StringVar(&opts.OutputDirectory, "output-dir", "", "Directory for METS files")
	flags.BoolVar(&opts.Sidecar, "sidecar", false, "Write a sidecar file for each METS file")
	flags.StringVar(&opts.PathToConfigFile, "config", "", "Path to JSON config file")
	flags.StringVar(&opts.PathToEnvFile, "env-file", "", "Path to .env file")
	flags.BoolVar(&opts.ShowHelp, "help", false, "Show help")
	flags.BoolVar(&opts.ShowVersion, "version", false, "Show version")
	if opts.Command == CommandFetchAll {
		flags.StringVar(&opts.LedgerLocation, "ledger", "", "Ledger file or DSN")
		flags.BoolVar(&opts.WithReplicasOnly, "with-replicas-only", false,
			"Fetch only packages that have replicas")
	}

	// Go's flag package stops at the first positional arg, so
	// keep parsing after each one.
	positional := make([]string, 0)
	remaining := args[1:]
	for {
		if err := flags.Parse(remaining); err != nil {
			opts.addError(fmt.Sprintf("%s: %v", opts.Command, err))
			return opts
		}
		if flags.NArg() == 0 {
			break
		}
		positional = append(positional, flags.Arg(0))
		remaining = flags.Args()[1:]
	}
	if opts.ShowHelp || opts.ShowVersion {
		return opts
	}

	if opts.Command == CommandFetchOne {
		if len(positional) != 1 {
			opts.addError("fetch-one requires exactly one package UUID")
		} else {
			opts.PackageUUID = positional[0]
		}
	} else if len(positional) > 0 {
		opts.addError(fmt.Sprintf("fetch-all does not take arguments: %s",
			strings.Join(positional, " ")))
	}
	for _, name := range []string{"ss-url", "ss-api-key", "ss-user-name"} {
		if f := flags.Lookup(name); f != nil && f.Value.String() != "" {
			opts.setFrom(name, FromCommandLine)
		}
	}
	return opts
}

// SetAndVerifyOptions fills in options that were not supplied on
// the command line from the environment and the config file, builds
// opts.Config and verifies that everything required is present.
// Check opts.HasErrors() after calling this.
func (opts *Options) SetAndVerifyOptions() {
	opts.LoadEnvFile()
	config := opts.LoadConfig()
	if config == nil {
		return
	}
	opts.MergeEnvAndConfigOptions(config)
	opts.Config = config
	opts.VerifyPackageUUID()
	if err := config.Validate(); err != nil {
		opts.addError(err.Error())
	}
}

// LoadEnvFile loads environment settings from the .env file, if
// there is one. A .env file that the user named explicitly must exist.
func (opts *Options) LoadEnvFile() {
	envFile := opts.PathToEnvFile
	if envFile == "" {
		if !fileutil.FileExists(DefaultEnvFile) {
			return
		}
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		opts.addError(fmt.Sprintf("Cannot load environment file %s: %v", envFile, err))
	}
}

// LoadConfig returns the config from opts.PathToConfigFile, or the
// default config if there's no config file. Returns nil if the config
// file can't be loaded.
func (opts *Options) LoadConfig() *models.Config {
	if opts.PathToConfigFile == "" {
		return models.NewConfig()
	}
	configFile, err := fileutil.ExpandTilde(opts.PathToConfigFile)
	if err != nil {
		configFile = opts.PathToConfigFile
	}
	config, err := models.LoadConfigFile(configFile)
	if err != nil {
		opts.addError(strings.TrimSpace(err.Error()))
		return nil
	}
	return config
}

// MergeEnvAndConfigOptions fills in the Storage Service settings
// missing from the command line, first from the environment
// (SS_URL, SS_USER_NAME, SS_API_KEY), then from the config. Settings
// from the command line are then copied into config.
func (opts *Options) MergeEnvAndConfigOptions(config *models.Config) {
	configFrom := FromDefault
	if opts.PathToConfigFile != "" {
		configFrom = opts.PathToConfigFile
	}
	if opts.StorageServiceURL == "" {
		opts.StorageServiceURL, opts.StorageServiceURLFrom = fromEnvOrConfig(
			"SS_URL", config.StorageServiceURL, configFrom, constants.DefaultStorageServiceURL)
	}
	if opts.StorageServiceUser == "" {
		opts.StorageServiceUser, opts.StorageServiceUserFrom = fromEnvOrConfig(
			"SS_USER_NAME", config.StorageServiceUser, configFrom, constants.DefaultStorageServiceUser)
	}
	if opts.StorageServiceAPIKey == "" {
		opts.StorageServiceAPIKey, opts.StorageServiceAPIKeyFrom = fromEnvOrConfig(
			"SS_API_KEY", config.StorageServiceAPIKey, configFrom, constants.DefaultStorageServiceAPIKey)
	}
	config.StorageServiceURL = opts.StorageServiceURL
	config.StorageServiceUser = opts.StorageServiceUser
	config.StorageServiceAPIKey = opts.StorageServiceAPIKey
	if opts.OutputDirectory != "" {
		config.OutputDirectory = opts.OutputDirectory
	}
	if opts.LedgerLocation != "" {
		config.LedgerLocation = opts.LedgerLocation
	}
	config.ExpandFilePaths()
	opts.OutputDirectory = config.OutputDirectory
}

// VerifyPackageUUID makes sure fetch-one got a well-formed UUID.
func (opts *Options) VerifyPackageUUID() {
	if opts.Command == CommandFetchOne && !util.LooksLikeUUID(opts.PackageUUID) {
		opts.addError(fmt.Sprintf("'%s' is not a valid package UUID", opts.PackageUUID))
	}
}

func fromEnvOrConfig(envVar, configValue, configFrom, defaultValue string) (string, string) {
	if value := os.Getenv(envVar); value != "" {
		return value, fmt.Sprintf("ENV['%s']", envVar)
	}
	if configValue == defaultValue {
		return configValue, FromDefault
	}
	return configValue, configFrom
}

func (opts *Options) setFrom(flagName, from string) {
	switch flagName {
	case "ss-url":
		opts.StorageServiceURLFrom = from
	case "ss-api-key":
		opts.StorageServiceAPIKeyFrom = from
	case "ss-user-name":
		opts.StorageServiceUserFrom = from
	}
}

// addError adds an error to Options.Errors
func (opts *Options) addError(message string) {
	if opts.errors == nil {
		opts.errors = make([]string, 0)
	}
	opts.errors = append(opts.errors, message)
}

// Returns true of the options have any errors or missing
// required values.
func (opts *Options) HasErrors() bool {
	return opts.errors != nil && len(opts.errors) > 0
}

// AllErrorsAsString returns all errors as a single string,
// with each error ending in a newline. This is suitable
// for printing to STDOUT/STDERR.
func (opts *Options) AllErrorsAsString() string {
	errors := opts.Errors()
	if len(errors) > 0 {
		return strings.Join(errors, "\n")
	}
	return ""
}

// Errors returns a list of errors, such as invalid or
// missing params.
func (opts *Options) Errors() []string {
	if opts.errors == nil {
		opts.ClearErrors()
	}
	return opts.errors
}

// ClearErrors clears all errors. This is used in testing.
func (opts *Options) ClearErrors() {
	opts.errors = make([]string, 0)
}
