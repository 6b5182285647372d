package logger

import (
	"fmt"
	"github.com/APTrust/mets-retriever/models"
	"github.com/op/go-logging"
	"io"
	"io/ioutil"
	stdlog "log"
	"os"
	"path"
	"path/filepath"
)

/*
InitLogger creates and returns a logger suitable for logging
human-readable message. If config.LogDirectory is empty, messages
go to STDOUT only. Otherwise they go to <LogDirectory>/<process>.log,
and also to STDERR if config.LogToStderr is true. Returns the logger
and the path to the log file, which is empty when logging to STDOUT.
*/
func InitLogger(config *models.Config) (*logging.Logger, string) {
	processName := path.Base(os.Args[0])
	log := logging.MustGetLogger(processName)
	format := logging.MustStringFormatter("%{time:2006-01-02 15:04:05} - %{level} - %{message}")
	logging.SetFormatter(format)

	if config.LogDirectory == "" {
		stdoutBackend := logging.NewLogBackend(os.Stdout, "", 0)
		logging.SetBackend(stdoutBackend)
		logging.SetLevel(config.LogLevel, processName)
		return log, ""
	}

	filename := filepath.Join(config.AbsLogDirectory(), fmt.Sprintf("%s.log", processName))
	writer := openLogFile(config, filename)
	logBackend := logging.NewLogBackend(writer, "", 0)
	if config.LogToStderr {
		// Log to BOTH file and stderr
		stderrBackend := logging.NewLogBackend(os.Stderr, "", 0)
		stderrBackend.Color = true
		logging.SetBackend(logBackend, stderrBackend)
	} else {
		// Log to file only
		logging.SetBackend(logBackend)
	}
	logging.SetLevel(config.LogLevel, processName)
	return log, filename
}

/*
InitJsonLogger creates and returns a logger suitable for logging JSON
data. Each line of the JSON log is a single RetrievalResult, with no
extraneous data, so these files are easy to parse. If config.LogDirectory
is empty, the JSON log is discarded.
*/
func InitJsonLogger(config *models.Config) (*stdlog.Logger, string) {
	if config.LogDirectory == "" {
		return stdlog.New(ioutil.Discard, "", 0), ""
	}
	processName := path.Base(os.Args[0])
	filename := filepath.Join(config.AbsLogDirectory(), fmt.Sprintf("%s.json", processName))
	writer := openLogFile(config, filename)
	return stdlog.New(writer, "", 0), filename
}

/*
Discard logger returns a logger that writes to dev/null.
Suitable for use in testing.
*/
func DiscardLogger(module string) *logging.Logger {
	log := logging.MustGetLogger(module)
	devnull := logging.NewLogBackend(ioutil.Discard, "", 0)
	logging.SetBackend(devnull)
	logging.SetLevel(logging.INFO, module)
	return log
}

func openLogFile(config *models.Config, filename string) io.Writer {
	// If this fails, OpenFile will fail in just a second
	_ = os.MkdirAll(config.AbsLogDirectory(), 0755)
	writer, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", filename, err)
		os.Exit(1)
	}
	return writer
}
