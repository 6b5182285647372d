package fileutil

import (
	"fmt"
	"github.com/spf13/afero"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Returns true if the file at path exists, false if not.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

// IsRegularFile returns true if path exists on fs and is not a
// directory. This is how we verify that a METS file actually landed
// where the Storage Service client said it would.
func IsRegularFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Expands the tilde in a directory path to the current
// user's home directory. For example, on Linux, ~/data
// would expand to something like /home/josie/data
func ExpandTilde(filePath string) (string, error) {
	if strings.Index(filePath, "~") < 0 {
		return filePath, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	homeDir := usr.HomeDir + "/"
	expandedDir := strings.Replace(filePath, "~/", homeDir, 1)
	return expandedDir, nil
}

// ExecutableDir returns the absolute path of the directory that
// contains the running program. The default ledger lives here, so
// every run of an installed retrieve_mets shares one ledger.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// WriteFileAtomic copies everything from reader into a temp file
// next to path, then renames the temp file to path. The file ends up
// with mode 0644, so other tools can read it. If anything goes
// wrong, the temp file is removed and nothing exists at path that
// wasn't there before. Returns the number of bytes written.
func WriteFileAtomic(fs afero.Fs, path string, reader io.Reader) (int64, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tempFile, err := afero.TempFile(fs, dir, "."+name+".")
	if err != nil {
		return 0, fmt.Errorf("Cannot create temp file for %s: %v", path, err)
	}
	tempName := tempFile.Name()
	bytesWritten, err := io.Copy(tempFile, reader)
	if err == nil {
		err = tempFile.Sync()
	}
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = fs.Chmod(tempName, 0644)
	}
	if err == nil {
		err = fs.Rename(tempName, path)
	}
	if err != nil {
		_ = fs.Remove(tempName)
		return 0, fmt.Errorf("Cannot write %s: %v", path, err)
	}
	return bytesWritten, nil
}
