package testutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"github.com/APTrust/mets-retriever/models"
	"io"
	"strings"
)

// FindResultInLog returns the last RetrievalResult for the package
// with the specified UUID in a JSON log. Each line of the log is a
// single RetrievalResult.
func FindResultInLog(jsonLog io.Reader, packageUUID string) (*models.RetrievalResult, error) {
	jsonString := findJsonString(jsonLog, packageUUID)
	if len(jsonString) == 0 {
		return nil, fmt.Errorf("Package %s not found in JSON log", packageUUID)
	}
	result := &models.RetrievalResult{}
	err := json.Unmarshal([]byte(jsonString), result)
	return result, err
}

func findJsonString(jsonLog io.Reader, packageUUID string) string {
	marker := fmt.Sprintf(`"uuid":"%s"`, packageUUID)
	found := ""
	scanner := bufio.NewScanner(jsonLog)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, marker) {
			// Keep the last one, because we only want
			// the most recent result for this package.
			found = line
		}
	}
	return found
}
