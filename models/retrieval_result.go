package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RetrievalResult describes the outcome of retrieving the METS
// file for a single package.
type RetrievalResult struct {
	UUID             string    `json:"uuid"`
	METSPath         string    `json:"mets_path"`
	SidecarPath      string    `json:"sidecar_path,omitempty"`
	MirroredKeys     []string  `json:"mirrored_keys,omitempty"`
	RetrievedAt      time.Time `json:"retrieved_at"`
	RecordedInLedger bool      `json:"recorded_in_ledger"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

func NewRetrievalResult(uuid string) *RetrievalResult {
	return &RetrievalResult{
		UUID:         uuid,
		MirroredKeys: make([]string, 0),
	}
}

// Succeeded returns true if the METS file was retrieved and
// verified.
func (result *RetrievalResult) Succeeded() bool {
	return result.ErrorMessage == "" && result.METSPath != ""
}

// ToJson returns a JSON representation of the result.
// This contains more information than the plain text
// version returned by ToText().
func (result *RetrievalResult) ToJson() (string, error) {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), err
}

// ToText() returns a plain-text representation of the result, suitable
// for printing to STDOUT. To get more detailed information, use ToJson().
func (result *RetrievalResult) ToText() string {
	var msg string
	if result.ErrorMessage != "" {
		msg = fmt.Sprintf("[ERROR] Failed to retrieve METS for '%s': %s",
			result.UUID, result.ErrorMessage)
	} else {
		msg = fmt.Sprintf("[OK] Retrieved METS for '%s' to '%s'",
			result.UUID, result.METSPath)
		if result.SidecarPath != "" {
			msg += fmt.Sprintf(" with sidecar '%s'", result.SidecarPath)
		}
	}
	return msg
}
