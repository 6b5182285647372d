package models_test

import (
	"encoding/json"
	"github.com/APTrust/mets-retriever/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func getRetrievalResult() *models.RetrievalResult {
	result := models.NewRetrievalResult("8c09cd9f-0da3-4bdb-be2a-2295ed799f4c")
	result.METSPath = "/mets_files/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml"
	result.RetrievedAt = time.Date(2022, 4, 20, 10, 30, 0, 0, time.UTC)
	return result
}

func TestRetrievalResultSucceeded(t *testing.T) {
	result := models.NewRetrievalResult("8c09cd9f-0da3-4bdb-be2a-2295ed799f4c")
	assert.False(t, result.Succeeded())
	result = getRetrievalResult()
	assert.True(t, result.Succeeded())
	result.ErrorMessage = "Oops"
	assert.False(t, result.Succeeded())
}

func TestRetrievalResultToText(t *testing.T) {
	result := getRetrievalResult()
	assert.Equal(t, "[OK] Retrieved METS for '8c09cd9f-0da3-4bdb-be2a-2295ed799f4c' to "+
		"'/mets_files/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml'", result.ToText())

	result.SidecarPath = "/mets_files/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.txt"
	assert.Equal(t, "[OK] Retrieved METS for '8c09cd9f-0da3-4bdb-be2a-2295ed799f4c' to "+
		"'/mets_files/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml' with sidecar "+
		"'/mets_files/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.txt'", result.ToText())

	result.ErrorMessage = "METS file not found at expected path after downloading"
	assert.Equal(t, "[ERROR] Failed to retrieve METS for '8c09cd9f-0da3-4bdb-be2a-2295ed799f4c': "+
		"METS file not found at expected path after downloading", result.ToText())
}

func TestRetrievalResultToJson(t *testing.T) {
	result := getRetrievalResult()
	result.MirroredKeys = append(result.MirroredKeys, "mets/METS.8c09cd9f-0da3-4bdb-be2a-2295ed799f4c.xml")
	jsonString, err := result.ToJson()
	require.Nil(t, err)

	data := make(map[string]interface{})
	require.Nil(t, json.Unmarshal([]byte(jsonString), &data))
	assert.Equal(t, "8c09cd9f-0da3-4bdb-be2a-2295ed799f4c", data["uuid"])
	assert.Equal(t, result.METSPath, data["mets_path"])
	assert.Equal(t, "2022-04-20T10:30:00Z", data["retrieved_at"])
	assert.Equal(t, false, data["recorded_in_ledger"])
	assert.Equal(t, 1, len(data["mirrored_keys"].([]interface{})))
	_, hasSidecar := data["sidecar_path"]
	assert.False(t, hasSidecar)
	_, hasError := data["error_message"]
	assert.False(t, hasError)
}
