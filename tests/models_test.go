// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"encoding/json"
	"testing"

	"github.com/kbtwatch/tracker/models"
	"github.com/kbtwatch/tracker/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTableName(t *testing.T) {
	assert.Equal(t, "results", models.Result{}.TableName())
}

func TestResultJSONShape(t *testing.T) {
	r := models.Result{
		ID:        1,
		Period:    "20240101001",
		Number:    "5",
		Color:     "red",
		CreatedAt: utils.UTCNow(),
	}

	bs, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Equal(t, "20240101001", decoded["period"])
	assert.Equal(t, "5", decoded["number"])
	assert.Equal(t, "red", decoded["color"])
	assert.Contains(t, decoded, "created_at")
}
