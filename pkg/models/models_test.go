package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContext_Normalized(t *testing.T) {
	ectx := ExecutionContext{ExecutionID: "exec-1"}.Normalized()

	assert.Equal(t, "exec-1", ectx.ExecutionID)
	assert.NotNil(t, ectx.Variables)
	assert.NotNil(t, ectx.StepOutputs)

	ectx = ExecutionContext{
		Variables:   map[string]string{"env": "prod"},
		StepOutputs: map[string]map[string]any{"fetch": {"status": 200}},
	}.Normalized()

	assert.Equal(t, "prod", ectx.Variables["env"])
	assert.Equal(t, 200, ectx.StepOutputs["fetch"]["status"])
}

func TestLogEntry_TimestampMarshalsAsISO8601(t *testing.T) {
	entry := LogEntry{
		Level:     LogLevelInfo,
		Message:   "connected",
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"level": "info",
		"message": "connected",
		"timestamp": "2025-03-14T09:26:53Z"
	}`, string(raw))
}
