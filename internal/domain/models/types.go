package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

// JSON type for JSONB columns
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSON: not a byte slice")
	}
	return json.Unmarshal(bytes, j)
}

// StringArray type for text[] columns
type StringArray = pq.StringArray

// Run status constants
const (
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// Task record status constants
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

// Trigger types
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)
