package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

type ActionType string

const (
	ActionTaskCreate       ActionType = "task.create"
	ActionNotificationSend ActionType = "notification.send"
	ActionEmailSend        ActionType = "email.send"
)

var ErrUnknownAction = errors.New("unknown action type")

// Action describes the effect a schedule fires when due. Params are opaque
// to the scheduler and forwarded verbatim to the invoker, merged with the
// schedule's owner context. Stored as a JSONB column.
type Action struct {
	Type   ActionType `json:"type"`
	Params JSON       `json:"params,omitempty"`
}

func (a Action) Validate() error {
	switch a.Type {
	case ActionTaskCreate, ActionNotificationSend, ActionEmailSend:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func (a Action) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Action) Scan(value interface{}) error {
	if value == nil {
		return errors.New("action column cannot be null")
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Action: not a byte slice")
	}
	return json.Unmarshal(bytes, a)
}
