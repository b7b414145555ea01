package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity names carried in change events.
const (
	EntityCategory = "category"
	EntityAmount   = "amount"
)

// Actions carried in change events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent announces that a budget record was written.
// Consumers use it to invalidate derived data such as cached summaries.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(entity, action string, id int64) *ChangeEvent {
	return &ChangeEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "<entity>.<action>", e.g. "amount.deleted".
func (e *ChangeEvent) RoutingKey() string {
	return e.Entity + "." + e.Action
}

func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Entity == "" || e.Action == "" {
		return nil, fmt.Errorf("change event missing entity or action")
	}
	return &e, nil
}
