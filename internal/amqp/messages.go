package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a domain write that other processes may react to.
type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventTransactionUpdated  EventType = "transaction.updated"
	EventTransactionDeleted  EventType = "transaction.deleted"
	EventGoalContributed     EventType = "goal.contributed"
	EventBudgetChanged       EventType = "budget.changed"
)

var ErrInvalidEvent = errors.New("invalid event")

func (t EventType) IsValid() bool {
	switch t {
	case EventTransactionRecorded, EventTransactionUpdated, EventTransactionDeleted,
		EventGoalContributed, EventBudgetChanged:
		return true
	}
	return false
}

// Event is the envelope published for every write. It carries identifiers
// only; consumers load the current state from storage.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     int64     `json:"userId"`
	EntityID   int64     `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(eventType EventType, userID, entityID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and rejects unknown types or malformed IDs.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return Event{}, fmt.Errorf("%w: id %q", ErrInvalidEvent, e.ID)
	}
	if !e.Type.IsValid() {
		return Event{}, fmt.Errorf("%w: type %q", ErrInvalidEvent, e.Type)
	}
	return e, nil
}
