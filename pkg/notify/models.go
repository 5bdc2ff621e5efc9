package notify

import (
	"encoding/json"

	"github.com/pitabwire/frame/data"

	"github.com/dictaflow/dictaflow/pkg/events"
)

// Endpoint is a registered outbound notification target. Other tools on
// the machine (or a companion server) subscribe to dictation events
// through these.
type Endpoint struct {
	data.BaseModel

	Name         string         `gorm:"type:varchar(255);not null"  json:"name"`
	URL          string         `gorm:"type:varchar(2048);not null" json:"url"`
	Secret       string         `gorm:"type:varchar(512);not null"  json:"-"`
	EventTypes   EventTypesJSON `gorm:"type:jsonb;default:'[]'"     json:"event_types"`
	IsActive     bool           `gorm:"default:true"                json:"is_active"`
	Description  string         `gorm:"type:text"                   json:"description,omitempty"`
	FailureCount int            `gorm:"default:0"                   json:"failure_count"`
}

func (Endpoint) TableName() string { return "notify_endpoints" }

// EventTypesJSON stores the subscribed event types as JSONB.
type EventTypesJSON []events.EventType

func (e EventTypesJSON) Value() (interface{}, error) {
	return json.Marshal(e)
}

func (e *EventTypesJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		*e = EventTypesJSON{}
		return nil
	}
}

// Contains checks whether the list includes the given event type.
func (e EventTypesJSON) Contains(et events.EventType) bool {
	for _, t := range e {
		if t == et {
			return true
		}
	}
	return false
}

// DeliveryRecord is one attempt to deliver an event to an endpoint.
type DeliveryRecord struct {
	data.BaseModel

	EndpointID    string `gorm:"type:varchar(50);not null;index:idx_nd_endpoint" json:"endpoint_id"`
	EventID       string `gorm:"type:varchar(50);not null"                        json:"event_id"`
	EventType     string `gorm:"type:varchar(100);not null"                       json:"event_type"`
	ResponseCode  int    `gorm:"default:0"                                        json:"response_code"`
	AttemptNumber int    `gorm:"default:1"                                        json:"attempt_number"`
	Status        string `gorm:"type:varchar(20);not null;index:idx_nd_status"    json:"status"`
	Error         string `gorm:"type:text"                                        json:"error,omitempty"`
	DurationMs    int64  `gorm:"default:0"                                        json:"duration_ms"`
}

func (DeliveryRecord) TableName() string { return "notify_deliveries" }

// DeadEvent holds an event that exhausted all delivery retries.
type DeadEvent struct {
	data.BaseModel

	EndpointID string `gorm:"type:varchar(50);not null;index:idx_ne_endpoint" json:"endpoint_id"`
	EventID    string `gorm:"type:varchar(50);not null"                        json:"event_id"`
	EventType  string `gorm:"type:varchar(100);not null"                       json:"event_type"`
	Payload    string `gorm:"type:text;not null"                               json:"payload"`
	LastError  string `gorm:"type:text"                                        json:"last_error"`
	Attempts   int    `gorm:"default:0"                                        json:"attempts"`
}

func (DeadEvent) TableName() string { return "notify_dead_events" }
