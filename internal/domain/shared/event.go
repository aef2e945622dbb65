package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	RestaurantID() uuid.UUID
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID                uuid.UUID `json:"id"`
	Type              string    `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	AggID             uuid.UUID `json:"aggregate_id"`
	AggType           string    `json:"aggregate_type"`
	RestaurantIDValue uuid.UUID `json:"restaurant_id"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID      { return e.ID }
func (e *BaseDomainEvent) EventType() string       { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time   { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID  { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string   { return e.AggType }
func (e *BaseDomainEvent) RestaurantID() uuid.UUID { return e.RestaurantIDValue }

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID, restaurantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:                uuid.New(),
		Type:              eventType,
		Timestamp:         time.Now(),
		AggID:             aggID,
		AggType:           aggType,
		RestaurantIDValue: restaurantID,
	}
}
