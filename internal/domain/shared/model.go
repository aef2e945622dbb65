package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps shared by every persisted record
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity stamps a fresh ID and matching created/updated times
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// RestaurantAggregateRoot is the root of a restaurant-owned aggregate.
// Version backs optimistic locking; pending events are drained by the
// application layer after the aggregate is saved.
type RestaurantAggregateRoot struct {
	BaseEntity
	RestaurantID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Version      int           `gorm:"not null;default:1"`
	pending      []DomainEvent `gorm:"-"`
}

// NewRestaurantAggregateRoot starts a version-1 aggregate owned by restaurantID
func NewRestaurantAggregateRoot(restaurantID uuid.UUID) RestaurantAggregateRoot {
	return RestaurantAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		RestaurantID: restaurantID,
		Version:      1,
	}
}

func (a *RestaurantAggregateRoot) IncrementVersion() { a.Version++ }

func (a *RestaurantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *RestaurantAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *RestaurantAggregateRoot) ClearDomainEvents() { a.pending = nil }

// EventHandler reacts to published domain events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; empty means all.
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an EventPublisher with subscriptions and a lifecycle
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
