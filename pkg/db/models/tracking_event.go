package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shiptrack/shiptrack-backend/pkg/enums"
)

// TrackingEvent is one entry in a shipment's timeline. Order is 1-based and
// unique per shipment; it defines the display order regardless of Timestamp.
type TrackingEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ShipmentID  uuid.UUID         `gorm:"column:shipment_id;type:uuid;not null;uniqueIndex:idx_tracking_events_shipment_order,priority:1"`
	EventType   string            `gorm:"column:event_type;type:text;not null"`
	Location    string            `gorm:"column:location;type:text;not null"`
	Description string            `gorm:"column:description;type:text;not null"`
	Status      enums.EventStatus `gorm:"column:status;type:text;not null"`
	Order       int               `gorm:"column:event_order;not null;uniqueIndex:idx_tracking_events_shipment_order,priority:2"`
	Timestamp   time.Time         `gorm:"column:occurred_at;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (e *TrackingEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// All lists the models owned by this service, in dependency order.
func All() []any {
	return []any{&User{}, &Shipment{}, &TrackingEvent{}}
}
