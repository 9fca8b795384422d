package trackingevents

import (
	"time"

	"github.com/google/uuid"

	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
)

// TrackingEventDTO is the API shape of a timeline entry.
type TrackingEventDTO struct {
	ID          uuid.UUID         `json:"id"`
	ShipmentID  uuid.UUID         `json:"shipment_id"`
	EventType   string            `json:"event_type"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Status      enums.EventStatus `json:"status"`
	Order       int               `json:"order"`
	Timestamp   time.Time         `json:"timestamp"`
	CreatedAt   time.Time         `json:"created_at"`
}

// AppendEventInput carries the caller-controlled fields of a new event. The
// order is never part of the input.
type AppendEventInput struct {
	EventType   string
	Location    string
	Description string
	Status      *enums.EventStatus
	Timestamp   *time.Time
}

func FromModel(e models.TrackingEvent) TrackingEventDTO {
	return TrackingEventDTO{
		ID:          e.ID,
		ShipmentID:  e.ShipmentID,
		EventType:   e.EventType,
		Location:    e.Location,
		Description: e.Description,
		Status:      e.Status,
		Order:       e.Order,
		Timestamp:   e.Timestamp.UTC(),
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

// FromModels converts events, preserving their order.
func FromModels(events []models.TrackingEvent) []TrackingEventDTO {
	out := make([]TrackingEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, FromModel(e))
	}
	return out
}
