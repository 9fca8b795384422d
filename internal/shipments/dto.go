package shipments

import (
	"time"

	"github.com/google/uuid"

	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
)

// ManagerSummary is the slice of the managing admin exposed on admin reads.
type ManagerSummary struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// PublicShipmentDTO is the tracking-page view. It never carries manager data.
type PublicShipmentDTO struct {
	ID                uuid.UUID                         `json:"id"`
	TrackingNumber    string                            `json:"tracking_number"`
	Status            enums.ShipmentStatus              `json:"status"`
	FromLocation      string                            `json:"from_location"`
	ToLocation        string                            `json:"to_location"`
	EstimatedDelivery *time.Time                        `json:"estimated_delivery"`
	DeliveryStartTime *string                           `json:"delivery_start_time"`
	DeliveryEndTime   *string                           `json:"delivery_end_time"`
	SignatureRequired bool                              `json:"signature_required"`
	ServiceType       string                            `json:"service_type"`
	Terms             string                            `json:"terms"`
	Weight            *string                           `json:"weight"`
	Dimensions        *string                           `json:"dimensions"`
	TotalPieces       int                               `json:"total_pieces"`
	Packaging         string                            `json:"packaging"`
	Events            []trackingevents.TrackingEventDTO `json:"events"`
	CreatedAt         time.Time                         `json:"created_at"`
	UpdatedAt         time.Time                         `json:"updated_at"`
}

// ShipmentDTO is the admin view: the public fields plus assignment data.
type ShipmentDTO struct {
	PublicShipmentDTO
	ManagerID *uuid.UUID      `json:"manager_id"`
	Manager   *ManagerSummary `json:"manager"`
}

// CreateShipmentInput holds a validated create request. Nil pointers take defaults.
type CreateShipmentInput struct {
	TrackingNumber    string
	FromLocation      string
	ToLocation        string
	EstimatedDelivery *time.Time
	DeliveryStartTime *string
	DeliveryEndTime   *string
	SignatureRequired *bool
	ServiceType       *string
	Terms             *string
	Weight            *string
	Dimensions        *string
	TotalPieces       *int
	Packaging         *string
	ManagerID         *uuid.UUID
}

// UpdateShipmentInput lists the mutable fields; nil means unchanged. Tracking
// number, locations and events are not editable here.
type UpdateShipmentInput struct {
	Status            *enums.ShipmentStatus
	EstimatedDelivery *time.Time
	DeliveryStartTime *string
	DeliveryEndTime   *string
	SignatureRequired *bool
	ServiceType       *string
	Terms             *string
	Weight            *string
	Dimensions        *string
	TotalPieces       *int
	Packaging         *string

	// ClearEstimatedDelivery resets the date to NULL; EstimatedDelivery is ignored.
	ClearEstimatedDelivery bool
}

func (in UpdateShipmentInput) isEmpty() bool {
	return in.Status == nil &&
		in.EstimatedDelivery == nil &&
		!in.ClearEstimatedDelivery &&
		in.DeliveryStartTime == nil &&
		in.DeliveryEndTime == nil &&
		in.SignatureRequired == nil &&
		in.ServiceType == nil &&
		in.Terms == nil &&
		in.Weight == nil &&
		in.Dimensions == nil &&
		in.TotalPieces == nil &&
		in.Packaging == nil
}

func NewPublicShipmentDTO(s *models.Shipment) *PublicShipmentDTO {
	if s == nil {
		return nil
	}
	var estimated *time.Time
	if s.EstimatedDelivery != nil {
		utc := s.EstimatedDelivery.UTC()
		estimated = &utc
	}
	return &PublicShipmentDTO{
		ID:                s.ID,
		TrackingNumber:    s.TrackingNumber,
		Status:            s.Status,
		FromLocation:      s.FromLocation,
		ToLocation:        s.ToLocation,
		EstimatedDelivery: estimated,
		DeliveryStartTime: s.DeliveryStartTime,
		DeliveryEndTime:   s.DeliveryEndTime,
		SignatureRequired: s.SignatureRequired,
		ServiceType:       s.ServiceType,
		Terms:             s.Terms,
		Weight:            s.Weight,
		Dimensions:        s.Dimensions,
		TotalPieces:       s.TotalPieces,
		Packaging:         s.Packaging,
		Events:            trackingevents.FromModels(s.Events),
		CreatedAt:         s.CreatedAt.UTC(),
		UpdatedAt:         s.UpdatedAt.UTC(),
	}
}

func NewShipmentDTO(s *models.Shipment) *ShipmentDTO {
	if s == nil {
		return nil
	}
	dto := &ShipmentDTO{
		PublicShipmentDTO: *NewPublicShipmentDTO(s),
		ManagerID:         s.ManagerID,
	}
	if s.Manager != nil {
		dto.Manager = &ManagerSummary{Name: s.Manager.Name, Email: s.Manager.Email}
	}
	return dto
}
