package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shiptrack/shiptrack-backend/pkg/enums"
)

// Shipment is a package in the delivery network, identified publicly by its tracking number.
type Shipment struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TrackingNumber    string               `gorm:"column:tracking_number;type:text;not null;uniqueIndex:idx_shipments_tracking_number"`
	Status            enums.ShipmentStatus `gorm:"column:status;type:text;not null"`
	FromLocation      string               `gorm:"column:from_location;type:text;not null"`
	ToLocation        string               `gorm:"column:to_location;type:text;not null"`
	EstimatedDelivery *time.Time           `gorm:"column:estimated_delivery"`
	DeliveryStartTime *string              `gorm:"column:delivery_start_time;type:text"`
	DeliveryEndTime   *string              `gorm:"column:delivery_end_time;type:text"`
	SignatureRequired bool                 `gorm:"column:signature_required;not null"`
	ServiceType       string               `gorm:"column:service_type;type:text;not null"`
	Terms             string               `gorm:"column:terms;type:text;not null"`
	Weight            *string              `gorm:"column:weight;type:text"`
	Dimensions        *string              `gorm:"column:dimensions;type:text"`
	TotalPieces       int                  `gorm:"column:total_pieces;not null"`
	Packaging         string               `gorm:"column:packaging;type:text;not null"`
	ManagerID         *uuid.UUID           `gorm:"column:manager_id;type:uuid;index:idx_shipments_manager_id"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime;index:idx_shipments_created_at"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Manager *User           `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL"`
	Events  []TrackingEvent `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (s *Shipment) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
