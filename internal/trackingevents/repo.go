package trackingevents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
)

// Repository persists tracking events.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// LockShipment takes a row lock on the parent shipment for the rest of the
// transaction and reports whether it exists. Appends to one shipment queue
// behind this lock.
func (r *Repository) LockShipment(ctx context.Context, shipmentID uuid.UUID) (bool, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", shipmentID).
		Take(&shipment).Error
	if err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ShipmentExists reports whether the shipment is present, without locking.
func (r *Repository) ShipmentExists(ctx context.Context, shipmentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Shipment{}).Where("id = ?", shipmentID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaxOrder returns the highest order recorded for the shipment, or 0.
func (r *Repository) MaxOrder(ctx context.Context, shipmentID uuid.UUID) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).
		Model(&models.TrackingEvent{}).
		Where("shipment_id = ?", shipmentID).
		Select("COALESCE(MAX(event_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

// Create inserts a single event.
func (r *Repository) Create(ctx context.Context, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByShipment returns the shipment's events in timeline order.
func (r *Repository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order(OrderByTimeline).
		Find(&events).Error
	return events, err
}

// OrderByTimeline sorts events by their assigned order.
const OrderByTimeline = "event_order ASC"
