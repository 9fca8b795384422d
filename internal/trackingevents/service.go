package trackingevents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
)

const maxFieldLength = 255

// Service exposes the tracking-event timeline of a shipment.
type Service interface {
	List(ctx context.Context, shipmentID uuid.UUID) ([]TrackingEventDTO, error)
	Append(ctx context.Context, shipmentID uuid.UUID, input AppendEventInput) (*TrackingEventDTO, error)
}

type appendRecorder interface {
	EventAppended(status string)
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Repo    *Repository
	DB      *db.Client
	Metrics appendRecorder
	Now     func() time.Time
}

type service struct {
	repo    *Repository
	db      *db.Client
	metrics appendRecorder
	now     func() time.Time
}

// NewService constructs the tracking-event service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tracking event repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		db:      params.DB,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

func (s *service) List(ctx context.Context, shipmentID uuid.UUID) ([]TrackingEventDTO, error) {
	exists, err := s.repo.ShipmentExists(ctx, shipmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}

	events, err := s.repo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tracking events")
	}
	return FromModels(events), nil
}

// Append assigns order = max(order)+1 while holding the parent shipment's row
// lock, so concurrent appends to one shipment never share an order. A unique
// index on (shipment_id, order) rejects anything that slips past; that case
// surfaces as a conflict and is not retried.
func (s *service) Append(ctx context.Context, shipmentID uuid.UUID, input AppendEventInput) (*TrackingEventDTO, error) {
	event, err := s.buildEvent(shipmentID, input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		found, err := txRepo.LockShipment(ctx, shipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock shipment")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}

		maxOrder, err := txRepo.MaxOrder(ctx, shipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read current event order")
		}
		event.Order = maxOrder + 1

		if err := txRepo.Create(ctx, event); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tracking event order already taken, retry the request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert tracking event")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append tracking event")
	}

	if s.metrics != nil {
		s.metrics.EventAppended(event.Status.String())
	}
	dto := FromModel(*event)
	return &dto, nil
}

func (s *service) buildEvent(shipmentID uuid.UUID, input AppendEventInput) (*models.TrackingEvent, error) {
	eventType := strings.TrimSpace(input.EventType)
	location := strings.TrimSpace(input.Location)
	description := strings.TrimSpace(input.Description)

	switch {
	case eventType == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_type is required")
	case location == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	case len(eventType) > maxFieldLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_type is too long")
	case len(location) > maxFieldLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is too long")
	}

	status := enums.EventStatusCompleted
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid event status %q", *input.Status))
		}
		status = *input.Status
	}

	timestamp := s.now().UTC()
	if input.Timestamp != nil {
		timestamp = input.Timestamp.UTC()
	}

	return &models.TrackingEvent{
		ShipmentID:  shipmentID,
		EventType:   eventType,
		Location:    location,
		Description: description,
		Status:      status,
		Timestamp:   timestamp,
	}, nil
}
