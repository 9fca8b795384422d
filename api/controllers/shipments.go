package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shiptrack/shiptrack-backend/api/responses"
	"github.com/shiptrack/shiptrack-backend/api/validators"
	"github.com/shiptrack/shiptrack-backend/internal/shipments"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
)

type createShipmentRequest struct {
	TrackingNumber    string  `json:"tracking_number"`
	FromLocation      string  `json:"from_location" validate:"required"`
	ToLocation        string  `json:"to_location" validate:"required"`
	EstimatedDelivery *string `json:"estimated_delivery"`
	DeliveryStartTime *string `json:"delivery_start_time"`
	DeliveryEndTime   *string `json:"delivery_end_time"`
	SignatureRequired *bool   `json:"signature_required"`
	ServiceType       *string `json:"service_type"`
	Terms             *string `json:"terms"`
	Weight            *string `json:"weight"`
	Dimensions        *string `json:"dimensions"`
	TotalPieces       *int    `json:"total_pieces"`
	Packaging         *string `json:"packaging"`
	ManagerID         *string `json:"manager_id"`
}

func (req createShipmentRequest) toInput() (shipments.CreateShipmentInput, error) {
	eta, err := parseOptionalDate(req.EstimatedDelivery)
	if err != nil {
		return shipments.CreateShipmentInput{}, err
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil && strings.TrimSpace(*req.ManagerID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.ManagerID))
		if err != nil {
			return shipments.CreateShipmentInput{}, pkgerrors.New(pkgerrors.CodeValidation, "manager_id must be a valid id").
				WithDetails(map[string]any{"field": "manager_id"})
		}
		managerID = &parsed
	}

	return shipments.CreateShipmentInput{
		TrackingNumber:    req.TrackingNumber,
		FromLocation:      req.FromLocation,
		ToLocation:        req.ToLocation,
		EstimatedDelivery: eta,
		DeliveryStartTime: req.DeliveryStartTime,
		DeliveryEndTime:   req.DeliveryEndTime,
		SignatureRequired: req.SignatureRequired,
		ServiceType:       req.ServiceType,
		Terms:             req.Terms,
		Weight:            req.Weight,
		Dimensions:        req.Dimensions,
		TotalPieces:       req.TotalPieces,
		Packaging:         req.Packaging,
		ManagerID:         managerID,
	}, nil
}

type updateShipmentRequest struct {
	Status            *string `json:"status"`
	EstimatedDelivery *string `json:"estimated_delivery"`
	DeliveryStartTime *string `json:"delivery_start_time"`
	DeliveryEndTime   *string `json:"delivery_end_time"`
	SignatureRequired *bool   `json:"signature_required"`
	ServiceType       *string `json:"service_type"`
	Terms             *string `json:"terms"`
	Weight            *string `json:"weight"`
	Dimensions        *string `json:"dimensions"`
	TotalPieces       *int    `json:"total_pieces"`
	Packaging         *string `json:"packaging"`
}

func (req updateShipmentRequest) toInput() (shipments.UpdateShipmentInput, error) {
	eta, err := parseOptionalDate(req.EstimatedDelivery)
	if err != nil {
		return shipments.UpdateShipmentInput{}, err
	}

	var status *enums.ShipmentStatus
	if req.Status != nil {
		parsed, err := enums.ParseShipmentStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return shipments.UpdateShipmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).
				WithDetails(map[string]any{"field": "status"})
		}
		status = &parsed
	}

	input := shipments.UpdateShipmentInput{
		Status:            status,
		EstimatedDelivery: eta,
		DeliveryStartTime: req.DeliveryStartTime,
		DeliveryEndTime:   req.DeliveryEndTime,
		SignatureRequired: req.SignatureRequired,
		ServiceType:       req.ServiceType,
		Terms:             req.Terms,
		Weight:            req.Weight,
		Dimensions:        req.Dimensions,
		TotalPieces:       req.TotalPieces,
		Packaging:         req.Packaging,
	}
	// An empty string clears the date; an absent or null field leaves it alone.
	input.ClearEstimatedDelivery = req.EstimatedDelivery != nil && strings.TrimSpace(*req.EstimatedDelivery) == ""
	return input, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return validators.ParseDateOrTimestamp("estimated_delivery", *raw)
}

// ShipmentList returns every shipment with its timeline, newest first.
func ShipmentList(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ShipmentCreate creates a shipment together with its label-created event.
func ShipmentCreate(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment service unavailable"))
			return
		}

		var body createShipmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithShipmentID(r.Context(), created.ID.String())
			logg.Info(logg.WithField(ctx, "tracking_number", created.TrackingNumber), "shipment.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ShipmentGet returns one shipment with events and manager summary.
func ShipmentGet(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment service unavailable"))
			return
		}

		id, err := shipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

// ShipmentUpdate applies a partial update. Tracking number and events are
// not editable through this endpoint.
func ShipmentUpdate(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment service unavailable"))
			return
		}

		id, err := shipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateShipmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ShipmentDelete removes a shipment and its events.
func ShipmentDelete(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment service unavailable"))
			return
		}

		id, err := shipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithShipmentID(r.Context(), id.String()), "shipment.deleted")
		}
		responses.WriteSuccess(w, map[string]string{"message": "shipment deleted"})
	}
}

// TrackShipment is the public lookup by tracking number. Manager data is
// never included.
func TrackShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment service unavailable"))
			return
		}

		trackingNumber := strings.TrimSpace(chi.URLParam(r, "trackingNumber"))
		if trackingNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found"))
			return
		}

		shipment, err := svc.Track(r.Context(), trackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}
