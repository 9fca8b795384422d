package controllers

import (
	"net/http"
	"strings"

	"github.com/shiptrack/shiptrack-backend/api/responses"
	"github.com/shiptrack/shiptrack-backend/api/validators"
	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
)

// appendEventRequest has no order field; the strict decoder rejects one.
type appendEventRequest struct {
	EventType   string  `json:"event_type" validate:"required"`
	Location    string  `json:"location" validate:"required"`
	Description string  `json:"description"`
	Status      *string `json:"status"`
	Timestamp   *string `json:"timestamp"`
}

func (req appendEventRequest) toInput() (trackingevents.AppendEventInput, error) {
	input := trackingevents.AppendEventInput{
		EventType:   req.EventType,
		Location:    req.Location,
		Description: req.Description,
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, err := enums.ParseEventStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return trackingevents.AppendEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).
				WithDetails(map[string]any{"field": "status"})
		}
		input.Status = &status
	}
	if req.Timestamp != nil {
		ts, err := validators.ParseTimestamp("timestamp", *req.Timestamp)
		if err != nil {
			return trackingevents.AppendEventInput{}, err
		}
		input.Timestamp = ts
	}
	return input, nil
}

// ShipmentEventsList returns a shipment's timeline ordered by event order.
func ShipmentEventsList(svc trackingevents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking event service unavailable"))
			return
		}

		id, err := shipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.List(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}

// ShipmentEventAppend adds the next event to a shipment's timeline.
func ShipmentEventAppend(svc trackingevents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking event service unavailable"))
			return
		}

		id, err := shipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body appendEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Append(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithShipmentID(r.Context(), id.String())
			logg.Info(logg.WithFields(ctx, map[string]any{"event_type": event.EventType, "order": event.Order}), "tracking_event.appended")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}
