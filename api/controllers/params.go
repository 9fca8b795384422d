package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
)

// shipmentIDParam reads the {id} path segment. A value that is not a UUID can
// never match a shipment, so it is reported as not found.
func shipmentIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	return id, nil
}
