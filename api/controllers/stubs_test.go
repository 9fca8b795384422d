package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shiptrack/shiptrack-backend/internal/auth"
	"github.com/shiptrack/shiptrack-backend/internal/shipments"
	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
)

type stubShipmentService struct {
	list       []shipments.ShipmentDTO
	shipment   *shipments.ShipmentDTO
	public     *shipments.PublicShipmentDTO
	err        error
	gotCreate  shipments.CreateShipmentInput
	gotUpdate  shipments.UpdateShipmentInput
	gotID      uuid.UUID
	gotTrack   string
	deleteCall int
}

func (s *stubShipmentService) List(ctx context.Context) ([]shipments.ShipmentDTO, error) {
	return s.list, s.err
}

func (s *stubShipmentService) Create(ctx context.Context, input shipments.CreateShipmentInput) (*shipments.ShipmentDTO, error) {
	s.gotCreate = input
	return s.shipment, s.err
}

func (s *stubShipmentService) Get(ctx context.Context, id uuid.UUID) (*shipments.ShipmentDTO, error) {
	s.gotID = id
	return s.shipment, s.err
}

func (s *stubShipmentService) Track(ctx context.Context, trackingNumber string) (*shipments.PublicShipmentDTO, error) {
	s.gotTrack = trackingNumber
	return s.public, s.err
}

func (s *stubShipmentService) Update(ctx context.Context, id uuid.UUID, input shipments.UpdateShipmentInput) (*shipments.ShipmentDTO, error) {
	s.gotID = id
	s.gotUpdate = input
	return s.shipment, s.err
}

func (s *stubShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	s.gotID = id
	s.deleteCall++
	return s.err
}

type stubEventService struct {
	events    []trackingevents.TrackingEventDTO
	event     *trackingevents.TrackingEventDTO
	err       error
	gotID     uuid.UUID
	gotAppend trackingevents.AppendEventInput
	calls     int
}

func (s *stubEventService) List(ctx context.Context, shipmentID uuid.UUID) ([]trackingevents.TrackingEventDTO, error) {
	s.gotID = shipmentID
	return s.events, s.err
}

func (s *stubEventService) Append(ctx context.Context, shipmentID uuid.UUID, input trackingevents.AppendEventInput) (*trackingevents.TrackingEventDTO, error) {
	s.calls++
	s.gotID = shipmentID
	s.gotAppend = input
	return s.event, s.err
}

type stubAuthService struct {
	login      *auth.LoginResponse
	refresh    *auth.RefreshResponse
	err        error
	gotToken   string
	gotRefresh string
}

func (s *stubAuthService) Authenticate(ctx context.Context, identifier, secret string) (*auth.Principal, error) {
	if s.login == nil {
		return nil, s.err
	}
	return &s.login.User, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.gotToken = accessToken
	return s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error) {
	s.gotToken = accessToken
	s.gotRefresh = refreshToken
	return s.refresh, s.err
}

type stubSignupService struct {
	resp *auth.SignupResponse
	err  error
}

func (s stubSignupService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.SignupResponse, error) {
	return s.resp, s.err
}

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target string, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, string(env.Data))
	}
}
