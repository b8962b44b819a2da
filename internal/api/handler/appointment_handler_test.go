package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/estetica/salon-booking/internal/api/middleware"
	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type stubAppointmentService struct {
	createFn    func(ctx context.Context, in ports.CreateAppointmentInput) (*domain.Appointment, error)
	listFn      func(ctx context.Context, actor domain.Actor) ([]*domain.Appointment, error)
	setStatusFn func(ctx context.Context, actor domain.Actor, id string, status domain.AppointmentStatus) ([]*domain.Appointment, error)
	historyFn   func(ctx context.Context, actor domain.Actor, id string) ([]*domain.StatusChange, error)
}

func (s *stubAppointmentService) Create(ctx context.Context, in ports.CreateAppointmentInput) (*domain.Appointment, error) {
	return s.createFn(ctx, in)
}

func (s *stubAppointmentService) List(ctx context.Context, actor domain.Actor) ([]*domain.Appointment, error) {
	return s.listFn(ctx, actor)
}

func (s *stubAppointmentService) SetStatus(ctx context.Context, actor domain.Actor, id string, status domain.AppointmentStatus) ([]*domain.Appointment, error) {
	return s.setStatusFn(ctx, actor, id, status)
}

func (s *stubAppointmentService) History(ctx context.Context, actor domain.Actor, id string) ([]*domain.StatusChange, error) {
	return s.historyFn(ctx, actor, id)
}

func withSession(c echo.Context, userID string, role domain.Role) {
	c.Set(middleware.KeyUserID, userID)
	c.Set(middleware.KeyRole, role)
}

func TestAppointmentHandler_Create(t *testing.T) {
	e := newTestEcho()
	handler := NewAppointmentHandler(&stubAppointmentService{
		createFn: func(_ context.Context, in ports.CreateAppointmentInput) (*domain.Appointment, error) {
			if in.UserID != "alice" || in.Service != "Corte de Cabelo" || in.Date != "2024-05-01" || in.Time != "10:00" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Appointment{ID: "a1", UserID: in.UserID, Service: in.Service, Date: in.Date, Time: in.Time, Status: domain.StatusPending, Version: 1}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/v1/appointments", `{"service":"Corte de Cabelo","date":"2024-05-01","time":"10:00"}`)
	withSession(c, "alice", domain.RoleClient)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/v1/appointments/a1" {
		t.Fatalf("unexpected Location %q", loc)
	}

	var resp appointmentResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "pending" || resp.UserID != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAppointmentHandler_Create_MissingTime(t *testing.T) {
	e := newTestEcho()
	handler := NewAppointmentHandler(&stubAppointmentService{})

	c, _ := jsonContext(e, http.MethodPost, "/v1/appointments", `{"service":"Corte de Cabelo","date":"2024-05-01"}`)
	withSession(c, "alice", domain.RoleClient)

	var he *echo.HTTPError
	if err := handler.Create(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAppointmentHandler_List(t *testing.T) {
	e := newTestEcho()
	handler := NewAppointmentHandler(&stubAppointmentService{
		listFn: func(_ context.Context, actor domain.Actor) ([]*domain.Appointment, error) {
			if !actor.IsAdmin() {
				t.Fatalf("expected admin actor, got %+v", actor)
			}
			return []*domain.Appointment{{ID: "a1", UserID: "alice"}, {ID: "a2", UserID: "bob"}}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodGet, "/v1/appointments", "")
	withSession(c, "admin", domain.RoleAdmin)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp appointmentListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 2 || resp.Items[1].UserID != "bob" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAppointmentHandler_UpdateStatus(t *testing.T) {
	e := newTestEcho()
	handler := NewAppointmentHandler(&stubAppointmentService{
		setStatusFn: func(_ context.Context, actor domain.Actor, id string, status domain.AppointmentStatus) ([]*domain.Appointment, error) {
			if id != "a1" || status != domain.StatusConfirmed {
				t.Fatalf("unexpected args %s %s", id, status)
			}
			return []*domain.Appointment{{ID: "a1", Status: domain.StatusConfirmed, Version: 2}}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPatch, "/v1/appointments/a1/status", `{"status":"confirmed"}`)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	withSession(c, "admin", domain.RoleAdmin)

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp appointmentListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Items[0].Status != "confirmed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAppointmentHandler_UpdateStatus_UnknownStatus(t *testing.T) {
	e := newTestEcho()
	handler := NewAppointmentHandler(&stubAppointmentService{})

	c, _ := jsonContext(e, http.MethodPatch, "/v1/appointments/a1/status", `{"status":"done"}`)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	withSession(c, "admin", domain.RoleAdmin)

	if err := handler.UpdateStatus(c); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestAppointmentHandler_History(t *testing.T) {
	e := newTestEcho()
	handler := NewAppointmentHandler(&stubAppointmentService{
		historyFn: func(_ context.Context, _ domain.Actor, id string) ([]*domain.StatusChange, error) {
			return []*domain.StatusChange{{ID: "e1", AppointmentID: id, From: domain.StatusPending, To: domain.StatusCancelled, ActorRole: domain.RoleClient}}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodGet, "/v1/appointments/a1/history", "")
	c.SetParamNames("id")
	c.SetParamValues("a1")
	withSession(c, "alice", domain.RoleClient)

	if err := handler.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp historyResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.AppointmentID != "a1" || len(resp.Changes) != 1 || resp.Changes[0].To != "cancelled" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
