package handler

import (
	"time"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// --- Appointments ---

type createAppointmentRequest struct {
	Service string `json:"service" validate:"required,max=120"`
	Date    string `json:"date"    validate:"required,max=32"`
	Time    string `json:"time"    validate:"required,max=32"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type appointmentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type appointmentListResponse struct {
	Items []appointmentResponse `json:"items"`
	Total int                   `json:"total"`
}

type statusChangeResponse struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	At        time.Time `json:"at"`
}

type historyResponse struct {
	AppointmentID string                 `json:"appointment_id"`
	Changes       []statusChangeResponse `json:"changes"`
}

func toAppointmentResponse(a *domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Service:   a.Service,
		Date:      a.Date,
		Time:      a.Time,
		Status:    string(a.Status),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAppointmentList(items []*domain.Appointment) appointmentListResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	return appointmentListResponse{Items: out, Total: len(out)}
}

// --- Catalog ---

type catalogItemResponse struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `json:"currency"`
	DurationMinutes int    `json:"duration_minutes"`
}

type catalogResponse struct {
	Items []catalogItemResponse `json:"items"`
}
