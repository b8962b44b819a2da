package domain

import "time"

// StatusChange is the audit record of one effective appointment transition.
type StatusChange struct {
	ID            string            `json:"id"`
	AppointmentID string            `json:"appointment_id"`
	OwnerID       string            `json:"owner_id"`
	From          AppointmentStatus `json:"from"`
	To            AppointmentStatus `json:"to"`
	ActorID       string            `json:"actor_id"`
	ActorRole     Role              `json:"actor_role"`
	At            time.Time         `json:"at"`
}
