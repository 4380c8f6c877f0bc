// Package queue defines the message payloads exchanged over the broker and
// the background consumer that records them.
package queue

// UserRegisteredEvent is published after a successful registration. It is
// consumed for audit logging and welcome notifications; the password never
// appears here.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	City         string `json:"city"`
	RegisteredAt string `json:"registered_at"`
}

// CarAddedEvent is published when a user adds a car to their garage.
type CarAddedEvent struct {
	CarID                 uint64 `json:"car_id"`
	UserID                uint64 `json:"user_id"`
	BrandID               uint64 `json:"brand_id"`
	ModelID               uint64 `json:"model_id"`
	RegistrationNumber    string `json:"registration_number"`
	FirstRegistrationDate string `json:"first_registration_date"`
	AddedAt               string `json:"added_at"`
}
