package services

import (
	"errors"
)

// Validation causes carried inside the AppError returned by Submit.
var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidEmail = errors.New("invalid email")
)

// Caller-facing messages. These are the only strings a failed request ever
// returns; internal causes stay in the logs.
const (
	MsgSubmitted            = "Message sent successfully! Thank you for reaching out."
	MsgAllFieldsRequired    = "All fields are required"
	MsgInvalidEmail         = "Please provide a valid email address"
	MsgDeliveryFailed       = "Failed to send message. Please try again later."
	MsgDatabaseNotConnected = "Database not connected"
	MsgFetchFailed          = "Failed to fetch contacts"
	MsgInvalidBody          = "Invalid request body"
	MsgRouteNotFound        = "Route not found"
	MsgInternal             = "Internal server error"
)
