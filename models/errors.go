package models

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrNewsNotFound        = errors.New("news not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

var (
	ErrRegistrationClosed    = errors.New("registration for this event is not available")
	ErrEventFull             = errors.New("event has reached maximum capacity")
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrInvalidStatus         = errors.New("invalid status")
)
