package types

import "errors"

var (
	ErrUnauthenticated    = errors.New("connection is not authenticated")
	ErrInvalidIdentity    = errors.New("invalid identity: userId must be positive and role non-empty")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrNilConnection      = errors.New("connection is nil")

	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
	ErrMalformedMsg   = errors.New("malformed message")
	ErrUnknownMsgType = errors.New("unknown message type")
	ErrValidation     = errors.New("validation failed")

	ErrNotFound      = errors.New("requested item not found")
	ErrUnknownDriver = errors.New("driver does not exist")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrUnavailable   = errors.New("backing service unavailable")
	ErrUnknownKeke   = errors.New("keke does not exist")
	ErrTripNotActive = errors.New("trip is not active")
)
