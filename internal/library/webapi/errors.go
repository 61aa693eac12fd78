package webapi

import "github.com/Laisky/errors/v2"

var (
	// ErrConnection the web API could not be reached
	ErrConnection = errors.New("web api unreachable")
	// ErrNotFound the referenced entity does not exist
	ErrNotFound = errors.New("web api: not found")
	// ErrBadRequest the web API rejected the payload
	ErrBadRequest = errors.New("web api: bad request")
	// ErrUnexpectedStatus any other non-2xx response
	ErrUnexpectedStatus = errors.New("web api: unexpected status")
)
