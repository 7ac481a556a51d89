package models

import "errors"

var (
	ErrGuardViolation  = errors.New("lifu: operation not permitted in current state")
	ErrNotConnected    = errors.New("lifu: TX device is not connected")
	ErrInvalidSolution = errors.New("lifu: invalid solution")
	ErrTransport       = errors.New("lifu: transport reported failure")
)
