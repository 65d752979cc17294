package workflow

import (
	"errors"
	"net/http"
)

var (
	ErrDispatch          = errors.New("dispatch failed")
	ErrResumeMismatch    = errors.New("resume mismatch")
	ErrCapability        = errors.New("model capability failed")
	ErrThreadNotFound    = errors.New("thread not found")
	ErrThreadBusy        = errors.New("thread is busy")
	ErrThreadFinished    = errors.New("thread is finished")
	ErrNothingToRetry    = errors.New("nothing to retry")
	ErrEmptyInput        = errors.New("input must not be empty")
	ErrNoPrompt          = errors.New("no prompt has been drafted")
	ErrUnknownStep       = errors.New("unknown step")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrMaxSteps          = errors.New("maximum steps exceeded")
	ErrVersionConflict   = errors.New("checkpoint version conflict")
	ErrDraining          = errors.New("driver is shutting down")
)

// Error kinds reported on error updates.
const (
	KindDispatch       = "dispatch"
	KindResumeMismatch = "resume_mismatch"
	KindCapability     = "capability"
	KindInternal       = "internal"
)

// ErrorKind classifies err into one of the reported error kinds.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrDispatch):
		return KindDispatch
	case errors.Is(err, ErrResumeMismatch):
		return KindResumeMismatch
	case errors.Is(err, ErrCapability):
		return KindCapability
	default:
		return KindInternal
	}
}

// MapHTTPStatus maps workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrThreadNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrThreadBusy), errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ErrResumeMismatch),
		errors.Is(err, ErrEmptyInput),
		errors.Is(err, ErrNothingToRetry),
		errors.Is(err, ErrThreadFinished):
		return http.StatusBadRequest
	case errors.Is(err, ErrCapability):
		return http.StatusBadGateway
	case errors.Is(err, ErrDraining):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
