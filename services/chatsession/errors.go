// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chatsession

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestion is returned when a blank question is submitted.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrNoLastQuestion is returned by Retry before anything was asked.
	ErrNoLastQuestion = errors.New("no previous question to retry")

	// ErrTurnOutOfRange is returned when a turn index does not name a turn.
	ErrTurnOutOfRange = errors.New("turn index out of range")

	// ErrFollowupOutOfRange is returned when a follow-up index is invalid.
	ErrFollowupOutOfRange = errors.New("follow-up question index out of range")

	// ErrExampleOutOfRange is returned when an example index is invalid.
	ErrExampleOutOfRange = errors.New("example question index out of range")

	// ErrUnknownTab is returned by ParseTab.
	ErrUnknownTab = errors.New("unknown analysis tab")

	// ErrCitationNotFound is returned when a turn has no citation with the given ID.
	ErrCitationNotFound = errors.New("citation not found")
)

// statusCoder is implemented by transport errors that know the HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// ServiceError records a failed call to the answering service.
//
// # Description
//
// Every failure mode of a submission (transport failure, non-2xx status, or
// an error payload in an otherwise successful response) is folded into a
// ServiceError and stored on the session state. It never alters the
// conversation, and Retry is always available afterwards.
//
// # Example
//
//	var svcErr *ServiceError
//	if errors.As(state.Err(), &svcErr) && svcErr.StatusCode == 503 {
//	    // backend is down
//	}
type ServiceError struct {
	// Question is the question whose submission failed.
	Question string

	// StatusCode is the HTTP status when known, 0 otherwise.
	StatusCode int

	// Message is the service-provided error text, if any.
	Message string

	// Wrapped is the underlying error (may be nil for error payloads).
	Wrapped error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Wrapped != nil:
		return e.Wrapped.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("answering service returned status %d", e.StatusCode)
	default:
		return "answering service failed"
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Wrapped
}

// newServiceError folds err into a ServiceError, keeping an existing one as-is.
func newServiceError(question string, err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	out := &ServiceError{Question: question, Wrapped: err}
	var sc statusCoder
	if errors.As(err, &sc) {
		out.StatusCode = sc.HTTPStatus()
	}
	return out
}
