// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a document that failed typed decoding.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrWriteFailed is returned when a create operation could not be stored.
	ErrWriteFailed = errors.New("write failed")
)

// SourceError reports a venue collection that could not be read.
type SourceError struct {
	Collection string
	Err        error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Collection, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// RecordError reports a single document that was dropped.
type RecordError struct {
	Collection string
	ID         string
	Err        error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s/%s: %v: %v", e.Collection, e.ID, ErrMalformedRecord, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}
