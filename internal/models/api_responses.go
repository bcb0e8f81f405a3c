// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"spots": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "version": 7}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
//
// Version is the state-holder snapshot version the response was read from, so
// clients can discard responses older than a websocket notification they
// already processed.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   uint64    `json:"version,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteResult is returned by the create endpoints. The presentation layer
// only needs pass/fail to decide whether to retry or inform the user.
type WriteResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}
