// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package models

import (
	"fmt"
	"strings"
)

// SortOrder selects how the displayed spot list is ordered.
type SortOrder int

const (
	// SortPersonalization orders by personalization score, highest first.
	SortPersonalization SortOrder = iota
	// SortDistance orders by distance from the user, nearest first.
	SortDistance
	// SortRating orders by community average rating, highest first.
	SortRating
	// SortName orders alphabetically by name.
	SortName
)

// String returns the wire name of the sort order.
func (o SortOrder) String() string {
	switch o {
	case SortPersonalization:
		return "personalization"
	case SortDistance:
		return "distance"
	case SortRating:
		return "rating"
	case SortName:
		return "name"
	default:
		return "unknown"
	}
}

// ParseSortOrder parses a wire name into a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personalization", "":
		return SortPersonalization, nil
	case "distance":
		return SortDistance, nil
	case "rating":
		return SortRating, nil
	case "name":
		return SortName, nil
	default:
		return SortPersonalization, fmt.Errorf("unknown sort order %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o SortOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *SortOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseSortOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
