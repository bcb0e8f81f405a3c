// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package store provides the document store the repositories read from and
// write to.
//
// Documents are schemaless field maps grouped into named collections and
// addressed by id. Queries filter a whole collection with simple
// equality, membership and range predicates and return whole documents,
// ordered by id.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no document has the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable is returned when a collection cannot be reached.
	ErrUnavailable = errors.New("collection unavailable")
)

// Document is a single stored record.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is the document store contract.
type Store interface {
	// Query returns every document in collection matching all predicates.
	Query(ctx context.Context, collection string, preds ...Predicate) ([]Document, error)

	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create writes a document, replacing any existing one with the same id.
	Create(ctx context.Context, collection, id string, fields map[string]any) error
}

// Op is a predicate operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGTE
	OpLTE
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpIn:
		return "in"
	case OpGTE:
		return ">="
	case OpLTE:
		return "<="
	default:
		return "?"
	}
}

// Predicate filters documents on one field.
type Predicate struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

// Eq matches documents whose field equals v.
func Eq(field string, v any) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: v}
}

// In matches documents whose field equals any of values.
func In[T any](field string, values []T) Predicate {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Predicate{Field: field, Op: OpIn, Values: vals}
}

// GTE matches documents whose numeric or string field is >= v.
func GTE(field string, v any) Predicate {
	return Predicate{Field: field, Op: OpGTE, Value: v}
}

// LTE matches documents whose numeric or string field is <= v.
func LTE(field string, v any) Predicate {
	return Predicate{Field: field, Op: OpLTE, Value: v}
}

func (p Predicate) String() string {
	if p.Op == OpIn {
		return fmt.Sprintf("%s in %v", p.Field, p.Values)
	}
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}

// Matches reports whether fields satisfy the predicate. A missing field
// never matches.
func (p Predicate) Matches(fields map[string]any) bool {
	got, ok := fields[p.Field]
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		return equal(got, p.Value)
	case OpIn:
		for _, v := range p.Values {
			if equal(got, v) {
				return true
			}
		}
		return false
	case OpGTE:
		c, ok := compare(got, p.Value)
		return ok && c >= 0
	case OpLTE:
		c, ok := compare(got, p.Value)
		return ok && c <= 0
	default:
		return false
	}
}

// MatchAll reports whether fields satisfy every predicate.
func MatchAll(fields map[string]any, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Matches(fields) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, ok := a.(string)
	if !ok {
		return 0, false
	}
	bs, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

// toFloat normalizes numeric values; decoded JSON numbers are float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
