// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package viewport

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chaimap/internal/models"
)

// LastViewportKey is the fixed key of the persisted viewport.
const LastViewportKey = "viewport/last"

// BadgerStore persists the viewport in BadgerDB as
// {latitude, longitude, latitudeDelta, longitudeDelta}.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a viewport store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Load returns the stored viewport; ok is false when none was saved.
func (s *BadgerStore) Load(_ context.Context) (models.Viewport, bool, error) {
	var vp models.Viewport
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(LastViewportKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vp)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Viewport{}, false, nil
	}
	if err != nil {
		return models.Viewport{}, false, fmt.Errorf("load viewport: %w", err)
	}
	return vp, true, nil
}

// Save overwrites the stored viewport.
func (s *BadgerStore) Save(_ context.Context, vp models.Viewport) error {
	data, err := json.Marshal(vp)
	if err != nil {
		return fmt.Errorf("marshal viewport: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(LastViewportKey), data)
	})
}
