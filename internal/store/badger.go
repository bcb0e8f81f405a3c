// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const docKeyPrefix = "doc/"

// BadgerStore implements Store on BadgerDB. Each document is stored as a
// JSON object under doc/<collection>/<id>.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a document store on an open BadgerDB.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens a BadgerDB at path, or an in-memory instance when
// inMemory is set. Badger's own logger is disabled.
func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func collectionPrefix(collection string) []byte {
	return []byte(docKeyPrefix + collection + "/")
}

func docKey(collection, id string) []byte {
	return []byte(docKeyPrefix + collection + "/" + id)
}

// Query scans the collection and returns matching documents in id order.
func (s *BadgerStore) Query(ctx context.Context, collection string, preds ...Predicate) ([]Document, error) {
	prefix := collectionPrefix(collection)
	var docs []Document

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(prefix):])

			var fields map[string]any
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &fields)
			}); err != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, id, err)
			}

			if MatchAll(fields, preds) {
				docs = append(docs, Document{ID: id, Fields: fields})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

// Get retrieves one document.
func (s *BadgerStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var fields map[string]any
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get document: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &fields)
		})
	})
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

// Create writes a document.
func (s *BadgerStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	if id == "" {
		return errors.New("document id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(docKey(collection, id), data); err != nil {
			return fmt.Errorf("set document: %w", err)
		}
		return nil
	})
}
