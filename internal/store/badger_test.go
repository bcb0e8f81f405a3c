// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

// createTestBadgerDB creates an in-memory BadgerDB for testing.
func createTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := OpenBadger("", true)
	if err != nil {
		t.Fatalf("failed to open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerStore_CreateGet(t *testing.T) {
	s := NewBadgerStore(createTestBadgerDB(t))
	ctx := context.Background()

	fields := map[string]any{"name": "Chai Point", "ratingCount": 3}
	if err := s.Create(ctx, "chaiSpots", "s1", fields); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	doc, err := s.Get(ctx, "chaiSpots", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.ID != "s1" {
		t.Errorf("ID = %q, want s1", doc.ID)
	}
	if doc.Fields["name"] != "Chai Point" {
		t.Errorf("name = %v, want Chai Point", doc.Fields["name"])
	}
	if doc.Fields["ratingCount"] != float64(3) {
		t.Errorf("ratingCount = %v (%T), want float64 3", doc.Fields["ratingCount"], doc.Fields["ratingCount"])
	}
}

func TestBadgerStore_GetNotFound(t *testing.T) {
	s := NewBadgerStore(createTestBadgerDB(t))

	_, err := s.Get(context.Background(), "users", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestBadgerStore_CreateRequiresID(t *testing.T) {
	s := NewBadgerStore(createTestBadgerDB(t))
	if err := s.Create(context.Background(), "users", "", map[string]any{}); err == nil {
		t.Fatal("Create() with empty id should fail")
	}
}

func TestBadgerStore_Query(t *testing.T) {
	s := NewBadgerStore(createTestBadgerDB(t))
	ctx := context.Background()

	ratings := map[string]map[string]any{
		"r3": {"userId": "u2", "value": 2},
		"r1": {"userId": "u1", "value": 5},
		"r2": {"userId": "u1", "value": 3},
		"r4": {"userId": "u3", "value": 4},
	}
	for id, f := range ratings {
		if err := s.Create(ctx, "ratings", id, f); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}
	// Same id in another collection must not leak into queries.
	if err := s.Create(ctx, "ratingsArchive", "r9", map[string]any{"userId": "u1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("all in id order", func(t *testing.T) {
		docs, err := s.Query(ctx, "ratings")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		want := []string{"r1", "r2", "r3", "r4"}
		if len(docs) != len(want) {
			t.Fatalf("got %d docs, want %d", len(docs), len(want))
		}
		for i, d := range docs {
			if d.ID != want[i] {
				t.Errorf("docs[%d].ID = %q, want %q", i, d.ID, want[i])
			}
		}
	})

	t.Run("equality", func(t *testing.T) {
		docs, err := s.Query(ctx, "ratings", Eq("userId", "u1"))
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("got %d docs, want 2", len(docs))
		}
	})

	t.Run("membership", func(t *testing.T) {
		docs, err := s.Query(ctx, "ratings", In("userId", []string{"u2", "u3"}))
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(docs) != 2 || docs[0].ID != "r3" || docs[1].ID != "r4" {
			t.Errorf("got %v, want r3 and r4", docs)
		}
	})

	t.Run("range", func(t *testing.T) {
		docs, err := s.Query(ctx, "ratings", GTE("value", 3), LTE("value", 4))
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(docs) != 2 || docs[0].ID != "r2" || docs[1].ID != "r4" {
			t.Errorf("got %v, want r2 and r4", docs)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		docs, err := s.Query(ctx, "nothing")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("got %d docs, want 0", len(docs))
		}
	})
}

func TestBadgerStore_CreateReplaces(t *testing.T) {
	s := NewBadgerStore(createTestBadgerDB(t))
	ctx := context.Background()

	_ = s.Create(ctx, "users", "u1", map[string]any{"uid": "u1", "friends": []string{"a"}})
	_ = s.Create(ctx, "users", "u1", map[string]any{"uid": "u1"})

	doc, err := s.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, ok := doc.Fields["friends"]; ok {
		t.Error("second Create should replace the whole document")
	}
}

func TestBadgerStore_QueryCanceled(t *testing.T) {
	s := NewBadgerStore(createTestBadgerDB(t))
	_ = s.Create(context.Background(), "chaiSpots", "s1", map[string]any{"name": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Query(ctx, "chaiSpots"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Query() error = %v, want context.Canceled", err)
	}
}
