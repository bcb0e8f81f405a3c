// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/store"
)

var errInjected = errors.New("injected failure")

// faultStore wraps a store and fails calls against selected collections.
type faultStore struct {
	store.Store

	mu          sync.Mutex
	failQuery   map[string]bool
	failCreate  map[string]bool
	queryCounts map[string]int
}

func newFaultStore(t *testing.T) *faultStore {
	t.Helper()
	db, err := store.OpenBadger("", true)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &faultStore{
		Store:       store.NewBadgerStore(db),
		failQuery:   map[string]bool{},
		failCreate:  map[string]bool{},
		queryCounts: map[string]int{},
	}
}

func (f *faultStore) Query(ctx context.Context, collection string, preds ...store.Predicate) ([]store.Document, error) {
	f.mu.Lock()
	f.queryCounts[collection]++
	fail := f.failQuery[collection]
	f.mu.Unlock()
	if fail {
		return nil, errInjected
	}
	return f.Store.Query(ctx, collection, preds...)
}

func (f *faultStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	f.mu.Lock()
	fail := f.failCreate[collection]
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.Store.Create(ctx, collection, id, fields)
}

func (f *faultStore) queries(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCounts[collection]
}

func (f *faultStore) put(t *testing.T, collection, id string, fields map[string]any) {
	t.Helper()
	if err := f.Store.Create(context.Background(), collection, id, fields); err != nil {
		t.Fatalf("seed %s/%s: %v", collection, id, err)
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	spots   []models.Spot
	ratings []models.Rating
}

func (p *recordingPublisher) PublishSpotChanged(_ context.Context, s models.Spot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spots = append(p.spots, s)
	return nil
}

func (p *recordingPublisher) PublishRatingChanged(_ context.Context, r models.Rating) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ratings = append(p.ratings, r)
	return nil
}

func spotDoc(name string, avg float64, count int) map[string]any {
	return map[string]any{
		"name":          name,
		"address":       name + " Street",
		"latitude":      37.7,
		"longitude":     -122.4,
		"chaiTypes":     []string{"masala"},
		"averageRating": avg,
		"ratingCount":   count,
	}
}

func newTestRepo(t *testing.T, opts ...Option) (*Repository, *faultStore) {
	t.Helper()
	fs := newFaultStore(t)
	r := New(fs, DefaultConfig(), opts...)
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return r, fs
}

func TestLoadSpots_MergesAndDropsMalformed(t *testing.T) {
	r, fs := newTestRepo(t)

	fs.put(t, "chaiSpots", "a", spotDoc("Alpha", 4.0, 10))
	fs.put(t, "chaiSpots", "b", spotDoc("Bravo", 3.0, 2))
	fs.put(t, "chaiFinder", "c", spotDoc("Charlie", 2.5, 1))

	noAddress := spotDoc("NoAddress", 3, 1)
	delete(noAddress, "address")
	fs.put(t, "chaiFinder", "d", noAddress)

	badLat := spotDoc("BadLat", 3, 1)
	badLat["latitude"] = "north"
	fs.put(t, "chaiSpots", "e", badLat)

	noTypes := spotDoc("NoTypes", 3, 1)
	delete(noTypes, "chaiTypes")
	fs.put(t, "chaiSpots", "f", noTypes)

	spots, report := r.LoadSpots(context.Background())

	got := models.SpotIDs(spots)
	want := []string{"c", "a", "b"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("spot ids = %v, want %v", got, want)
	}
	if report.Malformed() != 3 {
		t.Errorf("Malformed() = %d, want 3", report.Malformed())
	}
	if report.Degraded() {
		t.Error("report should not be degraded")
	}
	for _, src := range report.Sources {
		for _, d := range src.Dropped {
			if !errors.Is(d, ErrMalformedRecord) {
				t.Errorf("dropped record error %v should wrap ErrMalformedRecord", d)
			}
		}
	}
}

func TestLoadSpots_KeepsVenuesWithOddOptionalFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(doc map[string]any)
		wantAvg   float64
		wantCount int
	}{
		{"fractional rating count", func(d map[string]any) { d["ratingCount"] = 2.5 }, 4, 2},
		{"string average rating", func(d map[string]any) { d["averageRating"] = "4.5" }, 4.5, 3},
		{"unparseable average rating", func(d map[string]any) { d["averageRating"] = "great" }, 0, 3},
		{"negative rating count", func(d map[string]any) { d["ratingCount"] = -1 }, 4, 0},
		{"missing aggregates", func(d map[string]any) {
			delete(d, "averageRating")
			delete(d, "ratingCount")
		}, 0, 0},
		{"latitude out of range", func(d map[string]any) { d["latitude"] = 95.0 }, 4, 3},
		{"longitude out of range", func(d map[string]any) { d["longitude"] = -200.0 }, 4, 3},
		{"zero coordinates and empty tags", func(d map[string]any) {
			d["latitude"] = 0.0
			d["longitude"] = 0.0
			d["chaiTypes"] = []string{}
		}, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fs := newTestRepo(t)
			doc := spotDoc("Alpha", 4, 3)
			tt.mutate(doc)
			fs.put(t, "chaiSpots", "a", doc)

			spots, report := r.LoadSpots(context.Background())
			if report.Malformed() != 0 {
				t.Fatalf("Malformed() = %d, want 0", report.Malformed())
			}
			if len(spots) != 1 {
				t.Fatalf("len(spots) = %d, want 1", len(spots))
			}
			if spots[0].AverageRating != tt.wantAvg {
				t.Errorf("AverageRating = %v, want %v", spots[0].AverageRating, tt.wantAvg)
			}
			if spots[0].RatingCount != tt.wantCount {
				t.Errorf("RatingCount = %d, want %d", spots[0].RatingCount, tt.wantCount)
			}
		})
	}
}

func TestLoadSpots_DuplicateAcrossSources(t *testing.T) {
	r, fs := newTestRepo(t)

	fs.put(t, "chaiFinder", "x", spotDoc("Legacy X", 2.0, 3))
	fs.put(t, "chaiSpots", "x", spotDoc("Primary X", 4.5, 3))

	spots, report := r.LoadSpots(context.Background())

	if len(spots) != 1 {
		t.Fatalf("got %d spots, want exactly 1", len(spots))
	}
	if spots[0].ID != "x" {
		t.Errorf("ID = %q, want x", spots[0].ID)
	}
	if spots[0].AverageRating != 4.5 {
		t.Errorf("AverageRating = %v, want primary value 4.5", spots[0].AverageRating)
	}
	if report.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", report.Duplicates)
	}
}

func TestLoadSpots_SourceUnavailable(t *testing.T) {
	r, fs := newTestRepo(t)
	fs.put(t, "chaiSpots", "a", spotDoc("Alpha", 4.0, 10))
	fs.put(t, "chaiFinder", "b", spotDoc("Bravo", 4.0, 10))
	fs.failQuery["chaiFinder"] = true

	spots, report := r.LoadSpots(context.Background())

	if len(spots) != 1 || spots[0].ID != "a" {
		t.Fatalf("spots = %v, want only a", models.SpotIDs(spots))
	}
	if !report.Degraded() {
		t.Fatal("report should be degraded")
	}
	if report.Unavailable() {
		t.Error("one healthy source means the report is not unavailable")
	}

	var found bool
	for _, src := range report.Sources {
		if src.Err == nil {
			continue
		}
		found = true
		if src.Err.Collection != "chaiFinder" {
			t.Errorf("failed collection = %q, want chaiFinder", src.Err.Collection)
		}
		if !errors.Is(src.Err, errInjected) {
			t.Errorf("SourceError should unwrap to the store error")
		}
	}
	if !found {
		t.Error("expected a SourceError")
	}
}

func TestLoadSpots_BothSourcesUnavailable(t *testing.T) {
	r, fs := newTestRepo(t)
	fs.failQuery["chaiFinder"] = true
	fs.failQuery["chaiSpots"] = true

	spots, report := r.LoadSpots(context.Background())
	if len(spots) != 0 {
		t.Errorf("got %d spots, want 0", len(spots))
	}
	if !report.Degraded() {
		t.Error("report should be degraded")
	}
	if !report.Unavailable() {
		t.Error("report should be unavailable when every source failed")
	}
}

func TestDedupe(t *testing.T) {
	in := []models.Spot{
		{ID: "a", Name: "a1"},
		{ID: "b", Name: "b1"},
		{ID: "a", Name: "a2"},
		{ID: "c", Name: "c1"},
		{ID: "b", Name: "b2"},
	}

	out := Dedupe(in)

	wantIDs := []string{"a", "b", "c"}
	wantNames := []string{"a2", "b2", "c1"}
	if len(out) != len(wantIDs) {
		t.Fatalf("got %d spots, want %d", len(out), len(wantIDs))
	}
	for i := range out {
		if out[i].ID != wantIDs[i] || out[i].Name != wantNames[i] {
			t.Errorf("out[%d] = %s/%s, want %s/%s", i, out[i].ID, out[i].Name, wantIDs[i], wantNames[i])
		}
	}

	again := Dedupe(out)
	if fmt.Sprint(again) != fmt.Sprint(out) {
		t.Errorf("Dedupe is not idempotent: %v != %v", again, out)
	}

	seen := map[string]bool{}
	for _, s := range again {
		if seen[s.ID] {
			t.Errorf("duplicate id %q survived", s.ID)
		}
		seen[s.ID] = true
	}

	if len(Dedupe(nil)) != 0 {
		t.Error("Dedupe(nil) should be empty")
	}
}

func TestOwnRatings(t *testing.T) {
	r, fs := newTestRepo(t)
	fs.put(t, "ratings", "r1", map[string]any{"spotId": "a", "userId": "me", "value": 5, "creaminessRating": 4})
	fs.put(t, "ratings", "r2", map[string]any{"spotId": "b", "userId": "other", "value": 3})
	fs.put(t, "ratings", "r3", map[string]any{"spotId": "c", "userId": "me", "value": 9})

	ratings, err := r.OwnRatings(context.Background(), "me")
	if err != nil {
		t.Fatalf("OwnRatings() error = %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("got %d ratings, want 1 (r3 is out of range)", len(ratings))
	}
	if ratings[0].SpotID != "a" || ratings[0].CreaminessRating == nil || *ratings[0].CreaminessRating != 4 {
		t.Errorf("unexpected rating %+v", ratings[0])
	}
	if ratings[0].ChaiStrengthRating != nil {
		t.Error("missing strength rating should stay nil")
	}
}

func TestFriendRatings_Chunked(t *testing.T) {
	r, fs := newTestRepo(t)

	friends := make([]string, 23)
	for i := range friends {
		friends[i] = fmt.Sprintf("f%02d", i)
		fs.put(t, "ratings", fmt.Sprintf("r%02d", i), map[string]any{"spotId": "s", "userId": friends[i], "value": 4})
	}
	fs.put(t, "ratings", "mine", map[string]any{"spotId": "s", "userId": "me", "value": 1})

	ratings, err := r.FriendRatings(context.Background(), friends)
	if err != nil {
		t.Fatalf("FriendRatings() error = %v", err)
	}
	if len(ratings) != 23 {
		t.Errorf("got %d ratings, want 23", len(ratings))
	}
	if q := fs.queries("ratings"); q != 3 {
		t.Errorf("ratings queries = %d, want 3 chunks", q)
	}
}

func TestFriendRatings_NoFriends(t *testing.T) {
	r, fs := newTestRepo(t)

	ratings, err := r.FriendRatings(context.Background(), nil)
	if err != nil || len(ratings) != 0 {
		t.Fatalf("FriendRatings(nil) = %v, %v", ratings, err)
	}
	if fs.queries("ratings") != 0 {
		t.Error("no query should be issued without friends")
	}
}

func TestFriendRatings_Failure(t *testing.T) {
	r, fs := newTestRepo(t)
	fs.failQuery["ratings"] = true

	if _, err := r.FriendRatings(context.Background(), []string{"f1"}); !errors.Is(err, errInjected) {
		t.Fatalf("error = %v, want injected failure", err)
	}
}

func TestChunkStrings(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{30, 10, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		values := make([]string, tt.n)
		if got := len(chunkStrings(values, tt.size)); got != tt.want {
			t.Errorf("chunkStrings(%d, %d) = %d chunks, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestLoadProfile(t *testing.T) {
	r, fs := newTestRepo(t)
	fs.put(t, "users", "me", map[string]any{
		"tasteVector":  []int{4, 2},
		"topTasteTags": []string{"cardamom"},
		"friends":      []string{"f1", "f2"},
	})
	fs.put(t, "users", "odd", map[string]any{"tasteVector": []int{4, 2, 1}})
	fs.put(t, "users", "range", map[string]any{"tasteVector": []int{0, 6}})

	p, err := r.LoadProfile(context.Background(), "me")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.UID != "me" || !p.HasTasteVector() || p.Creaminess() != 4 || p.Strength() != 2 {
		t.Errorf("unexpected profile %+v", p)
	}
	if len(p.Friends) != 2 || p.TopTasteTags[0] != "cardamom" {
		t.Errorf("unexpected friends/tags %+v", p)
	}

	for _, uid := range []string{"odd", "range"} {
		p, err := r.LoadProfile(context.Background(), uid)
		if err != nil {
			t.Fatalf("LoadProfile(%s) error = %v", uid, err)
		}
		if p.HasTasteVector() {
			t.Errorf("%s: invalid taste vector should be treated as absent", uid)
		}
	}

	if _, err := r.LoadProfile(context.Background(), "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing profile error = %v, want ErrNotFound", err)
	}
}
