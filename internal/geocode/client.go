// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package geocode resolves free-text searches to a single coordinate using
// a Nominatim-compatible search API.
//
// Requests are rate limited with golang.org/x/time/rate and guarded by a
// circuit breaker. Callers treat the result as best effort.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
)

// ErrBadResponse is returned when the service answers with an unusable body.
var ErrBadResponse = errors.New("bad geocoder response")

// Config configures a Client.
type Config struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client queries the search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[[]place]
}

// place is one search hit. Nominatim encodes coordinates as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	name := "geocoder"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cb: gobreaker.NewCircuitBreaker[[]place](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("Circuit breaker state transition")
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			},
		}),
	}
}

// Geocode returns the best match for text. found is false when the service
// knows no such place.
func (c *Client) Geocode(ctx context.Context, text string) (coord models.Coordinate, found bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Coordinate{}, false, nil
	}

	defer func() {
		switch {
		case err != nil:
			metrics.GeocodeRequests.WithLabelValues("error").Inc()
		case found:
			metrics.GeocodeRequests.WithLabelValues("found").Inc()
		default:
			metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return models.Coordinate{}, false, fmt.Errorf("geocode rate limit: %w", err)
	}

	places, err := c.cb.Execute(func() ([]place, error) {
		return c.search(ctx, text)
	})
	if err != nil {
		return models.Coordinate{}, false, err
	}
	if len(places) == 0 {
		return models.Coordinate{}, false, nil
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return models.Coordinate{}, false, fmt.Errorf("%w: coordinates %q,%q", ErrBadResponse, places[0].Lat, places[0].Lon)
	}
	return models.Coordinate{Latitude: lat, Longitude: lon}, true, nil
}

func (c *Client) search(ctx context.Context, text string) ([]place, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return places, nil
}
