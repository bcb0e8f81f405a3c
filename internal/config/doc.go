// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package config provides centralized configuration management for Chaimap.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

  - Built-in defaults (defaultConfig)
  - An optional YAML file, located via CONFIG_PATH or DefaultConfigPaths
  - Environment variables, mapped through an explicit table so unrelated
    variables never leak into the configuration

# Sections

  - server: HTTP listener, CORS and rate limiting
  - logging: zerolog level, format and caller reporting
  - session: the acting user whose profile drives personalization
  - store: badger location, source collection names, membership query
    chunking and per-collection circuit breakers
  - recommend: classification threshold and score memoization
  - viewport: default region, fit spans, padding and interaction cool-down
  - geocode: Nominatim endpoint, rate limit and search debounce
  - nats: change-event messaging and the embedded broker
  - websocket: snapshot broadcast hub timings

Load validates the result and returns a descriptive error naming the
offending environment variable.
*/
package config
