// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package eventprocessor carries change events between the write path and
// the map state holder using Watermill.
//
// Three topics exist:
//
//	chaimap.spots.changed    a spot was created or its aggregates changed
//	chaimap.ratings.changed  a rating was created
//	chaimap.profile.changed  a user profile changed
//
// Publisher implements repository.ChangePublisher. Router consumes the
// topics and turns them into state holder commands: spot and rating changes
// trigger a full reload, a change to the acting user's profile triggers a
// personalization refresh. Concurrent reloads coalesce in the state holder,
// so bursts of events cost one reload.
//
// In production the transport is NATS JetStream, optionally served by an
// in-process EmbeddedServer. Without NATS, NewInProcess returns a Watermill
// GoChannel pub/sub so writes still reach the router.
package eventprocessor
