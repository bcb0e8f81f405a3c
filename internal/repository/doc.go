// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package repository turns raw store documents into the typed spot, rating
and profile values the rest of Chaimap works with.

# Spots

Venue records live in two collections, a primary one and a legacy one left
over from a migration. LoadSpots reads both, decodes every document into a
typed record and validates the required fields (name, address, latitude,
longitude, chaiTypes). A source that cannot be read is reported as a
SourceError and skipped; a record that fails decoding or validation is
reported as a RecordError and dropped. The surviving spots are merged with
Dedupe so each id appears once.

# Ratings and profiles

OwnRatings and FriendRatings query the ratings collection by author. Friend
lists are split into membership queries of at most ChunkSize ids each.
LoadProfile reads users/<uid>; a taste vector that is not exactly two values
in 1..5 is treated as absent.

# Writes

CreateSpot writes the primary collection, mirrors the record into the
legacy collection on a best-effort basis and stores the creator's initial
rating. CreateRating stores one rating and refreshes the spot's aggregate
statistics. Failures of the primary write are returned as ErrWriteFailed;
secondary failures are logged and counted.
*/
package repository
