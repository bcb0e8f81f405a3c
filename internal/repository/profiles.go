// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"context"
	"fmt"

	"github.com/tomtom215/chaimap/internal/models"
)

// LoadProfile reads users/<uid>.
func (r *Repository) LoadProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := r.store.Get(ctx, r.cfg.UsersCollection, uid)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", uid, err)
	}

	profile, tasteDropped, err := decodeProfile(doc)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", uid, &RecordError{Collection: r.cfg.UsersCollection, ID: uid, Err: err})
	}
	if tasteDropped {
		r.logger.Warn().Str("uid", uid).Msg("Ignoring invalid taste vector")
	}
	return profile, nil
}
