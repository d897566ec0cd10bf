// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package database

import (
	"fmt"
	"strings"

	"github.com/davishong/rallyfeed/internal/models"
)

// FeedFilter holds the optional, conjunctive feed filters. Nil fields impose
// no constraint.
type FeedFilter struct {
	GameMode  *models.GameMode
	Tier      *models.Tier
	Positions []models.Position
	Mic       *bool
}

// buildFeedConditions returns WHERE fragments and bind arguments for the
// filter. The tier comparison is polymorphic on the post's game mode: FREE
// posts compare the author's free-queue tier, everything else the solo-queue
// tier. The position filter matches when either of the post's two role slots
// intersects the requested set.
func buildFeedConditions(filter *FeedFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter == nil {
		return conditions, args
	}

	if filter.GameMode != nil {
		conditions = append(conditions, "p.game_mode = ?")
		args = append(args, string(*filter.GameMode))
	}

	if filter.Tier != nil {
		conditions = append(conditions,
			"(CASE WHEN p.game_mode = 'FREE' THEN a.free_tier ELSE a.solo_tier END) = ?")
		args = append(args, string(*filter.Tier))
	}

	if len(filter.Positions) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Positions)), ",")
		conditions = append(conditions, fmt.Sprintf(
			"(p.main_position IN (%s) OR p.sub_position IN (%s))", placeholders, placeholders))
		for i := 0; i < 2; i++ {
			for _, pos := range filter.Positions {
				args = append(args, string(pos))
			}
		}
	}

	if filter.Mic != nil {
		conditions = append(conditions, "p.mic = ?")
		args = append(args, *filter.Mic)
	}

	return conditions, args
}
