// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package models

import (
	"fmt"
	"strings"

	"github.com/davishong/rallyfeed/internal/apperr"
)

// ParseGameMode validates a client-supplied game mode string.
func ParseGameMode(s string) (GameMode, error) {
	mode := GameMode(strings.ToUpper(strings.TrimSpace(s)))
	switch mode {
	case GameModeSolo, GameModeFree, GameModeAram:
		return mode, nil
	}
	return "", apperr.NewValidation(apperr.CodeValidation,
		fmt.Sprintf("unknown game mode %q", s))
}

// ParseTier validates a client-supplied tier string.
func ParseTier(s string) (Tier, error) {
	tier := Tier(strings.ToUpper(strings.TrimSpace(s)))
	switch tier {
	case TierUnranked, TierIron, TierBronze, TierSilver, TierGold,
		TierPlatinum, TierEmerald, TierDiamond, TierMaster,
		TierGrandmaster, TierChallenger:
		return tier, nil
	}
	return "", apperr.NewValidation(apperr.CodeValidation,
		fmt.Sprintf("unknown tier %q", s))
}

// ParsePosition validates a client-supplied position string.
func ParsePosition(s string) (Position, error) {
	pos := Position(strings.ToUpper(strings.TrimSpace(s)))
	switch pos {
	case PositionTop, PositionJungle, PositionMid, PositionAdc,
		PositionSupport, PositionAny:
		return pos, nil
	}
	return "", apperr.NewValidation(apperr.CodeValidation,
		fmt.Sprintf("unknown position %q", s))
}
