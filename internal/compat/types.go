// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package compat implements the personality-type catalog used to score duo
// compatibility between players.
//
// A type is a four-letter code, one letter per axis:
//
//	A/F - Aggressive vs Fortified (engagement style)
//	D/S - Damage-first vs Support-first (resource priority)
//	C/T - Carry-minded vs Team-minded (win condition)
//	I/B - Initiating vs Backline (positioning)
//
// The 16 resulting types form a closed enumeration. Every type has exactly one
// immutable catalog entry built at process start; lookups on anything outside
// the 16 fail loudly rather than defaulting, since a silent default would
// mis-score every candidate of that type.
package compat

import (
	"strings"

	"github.com/davishong/rallyfeed/internal/apperr"
)

// Type is one of the 16 personality type codes.
type Type string

// The closed set of personality types.
const (
	ADCI Type = "ADCI"
	ADCB Type = "ADCB"
	ADTI Type = "ADTI"
	ADTB Type = "ADTB"
	ASCI Type = "ASCI"
	ASCB Type = "ASCB"
	ASTI Type = "ASTI"
	ASTB Type = "ASTB"
	FDCI Type = "FDCI"
	FDCB Type = "FDCB"
	FDTI Type = "FDTI"
	FDTB Type = "FDTB"
	FSCI Type = "FSCI"
	FSCB Type = "FSCB"
	FSTI Type = "FSTI"
	FSTB Type = "FSTB"
)

// AllTypes returns the 16 types in canonical order.
func AllTypes() []Type {
	return []Type{
		ADCI, ADCB, ADTI, ADTB,
		ASCI, ASCB, ASTI, ASTB,
		FDCI, FDCB, FDTI, FDTB,
		FSCI, FSCB, FSTI, FSTB,
	}
}

// ParseType validates a type code (case-insensitive). Unknown codes return a
// not-supported error; there is no fallback type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := catalog[t]; !ok {
		return "", apperr.NewNotSupported("unknown personality type: " + s)
	}
	return t, nil
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }
