// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package database

import (
	"context"
	"testing"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/models"
)

func TestPersonalityProfileUpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.UpsertPersonalityProfile(ctx, 1, compat.ADCI)
	if err != nil {
		t.Fatalf("UpsertPersonalityProfile failed: %v", err)
	}
	if created.Type != compat.ADCI {
		t.Errorf("Type = %s, want ADCI", created.Type)
	}

	// Upsert replaces the previous type; at most one row per author.
	if _, err := db.UpsertPersonalityProfile(ctx, 1, compat.FSTB); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := db.GetPersonalityProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetPersonalityProfile failed: %v", err)
	}
	if got.Type != compat.FSTB {
		t.Errorf("Type after upsert = %s, want FSTB", got.Type)
	}
}

func TestGetPersonalityProfileNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetPersonalityProfile(context.Background(), 42)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !apperr.IsCode(err, apperr.CodeProfileNotFound) {
		t.Errorf("expected PROFILE_NOT_FOUND, got %v", err)
	}
}

func TestTypesForAuthors_BatchLookup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.UpsertPersonalityProfile(ctx, 1, compat.ADCI); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := db.UpsertPersonalityProfile(ctx, 2, compat.ASTB); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Author 3 has no profile and must be omitted, not defaulted.
	types, err := db.TypesForAuthors(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("TypesForAuthors failed: %v", err)
	}

	if len(types) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(types))
	}
	if types[1] != compat.ADCI || types[2] != compat.ASTB {
		t.Errorf("unexpected types: %v", types)
	}
	if _, ok := types[3]; ok {
		t.Error("author without profile must be omitted from batch result")
	}
}

func TestTypesForAuthors_EmptyInput(t *testing.T) {
	db := setupTestDB(t)

	types, err := db.TypesForAuthors(context.Background(), nil)
	if err != nil {
		t.Fatalf("TypesForAuthors failed: %v", err)
	}
	if len(types) != 0 {
		t.Errorf("expected empty map, got %v", types)
	}
}

func TestAuthorProfileRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	profile := &models.AuthorProfile{
		AuthorID:     9,
		GameName:     "Deft",
		Tag:          "KR3",
		ProfileImage: 4,
		MannerLevel:  3,
		SoloTier:     models.TierChallenger,
		FreeTier:     models.TierDiamond,
	}
	if err := db.UpsertAuthorProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertAuthorProfile failed: %v", err)
	}

	got, err := db.GetAuthorProfile(ctx, 9)
	if err != nil {
		t.Fatalf("GetAuthorProfile failed: %v", err)
	}
	if got.GameName != "Deft" || got.SoloTier != models.TierChallenger || got.MannerLevel != 3 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := db.GetAuthorProfile(ctx, 404); !apperr.IsCode(err, apperr.CodeProfileNotFound) {
		t.Errorf("expected PROFILE_NOT_FOUND, got %v", err)
	}
}

func TestInsertEvent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	authorID := int64(5)
	typ := "ADCI"
	id, err := db.InsertEvent(ctx, &authorID, "signup_completed", &typ, "sess-1", "webapp")
	if err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero event ID")
	}

	// Anonymous pre-signup event with no author or type.
	if _, err := db.InsertEvent(ctx, nil, "test_started", nil, "sess-1", ""); err != nil {
		t.Fatalf("anonymous InsertEvent failed: %v", err)
	}

	count, err := db.CountEventsBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("CountEventsBySession failed: %v", err)
	}
	if count != 2 {
		t.Errorf("session count = %d, want 2", count)
	}
}
