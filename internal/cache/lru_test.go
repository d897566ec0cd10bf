// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package cache

import (
	"testing"
	"time"
)

func TestLRUAddGet(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	// Touch "a" so "b" becomes least recently used.
	c.Get("a")
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](4, 10*time.Millisecond)

	c.Add("a", "x")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLRUPurge(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() after purge = %d, want 0", c.Len())
	}
}
