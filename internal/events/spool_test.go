// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package events

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func openTestSpool(t *testing.T, dir string) *Spool {
	t.Helper()
	s, err := OpenSpool(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSpool: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSpoolDrainPreservesOrder(t *testing.T) {
	s := openTestSpool(t, t.TempDir())

	for i := 0; i < 5; i++ {
		if err := s.Append(TopicFunnel, []byte(fmt.Sprintf("event-%d", i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 5 {
		t.Fatalf("Len = %d, want 5", n)
	}

	var got []string
	drained, err := s.Drain(func(topic string, payload []byte) error {
		if topic != TopicFunnel {
			t.Errorf("topic = %q, want %q", topic, TopicFunnel)
		}
		got = append(got, string(payload))
		return nil
	})
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if drained != 5 {
		t.Fatalf("drained = %d, want 5", drained)
	}
	for i, p := range got {
		if want := fmt.Sprintf("event-%d", i); p != want {
			t.Errorf("payload[%d] = %q, want %q", i, p, want)
		}
	}

	n, err = s.Len()
	if err != nil {
		t.Fatalf("Len after drain: %v", err)
	}
	if n != 0 {
		t.Errorf("Len after drain = %d, want 0", n)
	}
}

func TestSpoolDrainStopsAtFirstFailure(t *testing.T) {
	s := openTestSpool(t, t.TempDir())

	for i := 0; i < 3; i++ {
		if err := s.Append(TopicFeed, []byte(fmt.Sprintf("update-%d", i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	failOn := errors.New("bus down")
	calls := 0
	drained, err := s.Drain(func(topic string, payload []byte) error {
		calls++
		if calls == 2 {
			return failOn
		}
		return nil
	})
	if !errors.Is(err, failOn) {
		t.Fatalf("Drain err = %v, want %v", err, failOn)
	}
	if drained != 1 {
		t.Errorf("drained = %d, want 1", drained)
	}

	// The failed entry and everything after it must survive for the next drain.
	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
}

func TestSpoolSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenSpool(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSpool: %v", err)
	}
	if err := s.Append(TopicFunnel, []byte("first")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(TopicFunnel, []byte("second")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestSpool(t, dir)
	if err := reopened.Append(TopicFunnel, []byte("third")); err != nil {
		t.Fatalf("Append after reopen: %v", err)
	}

	var got []string
	if _, err := reopened.Drain(func(_ string, payload []byte) error {
		got = append(got, string(payload))
		return nil
	}); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("drained %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("payload[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
