// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package events

import (
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/davishong/rallyfeed/internal/metrics"
)

// spooledTTL bounds how long an undelivered event is retained.
const spooledTTL = 72 * time.Hour

// Spool is a durable on-disk buffer for events that could not be published.
// Keys are zero-padded sequence numbers so iteration preserves append order.
type Spool struct {
	db     *badger.DB
	logger zerolog.Logger

	mu  sync.Mutex
	seq uint64
}

// OpenSpool opens (or creates) the spool at dir.
func OpenSpool(dir string, logger zerolog.Logger) (*Spool, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open event spool: %w", err)
	}

	s := &Spool{db: db, logger: logger.With().Str("component", "event_spool").Logger()}
	if err := s.loadSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// loadSeq resumes the sequence counter from the highest existing key.
func (s *Spool) loadSeq() error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true})
		defer it.Close()

		it.Seek([]byte("~")) // past all numeric keys
		if it.Valid() {
			var seq uint64
			if _, err := fmt.Sscanf(string(it.Item().Key()), "%020d", &seq); err == nil {
				s.seq = seq
			}
		}
		return nil
	})
}

// Append stores one serialized event payload for a topic.
func (s *Spool) Append(topic string, payload []byte) error {
	s.mu.Lock()
	s.seq++
	key := fmt.Sprintf("%020d", s.seq)
	s.mu.Unlock()

	entry := append([]byte(topic+"\x00"), payload...)
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), entry).WithTTL(spooledTTL)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("spool append: %w", err)
	}

	metrics.EventsSpooled.Inc()
	return nil
}

// Drain replays spooled entries in order through publish, deleting each entry
// once publish succeeds. It stops at the first failure so ordering holds.
func (s *Spool) Drain(publish func(topic string, payload []byte) error) (int, error) {
	drained := 0
	for {
		key, topic, payload, ok, err := s.oldest()
		if err != nil {
			return drained, err
		}
		if !ok {
			return drained, nil
		}

		if err := publish(topic, payload); err != nil {
			return drained, err
		}

		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		}); err != nil {
			return drained, fmt.Errorf("spool delete: %w", err)
		}
		drained++
	}
}

// oldest returns the lowest-keyed spool entry, split into topic and payload.
func (s *Spool) oldest() (key []byte, topic string, payload []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		it.Rewind()
		if !it.Valid() {
			return nil
		}

		item := it.Item()
		key = item.KeyCopy(nil)
		raw, copyErr := item.ValueCopy(nil)
		if copyErr != nil {
			return copyErr
		}

		for i, b := range raw {
			if b == 0 {
				topic = string(raw[:i])
				payload = raw[i+1:]
				ok = true
				return nil
			}
		}
		return fmt.Errorf("malformed spool entry %s", key)
	})
	return key, topic, payload, ok, err
}

// Len returns the number of spooled entries.
func (s *Spool) Len() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the underlying store.
func (s *Spool) Close() error {
	return s.db.Close()
}
