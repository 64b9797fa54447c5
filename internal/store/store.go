// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store implements the append-only PII Mapping Store (spec.md
// §4.7) on top of an embedded badger database, grounded on the teacher's
// services/trace/storage/badger key-prefix-scan usage.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Mapping is spec.md §3's PiiMapping record. Entries are opaque to the
// store: it neither interprets Category nor decrypts Ciphertext.
type Mapping struct {
	ID             string
	ConversationID string
	Category       string
	Placeholder    string
	Ciphertext     []byte
	Encrypted      bool
	CreatedAt      time.Time
}

// Store is the append-only per-conversation mapping log. Keys are
// conversation_id-prefixed so ListByConversation and
// DeleteConversation can both operate as a single prefix scan
// (Invariant M2: deletion is per-conversation cascade only).
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open mapping store at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// key encodes conversation_id + a monotonic sequence number so badger's
// lexicographic iteration preserves insertion order within a
// conversation (spec.md §5 "Readers that list mappings for a
// conversation receive them in insertion order").
func key(conversationID string, seq uint64) []byte {
	b := make([]byte, 0, len(conversationID)+1+8)
	b = append(b, conversationID...)
	b = append(b, 0x00)
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	return append(b, seqBytes...)
}

func prefix(conversationID string) []byte {
	return append([]byte(conversationID), 0x00)
}

// Insert appends a mapping, minting an id if m.ID is empty. Mappings are
// never mutated after insert (Invariant M2).
func (s *Store) Insert(m Mapping) (Mapping, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn, m.ConversationID)
		if err != nil {
			return err
		}
		return txn.Set(key(m.ConversationID, seq), encode(m))
	})
	if err != nil {
		return Mapping{}, fmt.Errorf("insert mapping: %w", err)
	}
	return m, nil
}

// nextSeq finds the next sequence number for a conversation by counting
// existing entries under its prefix. Badger has no native counter, and
// per spec.md §5 writes to a single conversation are single-writer at
// the application level, so a read-then-write inside one transaction is
// race-free across conversations and serialized within one.
func nextSeq(txn *badger.Txn, conversationID string) (uint64, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()
	var count uint64
	p := prefix(conversationID)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		count++
	}
	return count, nil
}

// ListByConversation returns all mappings for a conversation in
// insertion order.
func (s *Store) ListByConversation(conversationID string) ([]Mapping, error) {
	var out []Mapping
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		p := prefix(conversationID)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			var m Mapping
			if err := item.Value(func(val []byte) error {
				decoded, err := decode(val)
				if err != nil {
					return err
				}
				m = decoded
				return nil
			}); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list mappings for conversation %s: %w", conversationID, err)
	}
	return out, nil
}

// DeleteConversation removes every mapping for a conversation
// (Invariant M2's cascade delete).
func (s *Store) DeleteConversation(conversationID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		p := prefix(conversationID)
		var keys [][]byte
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			k := it.Item().KeyCopy(nil)
			keys = append(keys, k)
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
