// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"bytes"
	"encoding/gob"
	"time"
)

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// wireMapping mirrors Mapping for gob encoding; kept separate so
// changes to Mapping's exported shape don't silently change the wire
// format without a deliberate edit here.
type wireMapping struct {
	ID             string
	ConversationID string
	Category       string
	Placeholder    string
	Ciphertext     []byte
	Encrypted      bool
	CreatedAtUnix  int64
}

func encode(m Mapping) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(wireMapping{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Category:       m.Category,
		Placeholder:    m.Placeholder,
		Ciphertext:     m.Ciphertext,
		Encrypted:      m.Encrypted,
		CreatedAtUnix:  m.CreatedAt.Unix(),
	})
	return buf.Bytes()
}

func decode(data []byte) (Mapping, error) {
	var w wireMapping
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return Mapping{}, err
	}
	return Mapping{
		ID:             w.ID,
		ConversationID: w.ConversationID,
		Category:       w.Category,
		Placeholder:    w.Placeholder,
		Ciphertext:     w.Ciphertext,
		Encrypted:      w.Encrypted,
		CreatedAt:      timeFromUnix(w.CreatedAtUnix),
	}, nil
}
