// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndListInOrder(t *testing.T) {
	s := openTestStore(t)
	const conv = "conv-1"

	categories := []string{"bsn", "iban", "email"}
	for _, cat := range categories {
		_, err := s.Insert(Mapping{ConversationID: conv, Category: cat, Placeholder: "[PLACEHOLDER_" + cat + "]"})
		require.NoError(t, err)
	}

	got, err := s.ListByConversation(conv)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, cat := range categories {
		require.Equal(t, cat, got[i].Category)
		require.NotEmpty(t, got[i].ID)
	}
}

func TestListIsolatesConversations(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Insert(Mapping{ConversationID: "a", Category: "bsn"})
	require.NoError(t, err)
	_, err = s.Insert(Mapping{ConversationID: "b", Category: "iban"})
	require.NoError(t, err)

	gotA, err := s.ListByConversation("a")
	require.NoError(t, err)
	require.Len(t, gotA, 1)

	gotB, err := s.ListByConversation("b")
	require.NoError(t, err)
	require.Len(t, gotB, 1)
}

func TestDeleteConversationCascades(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Insert(Mapping{ConversationID: "c", Category: "bsn"})
	require.NoError(t, err)
	_, err = s.Insert(Mapping{ConversationID: "c", Category: "email"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation("c"))

	got, err := s.ListByConversation("c")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMappingPreservesCiphertextAndFlags(t *testing.T) {
	s := openTestStore(t)
	inserted, err := s.Insert(Mapping{
		ConversationID: "conv",
		Category:       "bsn",
		Placeholder:    "[PLACEHOLDER_BSN_abc123]",
		Ciphertext:     []byte{0x01, 0x02, 0x03},
		Encrypted:      true,
	})
	require.NoError(t, err)

	got, err := s.ListByConversation("conv")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, inserted.ID, got[0].ID)
	require.True(t, got[0].Encrypted)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, got[0].Ciphertext)
}
