// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cryptobound implements the crypto boundary (spec.md §4.6): an
// authenticated encryption contract backed by a process-scoped key held
// in mlocked memory, wiped on drop.
package cryptobound

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/privacyrouter/core/internal/codekind"
)

const (
	// KeySize is the AEAD key length in bytes (256 bits, spec.md §3).
	KeySize = chacha20poly1305.KeySize
	// NonceSize is the per-message nonce length in bytes (96 bits).
	NonceSize = chacha20poly1305.NonceSize
)

// SecretStore persists and retrieves the 32-byte process key. The
// default implementation is a mode-0600 file; an OS-keystore-backed
// implementation (Windows Credential Manager, macOS Keychain) is left as
// an injection point, per SPEC_FULL.md §13's open question — no such
// library appears anywhere in the retrieval pack to ground one on.
type SecretStore interface {
	Load() ([]byte, error)
	Save(key []byte) error
}

// FileSecretStore implements SecretStore as a single mode-0600 file
// beside the application database, matching spec.md §6 "Files" (a
// `.encryption.key` file, mode 0600 on Unix, sealed on Windows).
type FileSecretStore struct {
	Path string
}

func (f FileSecretStore) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if len(data) != KeySize {
		return nil, fmt.Errorf("encryption key file %s has wrong length %d, want %d", f.Path, len(data), KeySize)
	}
	return data, nil
}

func (f FileSecretStore) Save(key []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, key, 0o600)
}

// KeyManager owns the process-lifetime encryption key in mlocked memory
// (memguard.LockedBuffer) so it never touches swap and is wiped when
// Destroy is called. Grounded on the teacher's
// services/orchestrator/handlers/secure_accumulator.go mlocked-buffer
// pattern.
type KeyManager struct {
	store  SecretStore
	locked *memguard.LockedBuffer
}

// NewKeyManager loads the key from store, generating and persisting a
// fresh one on first run. Failure here is fatal at process start
// (spec.md §5 "Fail-fast critical initializers"): the key manager is
// named explicitly alongside the regex compiler as a broken-build
// signal, not a runtime condition.
func NewKeyManager(store SecretStore) (*KeyManager, error) {
	raw, err := store.Load()
	if err != nil {
		raw = make([]byte, KeySize)
		if _, genErr := io.ReadFull(rand.Reader, raw); genErr != nil {
			return nil, codekind.Wrap(codekind.CryptoInitFailed, "generate encryption key", genErr)
		}
		if saveErr := store.Save(raw); saveErr != nil {
			return nil, codekind.Wrap(codekind.CryptoInitFailed, "persist encryption key", saveErr)
		}
	}
	locked := memguard.NewBufferFromBytes(raw)
	for i := range raw {
		raw[i] = 0
	}
	if locked.Size() != KeySize {
		locked.Destroy()
		return nil, codekind.New(codekind.CryptoInitFailed, "loaded key has wrong size")
	}
	return &KeyManager{store: store, locked: locked}, nil
}

// Destroy wipes the key from memory. Safe to call more than once.
func (k *KeyManager) Destroy() {
	k.locked.Destroy()
}

// Cipher returns an AEAD bound to this manager's key. Callers should not
// retain the AEAD past the KeyManager's lifetime.
func (k *KeyManager) Cipher() (*Cipher, error) {
	aead, err := chacha20poly1305.New(k.locked.Bytes())
	if err != nil {
		return nil, codekind.Wrap(codekind.CryptoInitFailed, "construct AEAD", err)
	}
	return &Cipher{aead: aead}, nil
}

// Cipher implements the `encrypt(plaintext) -> bytes`, `decrypt(bytes)
// -> plaintext` contract of spec.md §4.6: ChaCha20-Poly1305 with a
// 96-bit nonce prepended to the ciphertext, matching
// original_source/crypto.rs's wire layout.
type Cipher struct {
	aead cipher.AEAD
}

// Encrypt seals plaintext under a fresh random nonce, returning
// nonce||ciphertext||tag. Two encryptions of the same plaintext produce
// distinct outputs (semantic security, spec.md §4.6).
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, NonceSize+len(plaintext)+chacha20poly1305.Overhead)
	out = append(out, nonce...)
	return c.aead.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < NonceSize {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(data))
	}
	nonce, ciphertext := data[:NonceSize], data[NonceSize:]
	return c.aead.Open(nil, nonce, ciphertext, nil)
}

// EncryptBatch encrypts each value independently, per
// SPEC_FULL.md §13 (original_source/crypto.rs's `encrypt_batch`), which
// the Anonymization Engine uses since one request yields a batch of PII
// values at once.
func (c *Cipher) EncryptBatch(plaintexts [][]byte) ([][]byte, error) {
	out := make([][]byte, len(plaintexts))
	for i, p := range plaintexts {
		ct, err := c.Encrypt(p)
		if err != nil {
			return nil, fmt.Errorf("encrypt item %d: %w", i, err)
		}
		out[i] = ct
	}
	return out, nil
}

// DecryptBatch reverses EncryptBatch.
func (c *Cipher) DecryptBatch(ciphertexts [][]byte) ([][]byte, error) {
	out := make([][]byte, len(ciphertexts))
	for i, ct := range ciphertexts {
		pt, err := c.Decrypt(ct)
		if err != nil {
			return nil, fmt.Errorf("decrypt item %d: %w", i, err)
		}
		out[i] = pt
	}
	return out, nil
}
