// Package cryptox wraps the primitives Dream Catcher needs: argon2id password
// hashes for the user directory and AES-GCM sealing for encrypted backups.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	kdfKeyLen  = 32

	// SaltSize is the salt length used for both password hashes and backup keys.
	SaltSize = 16
)

// ErrMalformedCiphertext reports a nonce of the wrong size, as found in a
// truncated or hand-edited envelope.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// DeriveKey stretches a passphrase into a 32-byte AES-256 key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
}

// EncryptEntry serializes entry to JSON and seals it with AES-GCM under key.
// A fresh 12-byte nonce is generated for every call and returned alongside
// the ciphertext.
//
// Example:
//
//	key := cryptox.DeriveKey(passphrase, salt)
//	ciphertext, nonce, err := cryptox.EncryptEntry(snapshot, key)
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// DecryptEntry opens ciphertext produced by EncryptEntry and unmarshals the
// JSON payload into v. A wrong key or a tampered ciphertext fails here.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	if len(nonce) != aesgcm.NonceSize() {
		return ErrMalformedCiphertext
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
