package journal

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"mannMitraAPI/internal/apperr"
)

const keySize = 32

// GenerateKey returns a fresh base64-encoded per-entry key. Every entry gets
// its own key so a leaked key compromises exactly one entry.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate entry key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// EncryptField seals plaintext with the entry key and returns base64
// nonce||ciphertext. The box is authenticated, so tampering or a wrong key is
// detected on open instead of producing garbage.
func EncryptField(plaintext, encodedKey string) (string, error) {
	key, err := decodeKey(encodedKey)
	if err != nil {
		return "", err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField opens a field sealed by EncryptField. A wrong key, a truncated
// payload or corrupted ciphertext all return apperr.ErrDecryptionFailed.
func DecryptField(ciphertext, encodedKey string) (string, error) {
	key, err := decodeKey(encodedKey)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext encoding", apperr.ErrDecryptionFailed)
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("%w: ciphertext too short", apperr.ErrDecryptionFailed)
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", apperr.ErrDecryptionFailed)
	}
	return string(plaintext), nil
}

// Decrypt produces the transient plaintext view of an entry. The stored entry
// is left untouched. On any decryption failure the view keeps the ciphertext
// and is flagged Undecryptable so one corrupted entry cannot break a list.
func Decrypt(e *Entry) (*View, error) {
	v := &View{
		ID:          e.ID,
		SessionID:   e.SessionID,
		Title:       e.Title,
		Content:     e.Content,
		MoodBefore:  e.MoodBefore,
		MoodAfter:   e.MoodAfter,
		Tags:        e.Tags,
		IsEncrypted: e.IsEncrypted,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	if !e.IsEncrypted || e.EncryptionKey == nil {
		return v, nil
	}

	content, err := DecryptField(e.Content, *e.EncryptionKey)
	if err != nil {
		v.Undecryptable = true
		return v, err
	}
	v.Content = content

	if e.Title != nil {
		title, err := DecryptField(*e.Title, *e.EncryptionKey)
		if err != nil {
			v.Undecryptable = true
			v.Content = e.Content
			return v, err
		}
		v.Title = &title
	}

	v.IsEncrypted = false
	return v, nil
}

func decodeKey(encodedKey string) (*[keySize]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil || len(raw) != keySize {
		return nil, fmt.Errorf("%w: invalid entry key", apperr.ErrDecryptionFailed)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
