package journal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mannMitraAPI/internal/apperr"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple", "hello"},
		{"empty string", ""},
		{"unicode", "आज का दिन अच्छा था, but exams stress me out"},
		{"multi paragraph", "first paragraph\n\nsecond paragraph\n\nतीसरा"},
		{"long", strings.Repeat("journaling at 2am ", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := EncryptField(tt.plaintext, key)
			if err != nil {
				t.Fatalf("EncryptField: %v", err)
			}
			if ciphertext == tt.plaintext && tt.plaintext != "" {
				t.Fatal("ciphertext equals plaintext")
			}

			got, err := DecryptField(ciphertext, key)
			if err != nil {
				t.Fatalf("DecryptField: %v", err)
			}
			if got != tt.plaintext {
				t.Errorf("round trip = %q, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key, _ := GenerateKey()
	otherKey, _ := GenerateKey()

	ciphertext, err := EncryptField("private thought", key)
	if err != nil {
		t.Fatalf("EncryptField: %v", err)
	}

	_, err = DecryptField(ciphertext, otherKey)
	if !errors.Is(err, apperr.ErrDecryptionFailed) {
		t.Errorf("DecryptField with wrong key returned %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptCorruptedCiphertextFails(t *testing.T) {
	key, _ := GenerateKey()

	for _, ciphertext := range []string{"", "not-base64!!!", "dG9vc2hvcnQ="} {
		if _, err := DecryptField(ciphertext, key); !errors.Is(err, apperr.ErrDecryptionFailed) {
			t.Errorf("DecryptField(%q) returned %v, want ErrDecryptionFailed", ciphertext, err)
		}
	}
}

func TestDecryptEntryNeverMutatesStoredRecord(t *testing.T) {
	key, _ := GenerateKey()
	titlePlain := "rough day"
	title, _ := EncryptField(titlePlain, key)
	content, _ := EncryptField("it got better", key)

	entry := &Entry{
		ID:            uuid.New(),
		SessionID:     uuid.New().String(),
		Title:         &title,
		Content:       content,
		IsEncrypted:   true,
		EncryptionKey: &key,
		CreatedAt:     time.Now(),
	}

	view, err := Decrypt(entry)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if view.Content != "it got better" || view.Title == nil || *view.Title != titlePlain {
		t.Errorf("view = %q/%v, want decrypted plaintext", view.Content, view.Title)
	}
	if view.IsEncrypted {
		t.Error("view still marked encrypted")
	}

	// The stored entry must keep its ciphertext.
	if entry.Content != content || *entry.Title != title || !entry.IsEncrypted {
		t.Error("Decrypt mutated the persisted entry")
	}
}

func TestDecryptEntryFallsBackToCiphertextView(t *testing.T) {
	key, _ := GenerateKey()
	wrongKey, _ := GenerateKey()
	content, _ := EncryptField("secret", key)

	entry := &Entry{
		ID:            uuid.New(),
		Content:       content,
		IsEncrypted:   true,
		EncryptionKey: &wrongKey,
	}

	view, err := Decrypt(entry)
	if !errors.Is(err, apperr.ErrDecryptionFailed) {
		t.Fatalf("Decrypt returned %v, want ErrDecryptionFailed", err)
	}
	if view == nil || !view.Undecryptable {
		t.Fatal("expected a view flagged undecryptable")
	}
	if view.Content != content {
		t.Error("fallback view should carry the original ciphertext")
	}
}

func TestDecryptPlaintextEntryPassesThrough(t *testing.T) {
	entry := &Entry{ID: uuid.New(), Content: "plain entry", IsEncrypted: false}
	view, err := Decrypt(entry)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if view.Content != "plain entry" || view.Undecryptable {
		t.Errorf("unexpected view %+v", view)
	}
}
