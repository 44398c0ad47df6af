package crypto

import (
	"errors"
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}

	plaintext := `{"email":"a@x.com","bearer_token":"tok-1"}`
	sealed, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if sealed == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	opened, err := enc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if opened != plaintext {
		t.Errorf("Decrypt() = %q, want original plaintext", opened)
	}
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	t.Parallel()

	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}

	first, err := enc.Encrypt("tok-1")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	second, err := enc.Encrypt("tok-1")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if first == second {
		t.Error("two encryptions of the same value must differ")
	}
}

func TestNewEncryptorValidatesKey(t *testing.T) {
	t.Parallel()

	if _, err := NewEncryptor(""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("NewEncryptor(empty) error = %v, want ErrMissingKey", err)
	}
	if _, err := NewEncryptor("short"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("NewEncryptor(short) error = %v, want ErrInvalidKey", err)
	}
	if _, err := NewEncryptor(strings.Repeat("k", 33)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("NewEncryptor(long) error = %v, want ErrInvalidKey", err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Parallel()

	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}

	if _, err := enc.Decrypt("not base64!!!"); err == nil {
		t.Error("Decrypt(invalid base64) must fail")
	}
	if _, err := enc.Decrypt("QQ=="); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("Decrypt(short) error = %v, want ErrCiphertextTooShort", err)
	}

	other, err := NewEncryptor(strings.Repeat("x", 32))
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}
	sealed, err := enc.Encrypt("tok-1")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := other.Decrypt(sealed); err == nil {
		t.Error("Decrypt with a different key must fail")
	}
}
