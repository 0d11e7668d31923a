package secret

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
	if !c.Enabled() {
		t.Fatal("cipher with a passphrase should be enabled")
	}

	const key = "0123456789abcdef0123456789abcdef01234567"
	sealed, err := c.Encrypt(key)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if sealed == key || strings.Contains(sealed, key) {
		t.Error("ciphertext must not contain the plaintext")
	}

	plain, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if plain != key {
		t.Errorf("Decrypt() = %q, want original plaintext", plain)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	c, _ := NewCipher("passphrase")
	a, _ := c.Encrypt("same input")
	b, _ := c.Encrypt("same input")
	if a == b {
		t.Error("two encryptions of the same input should differ (random nonce)")
	}
}

func TestWrongPassphraseFails(t *testing.T) {
	c1, _ := NewCipher("passphrase one")
	c2, _ := NewCipher("passphrase two")

	sealed, _ := c1.Encrypt("secret value")
	if _, err := c2.Decrypt(sealed); err == nil {
		t.Error("decryption with the wrong passphrase should fail")
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	c, _ := NewCipher("passphrase")
	for _, bad := range []string{"not base64!!!", "aGVsbG8=", ""} {
		if _, err := c.Decrypt(bad); err == nil {
			t.Errorf("Decrypt(%q) should fail", bad)
		}
	}
}

func TestPassthroughMode(t *testing.T) {
	c, err := NewCipher("")
	if err != nil {
		t.Fatalf("NewCipher(\"\") error = %v", err)
	}
	if c.Enabled() {
		t.Fatal("empty passphrase should disable encryption")
	}

	sealed, err := c.Encrypt("plain key")
	if err != nil || sealed != "plain key" {
		t.Errorf("passthrough Encrypt() = %q, %v; want input unchanged", sealed, err)
	}
	plain, err := c.Decrypt("plain key")
	if err != nil || plain != "plain key" {
		t.Errorf("passthrough Decrypt() = %q, %v; want input unchanged", plain, err)
	}
}
