package auth

import (
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash() returned empty hash")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext password")
	}

	if !hasher.Verify("correct horse battery staple", hash) {
		t.Error("Verify() = false for the correct password")
	}
	if hasher.Verify("wrong password", hash) {
		t.Error("Verify() = true for a wrong password")
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	hasher := NewPasswordHasher()

	h1, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	h2, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salts not applied")
	}
}

func TestPasswordHasher_VerifyGarbageHash(t *testing.T) {
	hasher := NewPasswordHasher()

	if hasher.Verify("password", "not-a-bcrypt-hash") {
		t.Error("Verify() = true for a malformed hash")
	}
}
