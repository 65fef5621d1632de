package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("hash not in PHC format: %s", hash)
	}
	if strings.Contains(hash, "secret1") {
		t.Fatal("hash contains the raw password")
	}

	match, err := Verify("secret1", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !match {
		t.Error("correct password did not verify")
	}

	match, err = Verify("wrong12", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if match {
		t.Error("wrong password verified")
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical (salt reuse)")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=65536,t=3,p=4"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Verify("anything", tt.hash); !errors.Is(err, ErrInvalidHash) {
				t.Errorf("expected ErrInvalidHash, got %v", err)
			}
		})
	}
}

func TestCheckStrength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"abc", true},
		{"12345", true},
		{"secret", false},
		{"secret1", false},
	}

	for _, tt := range tests {
		err := CheckStrength(tt.password)
		if tt.wantErr && !errors.Is(err, ErrTooWeak) {
			t.Errorf("CheckStrength(%q) = %v, want ErrTooWeak", tt.password, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("CheckStrength(%q) = %v, want nil", tt.password, err)
		}
	}
}
