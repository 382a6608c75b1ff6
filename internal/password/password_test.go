package password

import (
	"errors"
	"strings"
	"testing"
)

// fastParams keeps tests quick; production cost comes from DefaultParams.
var fastParams = Params{Time: 1, MemoryKiB: 16 * 1024, Threads: 1}

func TestHashVerify(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		want     bool
	}{
		{name: "correct password", password: "p4ss", attempt: "p4ss", want: true},
		{name: "wrong password", password: "p4ss", attempt: "wrong", want: false},
		{name: "empty password matches empty", password: "", attempt: "", want: true},
		{name: "case sensitive", password: "Secret", attempt: "secret", want: false},
		{name: "unicode password", password: "pässwörd", attempt: "pässwörd", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Hash(tt.password, fastParams)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}

			got, err := Verify(tt.attempt, encoded)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h1, err := Hash("same", fastParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := Hash("same", fastParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical (salt reuse)")
	}
}

func TestHash_EncodedForm(t *testing.T) {
	encoded, err := Hash("p4ss", fastParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("encoded hash = %q, want $argon2id$v=19$ prefix", encoded)
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not a hash", encoded: "plaintext"},
		{name: "wrong algorithm", encoded: "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{name: "missing sections", encoded: "$argon2id$v=19$m=65536,t=3,p=4"},
		{name: "bad salt encoding", encoded: "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify("p4ss", tt.encoded)
			if !errors.Is(err, ErrMalformedHash) {
				t.Errorf("Verify() error = %v, want ErrMalformedHash", err)
			}
		})
	}
}

func TestVerify_ParamsFromEncodedForm(t *testing.T) {
	// A hash produced under one cost must verify even if defaults change.
	encoded, err := Hash("p4ss", Params{Time: 2, MemoryKiB: 8 * 1024, Threads: 2})
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := Verify("p4ss", encoded)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() = false for correct password with non-default params")
	}
}
